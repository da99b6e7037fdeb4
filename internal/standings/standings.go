// Package standings derives read-only view data from a room's match history.
// Nothing here persists; the aggregator consumes stored matches and produces
// display values.
package standings

import (
	"fmt"

	"github.com/arttusulkonen/paddletracker-sub000/internal/league"
)

// Compute derives one player's standings from a room's matches. The match
// slice may be in any order; it is sorted by resolved instant before
// scanning.
func Compute(room *league.Room, matches []*league.Match, playerID string, opts Options) PlayerStandings {
	if opts.FormWindow <= 0 {
		opts.FormWindow = DefaultOptions().FormWindow
	}
	if opts.MinMatchesVisible <= 0 {
		opts.MinMatchesVisible = DefaultOptions().MinMatchesVisible
	}

	league.SortMatches(matches)

	s := PlayerStandings{PlayerID: playerID}
	current := 0
	longest := 0
	deltaSum := 0
	var form []FormEntry

	for _, m := range matches {
		if m.RoomID != room.ID {
			continue
		}
		var mine, theirs *league.MatchSide
		var opponentID string
		switch playerID {
		case m.Player1ID:
			mine, theirs, opponentID = &m.Player1, &m.Player2, m.Player2ID
		case m.Player2ID:
			mine, theirs, opponentID = &m.Player2, &m.Player1, m.Player1ID
		default:
			continue
		}

		won := m.Player1Won() == (playerID == m.Player1ID)
		s.Matches++
		deltaSum += mine.RoomDelta
		if won {
			s.Wins++
			if current < 0 {
				current = 0
			}
			current++
			if current > longest {
				longest = current
			}
		} else {
			s.Losses++
			if current > 0 {
				current = 0
			}
			current--
		}

		form = append(form, FormEntry{
			OpponentName: opponentName(room, opponentID),
			Score:        fmt.Sprintf("%d–%d", mine.Score, theirs.Score),
			Won:          won,
			Date:         m.Timestamp,
		})
	}

	s.CurrentStreak = current
	s.LongestWinStreak = longest
	if s.Matches > 0 {
		s.WinPercentage = float64(s.Wins) / float64(s.Matches) * 100
		s.AverageDelta = float64(deltaSum) / float64(s.Matches)
	}

	// Newest first, capped at the window.
	for i, j := 0, len(form)-1; i < j; i, j = i+1, j-1 {
		form[i], form[j] = form[j], form[i]
	}
	if len(form) > opts.FormWindow {
		form = form[:opts.FormWindow]
	}
	s.RecentForm = form

	if member := room.Member(playerID); member != nil {
		s.Rating = member.Rating
	} else {
		s.Rating = league.DefaultRating
	}
	s.RatingHidden = s.Matches < opts.MinMatchesVisible

	return s
}

func opponentName(room *league.Room, id string) string {
	if m := room.Member(id); m != nil && m.Name != "" {
		return m.Name
	}
	return id
}
