package recorder

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/arttusulkonen/paddletracker-sub000/internal/dates"
	"github.com/arttusulkonen/paddletracker-sub000/internal/league"
	"github.com/arttusulkonen/paddletracker-sub000/internal/metrics"
	"github.com/arttusulkonen/paddletracker-sub000/internal/notifier"
	"github.com/arttusulkonen/paddletracker-sub000/internal/pubsub"
	"github.com/arttusulkonen/paddletracker-sub000/internal/rating"
	"github.com/arttusulkonen/paddletracker-sub000/internal/store"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var _ MatchRecorder = (*Recorder)(nil)

// New creates a Recorder.
func New(s store.Store, m metrics.Metrics, n notifier.Notifier, ps pubsub.PubSubClient, opts ...Option) *Recorder {
	r := &Recorder{
		store:      s,
		metrics:    m,
		notifier:   n,
		pubsub:     ps,
		batchLimit: store.DefaultWriterLimit,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record applies the rows in input order and persists one match document per
// row, the rewritten room member list, and both player updates, all through
// one batched writer with a final flush.
func (r *Recorder) Record(sport league.Sport, roomID, player1ID, player2ID string, rows []ResultRow) bool {
	r.metrics.IncRecordRuns()
	if err := r.record(sport, roomID, player1ID, player2ID, rows); err != nil {
		log.Error("Failed to record match results", "error", err, "sport", sport, "roomID", roomID)
		r.metrics.IncRecordFailures()
		return false
	}
	return true
}

func (r *Recorder) record(sport league.Sport, roomID, player1ID, player2ID string, rows []ResultRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("no result rows given")
	}
	if player1ID == player2ID {
		return fmt.Errorf("a player cannot play themselves")
	}

	room, err := r.loadRoom(sport, roomID)
	if err != nil {
		return err
	}
	p1, err := r.loadPlayer(sport, player1ID)
	if err != nil {
		return err
	}
	p2, err := r.loadPlayer(sport, player2ID)
	if err != nil {
		return err
	}

	// First appearance in a room starts at the default local rating,
	// whatever the player's global standing. Both appends happen before the
	// member pointers are taken: growing the slice moves it.
	ensureMember(room, p1)
	ensureMember(room, p2)
	m1 := room.Member(player1ID)
	m2 := room.Member(player2ID)

	ranked := room.IsRanked()
	writer := store.NewWriter(r.store, r.batchLimit)
	base := r.now()

	var recorded []*league.Match
	wins1, wins2 := 0, 0
	var stats1, stats2 league.SportStats

	for i, row := range rows {
		// Synthetic 1s spacing keeps rows distinct and sortable.
		at := base.Add(time.Duration(i) * time.Second)
		p1Won := rowWinner(row, player1ID)

		g1, g2, l1, l2 := rating.MatchDeltas(
			p1.GlobalRating, p2.GlobalRating, m1.Rating, m2.Rating,
			p1Won, ranked, room.KFactor, room.Mode,
		)

		match := &league.Match{
			ID:        uuid.NewString(),
			RoomID:    room.ID,
			Timestamp: dates.FormatISO(at),
			TS:        at.UnixMilli(),
			PlayedAt:  dates.FormatLegacy(at),
			CreatedAt: dates.FormatISO(base),
			Player1ID: player1ID,
			Player2ID: player2ID,
			Ranked:    boolPtr(ranked),
			Winner:    row.Winner,
			Player1: league.MatchSide{
				Score:           row.Score1,
				OldGlobalRating: p1.GlobalRating,
				NewGlobalRating: p1.GlobalRating + g1,
				GlobalDelta:     g1,
				OldRoomRating:   m1.Rating,
				NewRoomRating:   m1.Rating + l1,
				RoomDelta:       l1,
				Stats:           row.Stats1,
			},
			Player2: league.MatchSide{
				Score:           row.Score2,
				OldGlobalRating: p2.GlobalRating,
				NewGlobalRating: p2.GlobalRating + g2,
				GlobalDelta:     g2,
				OldRoomRating:   m2.Rating,
				NewRoomRating:   m2.Rating + l2,
				RoomDelta:       l2,
				Stats:           row.Stats2,
			},
		}
		if p1Won {
			match.WinnerName = m1.Name
		} else {
			match.WinnerName = m2.Name
		}

		if err := writer.Set(league.MatchesCollection(sport), match.ID, match); err != nil {
			return err
		}
		recorded = append(recorded, match)

		// Advance the running state so the next row sees this result.
		p1.GlobalRating += g1
		p2.GlobalRating += g2
		m1.Rating += l1
		m2.Rating += l2
		if ranked {
			p1.RatingHistory = append(p1.RatingHistory, league.RatingEvent{Date: match.Timestamp, Rating: p1.GlobalRating})
			p2.RatingHistory = append(p2.RatingHistory, league.RatingEvent{Date: match.Timestamp, Rating: p2.GlobalRating})
		}
		if p1Won {
			wins1++
			m1.Wins++
			m2.Losses++
		} else {
			wins2++
			m2.Wins++
			m1.Losses++
		}
		stats1.Add(row.Stats1)
		stats2.Add(row.Stats2)
	}

	if err := writer.Set(league.RoomsCollection(sport), room.ID, room); err != nil {
		return err
	}
	losses1 := len(rows) - wins1
	losses2 := len(rows) - wins2
	if err := writer.Update(league.PlayersCollection(sport), player1ID, playerPatch(p1, ranked, wins1, losses1, stats1)); err != nil {
		return err
	}
	if err := writer.Update(league.PlayersCollection(sport), player2ID, playerPatch(p2, ranked, wins2, losses2, stats2)); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	r.metrics.AddBatchCommits(float64(writer.Commits()))

	for _, match := range recorded {
		r.metrics.IncMatchesRecorded()
		// Announcement failures must not fail an already-committed recording.
		if err := r.notifier.SendResultNotification(sport, room, match, false); err != nil {
			log.Error("Failed to announce match result", "error", err, "matchID", match.ID)
		}
	}
	event := pubsub.ResultRecordedEvent{Sport: string(sport), RoomID: room.ID, MatchIDs: matchIDs(recorded)}
	if err := r.pubsub.SendMessage(string(pubsub.EventResultRecorded), event); err != nil {
		log.Error("Failed to publish result event", "error", err, "roomID", room.ID)
	}

	log.Info("Recorded match results", "sport", sport, "roomID", room.ID, "rows", len(rows), "commits", writer.Commits())
	return nil
}

func (r *Recorder) loadRoom(sport league.Sport, roomID string) (*league.Room, error) {
	doc, err := r.store.Get(league.RoomsCollection(sport), roomID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("room %s not found for sport %s", roomID, sport)
	}
	var room league.Room
	if err := json.Unmarshal(doc.Data, &room); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", roomID, err)
	}
	room.ID = roomID
	league.NormalizeRoom(&room)
	return &room, nil
}

func (r *Recorder) loadPlayer(sport league.Sport, playerID string) (*league.Player, error) {
	doc, err := r.store.Get(league.PlayersCollection(sport), playerID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("player %s not found for sport %s", playerID, sport)
	}
	var player league.Player
	if err := json.Unmarshal(doc.Data, &player); err != nil {
		return nil, fmt.Errorf("decode player %s: %w", playerID, err)
	}
	player.ID = playerID
	league.NormalizePlayer(&player)
	return &player, nil
}

func ensureMember(room *league.Room, p *league.Player) {
	if room.Member(p.ID) != nil {
		return
	}
	room.Members = append(room.Members, league.RoomMember{
		UserID: p.ID,
		Name:   p.Name,
		Rating: league.DefaultRating,
	})
}

func rowWinner(row ResultRow, player1ID string) bool {
	if row.Score1 != row.Score2 {
		return row.Score1 > row.Score2
	}
	if row.Winner != "" {
		return row.Winner == player1ID
	}
	return true
}

// playerPatch writes the running rating state and adds the tallies. Counters
// are additive so a concurrent reader never sees them go backwards, and the
// rating/history fields carry the final running values.
func playerPatch(p *league.Player, ranked bool, wins, losses int, stats league.SportStats) store.Patch {
	patch := store.Patch{
		"wins":   store.Inc(int64(wins)),
		"losses": store.Inc(int64(losses)),
	}
	if ranked {
		patch["globalRating"] = p.GlobalRating
		patch["ratingHistory"] = p.RatingHistory
	}
	if stats.Aces != 0 {
		patch["stats.aces"] = store.Inc(int64(stats.Aces))
	}
	if stats.DoubleFaults != 0 {
		patch["stats.doubleFaults"] = store.Inc(int64(stats.DoubleFaults))
	}
	if stats.Winners != 0 {
		patch["stats.winners"] = store.Inc(int64(stats.Winners))
	}
	return patch
}

func matchIDs(matches []*league.Match) []string {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	return ids
}

func boolPtr(b bool) *bool { return &b }
