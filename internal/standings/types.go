package standings

// Options controls derived-view behavior.
type Options struct {
	// FormWindow is the number of most-recent results shown as trailing form.
	FormWindow int
	// MinMatchesVisible hides a player's room rating until they have played
	// this many matches in the room. Display rule only; the stored rating is
	// untouched.
	MinMatchesVisible int
}

// DefaultOptions mirrors the product defaults.
func DefaultOptions() Options {
	return Options{FormWindow: 5, MinMatchesVisible: 10}
}

// HiddenRating is the sentinel shown while a player's room rating is hidden.
const HiddenRating = -1

// FormEntry is one result in the trailing form window, newest first.
type FormEntry struct {
	OpponentName string
	Score        string
	Won          bool
	Date         string
}

// PlayerStandings is the derived, read-only view of one player in one room.
type PlayerStandings struct {
	PlayerID         string
	Matches          int
	Wins             int
	Losses           int
	WinPercentage    float64
	// CurrentStreak is positive for a win streak, negative for a loss streak.
	CurrentStreak    int
	LongestWinStreak int
	// AverageDelta is the mean room-rating delta per match.
	AverageDelta float64
	RecentForm   []FormEntry
	Rating       int
	RatingHidden bool
}

// VisibleRating returns the rating to display, or HiddenRating while the
// player is below the visibility threshold.
func (s PlayerStandings) VisibleRating() int {
	if s.RatingHidden {
		return HiddenRating
	}
	return s.Rating
}
