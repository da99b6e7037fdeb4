package league

import "encoding/json"

// Sport identifies one rating universe. Every sport has its own
// players/rooms/matches collections and its own global ratings.
type Sport string

const (
	SportPingPong  Sport = "pingpong"
	SportTennis    Sport = "tennis"
	SportBadminton Sport = "badminton"
)

// RoomMode selects the K-factor dampening policy for a room's local ratings.
type RoomMode string

const (
	// ModeOffice dampens negative local deltas so losses sting less.
	ModeOffice RoomMode = "office"
	// ModeArcade is a practice scope, local ratings never move.
	ModeArcade RoomMode = "arcade"
	// ModeProfessional applies the raw Elo delta.
	ModeProfessional RoomMode = "professional"
)

const (
	// DefaultRating is the starting rating in both scopes.
	DefaultRating = 1000
	// DefaultKFactor is the room K-factor used when a document carries none.
	DefaultKFactor = 32
)

// RatingEvent is one point on a player's global rating timeline.
type RatingEvent struct {
	Date   string `json:"date"`
	Rating int    `json:"rating"`
}

// SportStats holds sport-specific additive counters. All fields are
// cumulative; the recorder and the recompute engine only ever add to them.
type SportStats struct {
	Aces         int `json:"aces,omitempty"`
	DoubleFaults int `json:"doubleFaults,omitempty"`
	Winners      int `json:"winners,omitempty"`
}

// Player is the per-sport player document.
type Player struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	GlobalRating  int           `json:"globalRating"`
	RatingHistory []RatingEvent `json:"ratingHistory"`
	Wins          int           `json:"wins"`
	Losses        int           `json:"losses"`
	Stats         SportStats    `json:"stats,omitempty"`
	// Achievements are derived elsewhere and cleared on recompute.
	Achievements []string `json:"achievements,omitempty"`
}

// RoomMember is a player's standing inside one room. The rating here is only
// comparable to other members of the same room.
type RoomMember struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Rating int    `json:"rating"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

// Room is the scope boundary for local ratings.
type Room struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Mode    RoomMode     `json:"mode"`
	KFactor int          `json:"kFactor"`
	Ranked  *bool        `json:"isRanked,omitempty"` // absent means ranked
	Members []RoomMember `json:"members"`
	// SeasonSummary is a legacy end-of-season snapshot; recompute deletes it
	// because a rewritten history invalidates it.
	SeasonSummary json.RawMessage `json:"seasonSummary,omitempty"`
}

// MatchSide is the per-player snapshot embedded in a match document.
type MatchSide struct {
	Score           int        `json:"score"`
	OldGlobalRating int        `json:"oldRating"`
	NewGlobalRating int        `json:"newRating"`
	GlobalDelta     int        `json:"ratingDelta"`
	OldRoomRating   int        `json:"oldRoomRating"`
	NewRoomRating   int        `json:"newRoomRating"`
	RoomDelta       int        `json:"roomRatingDelta"`
	Stats           SportStats `json:"stats,omitempty"`
}

// Match is the append-only match document. Identity and scores never change;
// the rating snapshot fields are rewritten in place by recompute.
type Match struct {
	ID     string `json:"id"`
	RoomID string `json:"roomId"`
	// Timestamp is the sortable ISO form; TS and PlayedAt are legacy
	// representations still found on old documents.
	Timestamp string `json:"timestamp,omitempty"`
	TS        int64  `json:"ts,omitempty"`       // epoch seconds or millis
	PlayedAt  string `json:"playedAt,omitempty"` // dd.mm.yyyy hh.mm.ss
	CreatedAt string `json:"createdAt,omitempty"`
	Player1ID string `json:"player1Id"`
	Player2ID string `json:"player2Id"`
	Player1   MatchSide `json:"player1"`
	Player2   MatchSide `json:"player2"`
	Ranked    *bool     `json:"isRanked,omitempty"` // absent means ranked
	// Winner is an explicit winner id, only consulted when scores are equal.
	Winner     string `json:"winner,omitempty"`
	WinnerName string `json:"winnerName,omitempty"`

	// Seq is the store's insertion order, used as the stable tie-break when
	// two matches resolve to the same instant. Not part of the document body.
	Seq int64 `json:"-"`
}

// IsRanked reports the room-level ranked flag, defaulting to true.
func (r *Room) IsRanked() bool { return r.Ranked == nil || *r.Ranked }

// IsRanked reports the match-level ranked flag, defaulting to true.
func (m *Match) IsRanked() bool { return m.Ranked == nil || *m.Ranked }

// EffectiveRanked reports whether the match moves global ratings: both the
// match and its governing room must be ranked.
func (m *Match) EffectiveRanked(room *Room) bool {
	return m.IsRanked() && room.IsRanked()
}

// Player1Won resolves the match outcome. Equal scores are not expected in
// real play; when they occur an explicit winner field decides, else player1
// wins by convention.
func (m *Match) Player1Won() bool {
	if m.Player1.Score != m.Player2.Score {
		return m.Player1.Score > m.Player2.Score
	}
	if m.Winner != "" {
		return m.Winner == m.Player1ID
	}
	return true
}

// Member returns the member entry for a user, or nil.
func (r *Room) Member(userID string) *RoomMember {
	for i := range r.Members {
		if r.Members[i].UserID == userID {
			return &r.Members[i]
		}
	}
	return nil
}

// Add merges another stat block into this one.
func (s *SportStats) Add(o SportStats) {
	s.Aces += o.Aces
	s.DoubleFaults += o.DoubleFaults
	s.Winners += o.Winners
}
