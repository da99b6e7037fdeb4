package recorder

import "github.com/arttusulkonen/paddletracker-sub000/internal/league"

// MatchRecorder records one or more result rows for two players in a room.
type MatchRecorder interface {
	// Record returns false on any failure; it never panics and never leaks
	// internal errors to the caller.
	Record(sport league.Sport, roomID, player1ID, player2ID string, rows []ResultRow) bool
}
