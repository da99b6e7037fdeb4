package recompute

import (
	"time"

	"github.com/arttusulkonen/paddletracker-sub000/internal/league"
	"github.com/arttusulkonen/paddletracker-sub000/internal/metrics"
	"github.com/arttusulkonen/paddletracker-sub000/internal/store"
)

// Engine rebuilds every rating-derived field for a sport by replaying its
// full match history from scratch. It must be the only writer against the
// sport's collections while it runs.
type Engine struct {
	store      store.Store
	metrics    metrics.Metrics
	batchLimit int
	backupDir  string
	now        func() time.Time
}

// Report summarizes one sport's recompute for operator logs.
type Report struct {
	Sport            league.Sport
	MatchesProcessed int
	RoomsUpdated     int
	PlayersUpdated   int
	// MissingPlayers lists ids referenced by matches but absent from the
	// roster; their matches were replayed but no player document was written.
	MissingPlayers []string
}

// Option tweaks an Engine.
type Option func(*Engine)

// WithBatchLimit overrides the write batch auto-flush limit.
func WithBatchLimit(n int) Option {
	return func(e *Engine) { e.batchLimit = n }
}

// WithBackupDir enables a pre-run msgpack snapshot of the sport's documents.
func WithBackupDir(dir string) Option {
	return func(e *Engine) { e.backupDir = dir }
}

// WithClock overrides the clock used for backup file names.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// playerAcc is the running global-scope state for one player during replay.
type playerAcc struct {
	rating  int
	history []league.RatingEvent
	wins    int
	losses  int
	stats   league.SportStats
}

// memberAcc is the running local-scope state for one player in one room.
// Local state is keyed by (room, player); the same player accumulates
// independently in every room they play in.
type memberAcc struct {
	rating int
	wins   int
	losses int
}
