package recorder

import (
	"time"

	"github.com/arttusulkonen/paddletracker-sub000/internal/league"
	"github.com/arttusulkonen/paddletracker-sub000/internal/metrics"
	"github.com/arttusulkonen/paddletracker-sub000/internal/notifier"
	"github.com/arttusulkonen/paddletracker-sub000/internal/pubsub"
	"github.com/arttusulkonen/paddletracker-sub000/internal/store"
)

// ResultRow is one reported game between the two participants. Rows in one
// call are not independent: they replay in input order, each seeing the
// rating state left by the previous one.
type ResultRow struct {
	Score1 int
	Score2 int
	Stats1 league.SportStats
	Stats2 league.SportStats
	// Winner optionally names the winning player id; only consulted when the
	// scores are equal.
	Winner string
}

// Recorder applies reported match results to the store.
type Recorder struct {
	store      store.Store
	metrics    metrics.Metrics
	notifier   notifier.Notifier
	pubsub     pubsub.PubSubClient
	batchLimit int
	now        func() time.Time
}

// Option tweaks a Recorder.
type Option func(*Recorder)

// WithBatchLimit overrides the write batch auto-flush limit.
func WithBatchLimit(n int) Option {
	return func(r *Recorder) { r.batchLimit = n }
}

// WithClock overrides the clock; tests use it to pin match timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}
