package notifier

import (
	"sync"

	"github.com/arttusulkonen/paddletracker-sub000/internal/league"
)

var _ Notifier = (*Mock)(nil)

// Mock records notifications for assertions in tests.
type Mock struct {
	mu      sync.Mutex
	results []*league.Match

	// Err, when set, is returned by every call.
	Err error
}

// NewMock creates a new mock instance.
func NewMock() *Mock { return &Mock{} }

func (m *Mock) SendResultNotification(_ league.Sport, _ *league.Room, match *league.Match, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.results = append(m.results, match)
	return nil
}

// Results returns the matches announced so far.
func (m *Mock) Results() []*league.Match {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*league.Match(nil), m.results...)
}
