package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                      sync.Mutex
	recordRuns              int
	recordFailures          int
	matchesRecorded         int
	batchCommits            float64
	recomputeRuns           int
	recomputeMatches        float64
	recomputeSkippedPlayers float64
	recomputeDurations      []float64
	slackNotifSent          int
	slackNotifFailed        int
	startupTime             float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		recomputeDurations: make([]float64, 0),
	}
}

func (m *Mock) IncRecordRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordRuns++
}

func (m *Mock) IncRecordFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordFailures++
}

func (m *Mock) IncMatchesRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesRecorded++
}

func (m *Mock) AddBatchCommits(n float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCommits += n
}

func (m *Mock) IncRecomputeRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recomputeRuns++
}

func (m *Mock) AddRecomputeMatches(n float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recomputeMatches += n
}

func (m *Mock) AddRecomputeSkippedPlayers(n float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recomputeSkippedPlayers += n
}

func (m *Mock) ObserveRecomputeDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recomputeDurations = append(m.recomputeDurations, seconds)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// RecordRuns returns the number of times IncRecordRuns was called.
func (m *Mock) RecordRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recordRuns
}

// RecordFailures returns the number of times IncRecordFailures was called.
func (m *Mock) RecordFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recordFailures
}

// MatchesRecorded returns the number of times IncMatchesRecorded was called.
func (m *Mock) MatchesRecorded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesRecorded
}

// BatchCommits returns the accumulated commit count.
func (m *Mock) BatchCommits() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batchCommits
}

// RecomputeRuns returns the number of times IncRecomputeRuns was called.
func (m *Mock) RecomputeRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recomputeRuns
}

// RecomputeMatches returns the accumulated replayed-match count.
func (m *Mock) RecomputeMatches() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recomputeMatches
}

// RecomputeSkippedPlayers returns the accumulated skipped-player count.
func (m *Mock) RecomputeSkippedPlayers() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recomputeSkippedPlayers
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
