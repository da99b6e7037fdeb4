package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncRecordRuns()
	IncRecordFailures()
	IncMatchesRecorded()
	AddBatchCommits(n float64)
	IncRecomputeRuns()
	AddRecomputeMatches(n float64)
	AddRecomputeSkippedPlayers(n float64)
	ObserveRecomputeDuration(seconds float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
