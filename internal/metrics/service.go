package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		RecordRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_record_runs_total",
			Help: "The total number of match-recording calls.",
		}),
		RecordFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_record_failures_total",
			Help: "The total number of match-recording calls that failed.",
		}),
		MatchesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_matches_recorded_total",
			Help: "The total number of match documents written by the recorder.",
		}),
		BatchCommits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_batch_commits_total",
			Help: "The total number of committed write batches.",
		}),
		RecomputeRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_recompute_runs_total",
			Help: "The total number of per-sport recompute runs.",
		}),
		RecomputeMatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_recompute_matches_total",
			Help: "The total number of matches replayed by recompute runs.",
		}),
		RecomputeSkippedPlayers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_recompute_skipped_players_total",
			Help: "The total number of player ids referenced by matches but absent from the roster.",
		}),
		RecomputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "league_recompute_duration_seconds",
			Help:    "The duration of one sport's full recompute.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "league_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.RecordRuns,
		s.RecordFailures,
		s.MatchesRecorded,
		s.BatchCommits,
		s.RecomputeRuns,
		s.RecomputeMatches,
		s.RecomputeSkippedPlayers,
		s.RecomputeDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncRecordRuns() {
	s.RecordRuns.Inc()
}

func (s *Service) IncRecordFailures() {
	s.RecordFailures.Inc()
}

func (s *Service) IncMatchesRecorded() {
	s.MatchesRecorded.Inc()
}

func (s *Service) AddBatchCommits(n float64) {
	s.BatchCommits.Add(n)
}

func (s *Service) IncRecomputeRuns() {
	s.RecomputeRuns.Inc()
}

func (s *Service) AddRecomputeMatches(n float64) {
	s.RecomputeMatches.Add(n)
}

func (s *Service) AddRecomputeSkippedPlayers(n float64) {
	s.RecomputeSkippedPlayers.Add(n)
}

func (s *Service) ObserveRecomputeDuration(seconds float64) {
	s.RecomputeDuration.Observe(seconds)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
