package main

import (
	"net/http"
	"os"
	"time"

	"github.com/arttusulkonen/paddletracker-sub000/internal/config"
	"github.com/arttusulkonen/paddletracker-sub000/internal/database"
	"github.com/arttusulkonen/paddletracker-sub000/internal/metrics"
	"github.com/arttusulkonen/paddletracker-sub000/internal/notifier"
	slacknotifier "github.com/arttusulkonen/paddletracker-sub000/internal/notifier/slack"
	"github.com/arttusulkonen/paddletracker-sub000/internal/pubsub"
	"github.com/arttusulkonen/paddletracker-sub000/internal/store"
	"github.com/charmbracelet/log"
)

// app bundles everything a command needs after wiring.
type app struct {
	cfg      config.Config
	store    store.Store
	metrics  *metrics.Service
	notifier notifier.Notifier
	pubsub   pubsub.PubSubClient
	teardown func()
}

// setup wires the application the way every command expects it: config,
// database, store, metrics, and the optional integrations.
func setup() *app {
	startTime := time.Now()
	if os.Getenv("LOG_FORMAT") == "json" {
		log.SetFormatter(log.JSONFormatter)
	}
	cfg := config.Load()

	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}

	metricsSvc := metrics.NewService()
	if cfg.MetricsAddr != "" {
		go func() {
			log.Info("Metrics listener started", "addr", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, metrics.NewMetricsHandler()); err != nil {
				log.Error("Metrics listener failed", "error", err)
			}
		}()
	}

	var n notifier.Notifier = notifier.Noop{}
	if cfg.Slack.Token != "" && cfg.Slack.ChannelID != "" {
		n = slacknotifier.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	}

	ps := pubsub.New(cfg.ProjectID)
	a := &app{
		cfg:      cfg,
		store:    store.New(db),
		metrics:  metricsSvc,
		notifier: n,
		pubsub:   ps,
		teardown: func() {
			ps.Close()
			log.Info("Closing database connection")
			dbTeardown()
		},
	}

	metricsSvc.SetStartupTime(time.Since(startTime).Seconds())
	return a
}

func main() {
	Execute()
}
