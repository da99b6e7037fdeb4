package notifier

import "github.com/arttusulkonen/paddletracker-sub000/internal/league"

// Notifier defines a high-level interface for announcing business events.
// This decouples the rest of the application from the specific notification
// provider (e.g., Slack).
type Notifier interface {
	// SendResultNotification announces one recorded match result.
	SendResultNotification(sport league.Sport, room *league.Room, match *league.Match, dryRun bool) error
}

// Noop drops every notification; used when no provider is configured.
type Noop struct{}

func (Noop) SendResultNotification(league.Sport, *league.Room, *league.Match, bool) error {
	return nil
}
