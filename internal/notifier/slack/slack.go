package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/arttusulkonen/paddletracker-sub000/internal/league"
	"github.com/arttusulkonen/paddletracker-sub000/internal/metrics"
	"github.com/arttusulkonen/paddletracker-sub000/internal/notifier"
	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client
// that we use. This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client
// instance. Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) error {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return nil
}

// SendResultNotification announces one recorded match result.
func (s *Notifier) SendResultNotification(sport league.Sport, room *league.Room, match *league.Match, dryRun bool) error {
	msg := s.formatResultNotification(sport, room, match)
	return s.sendMessage(msg, dryRun)
}

func (s *Notifier) formatResultNotification(sport league.Sport, room *league.Room, match *league.Match) slack.Message {
	p1 := sideLine(room, match.Player1ID, &match.Player1)
	p2 := sideLine(room, match.Player2ID, &match.Player2)

	headerText := slack.NewTextBlockObject(slack.PlainTextType,
		fmt.Sprintf("🏓 Match result: %s", room.Name), false, false)
	scoreText := slack.NewTextBlockObject(slack.MarkdownType,
		fmt.Sprintf("*%s* wins *%d – %d*", match.WinnerName, match.Player1.Score, match.Player2.Score), false, false)
	detailText := slack.NewTextBlockObject(slack.MarkdownType, p1+"\n"+p2, false, false)
	footerText := slack.NewTextBlockObject(slack.MarkdownType,
		fmt.Sprintf("_%s · %s_", sport, match.PlayedAt), false, false)

	blocks := []slack.Block{
		slack.NewHeaderBlock(headerText),
		slack.NewSectionBlock(scoreText, nil, nil),
		slack.NewSectionBlock(detailText, nil, nil),
		slack.NewContextBlock("", footerText),
	}
	return slack.NewBlockMessage(blocks...)
}

func sideLine(room *league.Room, playerID string, side *league.MatchSide) string {
	name := playerID
	if m := room.Member(playerID); m != nil && m.Name != "" {
		name = m.Name
	}
	return fmt.Sprintf("%s: %d → %d (%+d room, %+d global)",
		name, side.OldRoomRating, side.NewRoomRating, side.RoomDelta, side.GlobalDelta)
}
