package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/arttusulkonen/paddletracker-sub000/internal/league"
	"github.com/arttusulkonen/paddletracker-sub000/internal/pubsub"
	"github.com/arttusulkonen/paddletracker-sub000/internal/recompute"
	"github.com/arttusulkonen/paddletracker-sub000/internal/recorder"
	"github.com/arttusulkonen/paddletracker-sub000/internal/standings"
	"github.com/arttusulkonen/paddletracker-sub000/internal/store"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	flagSport  string
	flagRoom   string
	flagP1     string
	flagP2     string
	flagSets   string
	flagWinner string
	flagPlayer string
	flagBackup string
)

var rootCmd = &cobra.Command{
	Use:   "paddletracker",
	Short: "League tracker maintenance and recording CLI",
	Long: `Records competitive match results, derives standings, and replays a
sport's full match history to rebuild every rating-derived field.`,
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Replay match history and rebuild all rating fields",
	Long: `Replays the entire match history per sport from a fixed starting
rating, rewriting every match's rating snapshots, every room's member list,
and every player document. Used for backfills, bug fixes, and migrations.
Any sport failure aborts the run with a non-zero exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := setup()
		defer a.teardown()

		backupDir := a.cfg.BackupDir
		if flagBackup != "" {
			backupDir = flagBackup
		}
		engine := recompute.New(a.store, a.metrics,
			recompute.WithBatchLimit(a.cfg.BatchLimit),
			recompute.WithBackupDir(backupDir),
		)

		var reports []recompute.Report
		var err error
		if flagSport != "" {
			var report *recompute.Report
			report, err = engine.RecomputeSport(league.Sport(flagSport))
			if report != nil {
				reports = append(reports, *report)
			}
		} else {
			reports, err = engine.RecomputeAll()
		}

		for _, r := range reports {
			fmt.Printf("%s: %d matches, %d rooms updated, %d players updated, %d players skipped\n",
				r.Sport, r.MatchesProcessed, r.RoomsUpdated, r.PlayersUpdated, len(r.MissingPlayers))
			event := pubsub.RecomputeCompletedEvent{
				Sport:          string(r.Sport),
				Matches:        r.MatchesProcessed,
				Rooms:          r.RoomsUpdated,
				Players:        r.PlayersUpdated,
				SkippedPlayers: len(r.MissingPlayers),
			}
			if err := a.pubsub.SendMessage(string(pubsub.EventRecomputeCompleted), event); err != nil {
				log.Error("Failed to publish recompute event", "error", err, "sport", r.Sport)
			}
		}
		if err != nil {
			return fmt.Errorf("recompute failed: %w", err)
		}
		fmt.Println("recompute completed")
		return nil
	},
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record one or more match results for two players in a room",
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := parseSets(flagSets, flagWinner)
		if err != nil {
			return err
		}
		a := setup()
		defer a.teardown()

		rec := recorder.New(a.store, a.metrics, a.notifier, a.pubsub,
			recorder.WithBatchLimit(a.cfg.BatchLimit))
		if !rec.Record(league.Sport(flagSport), flagRoom, flagP1, flagP2, rows) {
			return fmt.Errorf("recording failed, see log output")
		}
		fmt.Printf("recorded %d result(s)\n", len(rows))
		return nil
	},
}

var standingsCmd = &cobra.Command{
	Use:   "standings",
	Short: "Print a player's derived standings for one room",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := setup()
		defer a.teardown()

		sport := league.Sport(flagSport)
		room, matches, err := loadRoomMatches(a.store, sport, flagRoom)
		if err != nil {
			return err
		}
		opts := standings.Options{
			FormWindow:        a.cfg.Standings.FormWindow,
			MinMatchesVisible: a.cfg.Standings.MinMatchesVisible,
		}
		s := standings.Compute(room, matches, flagPlayer, opts)

		ratingStr := fmt.Sprintf("hidden (below %d matches)", opts.MinMatchesVisible)
		if v := s.VisibleRating(); v != standings.HiddenRating {
			ratingStr = strconv.Itoa(v)
		}
		fmt.Printf("player %s in room %s\n", s.PlayerID, room.Name)
		fmt.Printf("  rating:         %s\n", ratingStr)
		fmt.Printf("  record:         %d-%d (%.1f%%)\n", s.Wins, s.Losses, s.WinPercentage)
		fmt.Printf("  streak:         %+d (longest win streak %d)\n", s.CurrentStreak, s.LongestWinStreak)
		fmt.Printf("  avg delta:      %+.2f\n", s.AverageDelta)
		fmt.Println("  recent form:")
		for _, f := range s.RecentForm {
			result := "L"
			if f.Won {
				result = "W"
			}
			fmt.Printf("    %s %s vs %s (%s)\n", result, f.Score, f.OpponentName, f.Date)
		}
		return nil
	},
}

func init() {
	recomputeCmd.Flags().StringVar(&flagSport, "sport", "", "Recompute only this sport (default: all discovered sports)")
	recomputeCmd.Flags().StringVar(&flagBackup, "backup-dir", "", "Write a pre-run msgpack backup of the sport's documents here")

	recordCmd.Flags().StringVar(&flagSport, "sport", string(league.SportPingPong), "Sport the room belongs to")
	recordCmd.Flags().StringVar(&flagRoom, "room", "", "Room id")
	recordCmd.Flags().StringVar(&flagP1, "p1", "", "First player id")
	recordCmd.Flags().StringVar(&flagP2, "p2", "", "Second player id")
	recordCmd.Flags().StringVar(&flagSets, "sets", "", "Comma-separated scores, e.g. 11-5,8-11")
	recordCmd.Flags().StringVar(&flagWinner, "winner", "", "Winner id for rows with equal scores")
	recordCmd.MarkFlagRequired("room")
	recordCmd.MarkFlagRequired("p1")
	recordCmd.MarkFlagRequired("p2")
	recordCmd.MarkFlagRequired("sets")

	standingsCmd.Flags().StringVar(&flagSport, "sport", string(league.SportPingPong), "Sport the room belongs to")
	standingsCmd.Flags().StringVar(&flagRoom, "room", "", "Room id")
	standingsCmd.Flags().StringVar(&flagPlayer, "player", "", "Player id")
	standingsCmd.MarkFlagRequired("room")
	standingsCmd.MarkFlagRequired("player")

	seedCmd.Flags().StringVar(&flagSport, "sport", string(league.SportPingPong), "Sport to seed")

	rootCmd.AddCommand(recomputeCmd, recordCmd, standingsCmd, seedCmd)
}

// Execute runs the CLI, exiting non-zero on any command failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// parseSets turns "11-5,8-11" into result rows.
func parseSets(sets, winner string) ([]recorder.ResultRow, error) {
	if sets == "" {
		return nil, fmt.Errorf("--sets is required")
	}
	var rows []recorder.ResultRow
	for _, part := range strings.Split(sets, ",") {
		part = strings.TrimSpace(part)
		scores := strings.SplitN(part, "-", 2)
		if len(scores) != 2 {
			return nil, fmt.Errorf("invalid set %q, want score1-score2", part)
		}
		s1, err := strconv.Atoi(strings.TrimSpace(scores[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid score in %q: %w", part, err)
		}
		s2, err := strconv.Atoi(strings.TrimSpace(scores[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid score in %q: %w", part, err)
		}
		rows = append(rows, recorder.ResultRow{Score1: s1, Score2: s2, Winner: winner})
	}
	return rows, nil
}

func loadRoomMatches(s store.Store, sport league.Sport, roomID string) (*league.Room, []*league.Match, error) {
	doc, err := s.Get(league.RoomsCollection(sport), roomID)
	if err != nil {
		return nil, nil, err
	}
	if doc == nil {
		return nil, nil, fmt.Errorf("room %s not found for sport %s", roomID, sport)
	}
	var room league.Room
	if err := json.Unmarshal(doc.Data, &room); err != nil {
		return nil, nil, fmt.Errorf("decode room %s: %w", roomID, err)
	}
	room.ID = roomID
	league.NormalizeRoom(&room)

	docs, err := s.Query(league.MatchesCollection(sport), []store.Filter{{Field: "roomId", Value: roomID}}, "")
	if err != nil {
		return nil, nil, err
	}
	matches := make([]*league.Match, 0, len(docs))
	for _, d := range docs {
		var m league.Match
		if err := json.Unmarshal(d.Data, &m); err != nil {
			return nil, nil, fmt.Errorf("decode match %s: %w", d.ID, err)
		}
		m.ID = d.ID
		m.Seq = d.Seq
		matches = append(matches, &m)
	}
	return &room, matches, nil
}
