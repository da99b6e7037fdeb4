package main

import (
	"fmt"
	"math/rand"

	"github.com/arttusulkonen/paddletracker-sub000/internal/league"
	"github.com/arttusulkonen/paddletracker-sub000/internal/recorder"
	"github.com/arttusulkonen/paddletracker-sub000/internal/store"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the store with sample players, rooms, and matches",
	Long: `Creates a handful of players and rooms for the given sport and
records a batch of random results through the normal recording path. Meant
for local development only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := setup()
		defer a.teardown()
		return seed(a, league.Sport(flagSport))
	},
}

func seed(a *app, sport league.Sport) error {
	log.Info("Seeding sample data", "sport", sport)

	players := []league.Player{
		{ID: "seed-player-1", Name: "Seeder Player A"},
		{ID: "seed-player-2", Name: "Seeder Player B"},
		{ID: "seed-player-3", Name: "Seeder Player C"},
		{ID: "seed-player-4", Name: "Seeder Player D"},
	}
	rooms := []league.Room{
		{ID: "seed-room-office", Name: "Office League", Mode: league.ModeOffice, KFactor: league.DefaultKFactor},
		{ID: "seed-room-pro", Name: "Pro Ladder", Mode: league.ModeProfessional, KFactor: league.DefaultKFactor},
		{ID: "seed-room-arcade", Name: "Arcade Corner", Mode: league.ModeArcade, KFactor: league.DefaultKFactor, Ranked: func() *bool { b := false; return &b }()},
	}

	writer := store.NewWriter(a.store, a.cfg.BatchLimit)
	for i := range players {
		league.NormalizePlayer(&players[i])
		if err := writer.Set(league.PlayersCollection(sport), players[i].ID, &players[i]); err != nil {
			return err
		}
	}
	for i := range rooms {
		if err := writer.Set(league.RoomsCollection(sport), rooms[i].ID, &rooms[i]); err != nil {
			return err
		}
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	rec := recorder.New(a.store, a.metrics, a.notifier, a.pubsub,
		recorder.WithBatchLimit(a.cfg.BatchLimit))
	for i := 0; i < 12; i++ {
		room := rooms[rand.Intn(len(rooms))]
		p1 := players[rand.Intn(len(players))]
		p2 := players[rand.Intn(len(players))]
		if p1.ID == p2.ID {
			continue
		}
		rows := []recorder.ResultRow{randomRow(), randomRow()}
		if !rec.Record(sport, room.ID, p1.ID, p2.ID, rows) {
			return fmt.Errorf("failed to record seed match in room %s", room.ID)
		}
	}

	log.Info("Seeding finished", "sport", sport)
	return nil
}

func randomRow() recorder.ResultRow {
	winning := 11
	losing := rand.Intn(10)
	if rand.Intn(2) == 0 {
		return recorder.ResultRow{Score1: winning, Score2: losing}
	}
	return recorder.ResultRow{Score1: losing, Score2: winning}
}
