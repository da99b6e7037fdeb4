package recompute_test

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/arttusulkonen/paddletracker-sub000/internal/league"
	"github.com/arttusulkonen/paddletracker-sub000/internal/metrics"
	"github.com/arttusulkonen/paddletracker-sub000/internal/recompute"
	"github.com/arttusulkonen/paddletracker-sub000/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sport = league.SportPingPong

func seed(t *testing.T, s store.Store, collection string, docs map[string]any) {
	t.Helper()
	b := s.Batch()
	for id, doc := range docs {
		b.Set(collection, id, doc)
	}
	require.NoError(t, b.Commit())
}

func getPlayer(t *testing.T, s store.Store, id string) league.Player {
	t.Helper()
	doc, err := s.Get(league.PlayersCollection(sport), id)
	require.NoError(t, err)
	require.NotNil(t, doc)
	var p league.Player
	require.NoError(t, json.Unmarshal(doc.Data, &p))
	return p
}

func getRoom(t *testing.T, s store.Store, id string) league.Room {
	t.Helper()
	doc, err := s.Get(league.RoomsCollection(sport), id)
	require.NoError(t, err)
	require.NotNil(t, doc)
	var r league.Room
	require.NoError(t, json.Unmarshal(doc.Data, &r))
	return r
}

func getMatch(t *testing.T, s store.Store, id string) league.Match {
	t.Helper()
	doc, err := s.Get(league.MatchesCollection(sport), id)
	require.NoError(t, err)
	require.NotNil(t, doc)
	var m league.Match
	require.NoError(t, json.Unmarshal(doc.Data, &m))
	return m
}

func boolPtr(b bool) *bool { return &b }

func TestRecompute_NoMatchesResetsEverything(t *testing.T) {
	s := store.NewMock()
	seed(t, s, league.PlayersCollection(sport), map[string]any{
		"p1": league.Player{ID: "p1", Name: "Alice", GlobalRating: 1480, Wins: 12, Losses: 3,
			RatingHistory: []league.RatingEvent{{Date: "x", Rating: 1480}},
			Achievements:  []string{"champion"}},
		"p2": league.Player{ID: "p2", Name: "Bob", GlobalRating: 600, Losses: 20},
	})
	seed(t, s, league.RoomsCollection(sport), map[string]any{
		"r1": league.Room{ID: "r1", Mode: league.ModeOffice, KFactor: 32,
			Members:       []league.RoomMember{{UserID: "p1", Name: "Alice", Rating: 1700, Wins: 9}},
			SeasonSummary: json.RawMessage(`{"winner":"p1"}`)},
	})
	engine := recompute.New(s, metrics.NewMock())
	report, err := engine.RecomputeSport(sport)
	require.NoError(t, err)
	assert.Equal(t, 0, report.MatchesProcessed)
	assert.Equal(t, 2, report.PlayersUpdated)

	p1 := getPlayer(t, s, "p1")
	assert.Equal(t, league.DefaultRating, p1.GlobalRating)
	assert.Empty(t, p1.RatingHistory)
	assert.Zero(t, p1.Wins)
	assert.Zero(t, p1.Losses)
	assert.Empty(t, p1.Achievements, "derived achievements are cleared")
	assert.Equal(t, league.DefaultRating, getPlayer(t, s, "p2").GlobalRating)

	room := getRoom(t, s, "r1")
	require.Len(t, room.Members, 1)
	assert.Equal(t, league.DefaultRating, room.Members[0].Rating)
	assert.Zero(t, room.Members[0].Wins)
	assert.Nil(t, room.SeasonSummary, "season summaries do not survive a rewrite")
}

func TestRecompute_RewritesStaleSnapshots(t *testing.T) {
	s := store.NewMock()
	seed(t, s, league.PlayersCollection(sport), map[string]any{
		"p1": league.Player{ID: "p1", Name: "Alice"},
		"p2": league.Player{ID: "p2", Name: "Bob"},
	})
	seed(t, s, league.RoomsCollection(sport), map[string]any{
		"r1": league.Room{ID: "r1", Mode: league.ModeOffice, KFactor: 32},
	})
	// Stored snapshot numbers are garbage; replay must not trust them.
	seed(t, s, league.MatchesCollection(sport), map[string]any{
		"m1": league.Match{ID: "m1", RoomID: "r1", Player1ID: "p1", Player2ID: "p2",
			Timestamp: "2025-08-16T10:00:00",
			Player1:   league.MatchSide{Score: 11, OldGlobalRating: 9999, GlobalDelta: -500},
			Player2:   league.MatchSide{Score: 5, OldGlobalRating: 1, GlobalDelta: 123}},
	})

	engine := recompute.New(s, metrics.NewMock())
	report, err := engine.RecomputeSport(sport)
	require.NoError(t, err)
	assert.Equal(t, 1, report.MatchesProcessed)

	m := getMatch(t, s, "m1")
	assert.Equal(t, 1000, m.Player1.OldGlobalRating)
	assert.Equal(t, 16, m.Player1.GlobalDelta)
	assert.Equal(t, 1016, m.Player1.NewGlobalRating)
	assert.Equal(t, -16, m.Player2.GlobalDelta)
	assert.Equal(t, -13, m.Player2.RoomDelta)
	assert.Equal(t, 11, m.Player1.Score, "scores are identity, never rewritten")
	assert.Equal(t, "Alice", m.WinnerName)

	assert.Equal(t, 1016, getPlayer(t, s, "p1").GlobalRating)
	assert.Equal(t, 984, getPlayer(t, s, "p2").GlobalRating)
}

func TestRecompute_ChronologyBeatsInsertionOrder(t *testing.T) {
	s := store.NewMock()
	seed(t, s, league.PlayersCollection(sport), map[string]any{
		"p1": league.Player{ID: "p1", Name: "Alice"},
		"p2": league.Player{ID: "p2", Name: "Bob"},
	})
	seed(t, s, league.RoomsCollection(sport), map[string]any{
		"r1": league.Room{ID: "r1", Mode: league.ModeProfessional, KFactor: 32},
	})
	// The later-played match was inserted first; the legacy-format match
	// happened earlier and must replay first.
	b := s.Batch()
	b.Set(league.MatchesCollection(sport), "late", league.Match{
		ID: "late", RoomID: "r1", Player1ID: "p1", Player2ID: "p2",
		Timestamp: "2025-08-17T09:00:00",
		Player1:   league.MatchSide{Score: 11}, Player2: league.MatchSide{Score: 7},
	})
	b.Set(league.MatchesCollection(sport), "early", league.Match{
		ID: "early", RoomID: "r1", Player1ID: "p1", Player2ID: "p2",
		PlayedAt: "16.08.2025 10.00.00",
		Player1:  league.MatchSide{Score: 3}, Player2: league.MatchSide{Score: 11},
	})
	require.NoError(t, b.Commit())

	_, err := recompute.New(s, metrics.NewMock()).RecomputeSport(sport)
	require.NoError(t, err)

	early := getMatch(t, s, "early")
	late := getMatch(t, s, "late")
	assert.Equal(t, 1000, early.Player1.OldGlobalRating, "earliest match starts from the default")
	assert.Equal(t, 984, late.Player1.OldGlobalRating, "later match sees the earlier loss")
	assert.Equal(t, "2025-08-16T10:00:00", early.Timestamp, "legacy timestamp gains an ISO form")
	assert.Equal(t, "16.08.2025 10.00.00", early.PlayedAt)
}

func TestRecompute_EqualInstantsKeepInsertionOrder(t *testing.T) {
	s := store.NewMock()
	seed(t, s, league.PlayersCollection(sport), map[string]any{
		"p1": league.Player{ID: "p1"}, "p2": league.Player{ID: "p2"},
	})
	seed(t, s, league.RoomsCollection(sport), map[string]any{
		"r1": league.Room{ID: "r1", Mode: league.ModeProfessional, KFactor: 32},
	})
	b := s.Batch()
	for _, id := range []string{"first", "second"} {
		b.Set(league.MatchesCollection(sport), id, league.Match{
			ID: id, RoomID: "r1", Player1ID: "p1", Player2ID: "p2",
			Timestamp: "2025-08-16T10:00:00",
			Player1:   league.MatchSide{Score: 11}, Player2: league.MatchSide{Score: 5},
		})
	}
	require.NoError(t, b.Commit())

	_, err := recompute.New(s, metrics.NewMock()).RecomputeSport(sport)
	require.NoError(t, err)

	assert.Equal(t, 1000, getMatch(t, s, "first").Player1.OldGlobalRating)
	assert.Equal(t, 1016, getMatch(t, s, "second").Player1.OldGlobalRating)
}

func TestRecompute_MissingPlayerSkippedButOpponentCounts(t *testing.T) {
	s := store.NewMock()
	seed(t, s, league.PlayersCollection(sport), map[string]any{
		"p1": league.Player{ID: "p1", Name: "Alice"},
	})
	seed(t, s, league.RoomsCollection(sport), map[string]any{
		"r1": league.Room{ID: "r1", Mode: league.ModeProfessional, KFactor: 32},
	})
	seed(t, s, league.MatchesCollection(sport), map[string]any{
		"m1": league.Match{ID: "m1", RoomID: "r1", Player1ID: "p1", Player2ID: "ghost",
			Timestamp: "2025-08-16T10:00:00",
			Player1:   league.MatchSide{Score: 11}, Player2: league.MatchSide{Score: 5}},
	})

	m := metrics.NewMock()
	report, err := recompute.New(s, m).RecomputeSport(sport)
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost"}, report.MissingPlayers)
	assert.Equal(t, float64(1), m.RecomputeSkippedPlayers())

	// The opponent's match still counts in full.
	assert.Equal(t, 1016, getPlayer(t, s, "p1").GlobalRating)
	assert.Equal(t, 1, getPlayer(t, s, "p1").Wins)

	// No document is invented for the absent player.
	doc, err := s.Get(league.PlayersCollection(sport), "ghost")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestRecompute_UnrankedMatchInRankedRoom(t *testing.T) {
	s := store.NewMock()
	seed(t, s, league.PlayersCollection(sport), map[string]any{
		"p1": league.Player{ID: "p1"}, "p2": league.Player{ID: "p2"},
	})
	seed(t, s, league.RoomsCollection(sport), map[string]any{
		"r1": league.Room{ID: "r1", Mode: league.ModeOffice, KFactor: 32},
	})
	seed(t, s, league.MatchesCollection(sport), map[string]any{
		"m1": league.Match{ID: "m1", RoomID: "r1", Player1ID: "p1", Player2ID: "p2",
			Timestamp: "2025-08-16T10:00:00", Ranked: boolPtr(false),
			Player1: league.MatchSide{Score: 11}, Player2: league.MatchSide{Score: 5}},
	})

	_, err := recompute.New(s, metrics.NewMock()).RecomputeSport(sport)
	require.NoError(t, err)

	p1 := getPlayer(t, s, "p1")
	assert.Equal(t, 1000, p1.GlobalRating, "unranked play never moves global ratings")
	assert.Empty(t, p1.RatingHistory)
	assert.Equal(t, 1, p1.Wins, "tallies count every match")

	m := getMatch(t, s, "m1")
	assert.Zero(t, m.Player1.GlobalDelta)
	assert.Equal(t, 16, m.Player1.RoomDelta, "local scope still moves on its own")
	assert.Equal(t, -13, m.Player2.RoomDelta)
}

func TestRecompute_UnknownRoomAborts(t *testing.T) {
	s := store.NewMock()
	seed(t, s, league.PlayersCollection(sport), map[string]any{"p1": league.Player{ID: "p1"}})
	seed(t, s, league.MatchesCollection(sport), map[string]any{
		"m1": league.Match{ID: "m1", RoomID: "nowhere", Player1ID: "p1", Player2ID: "p2",
			Player1: league.MatchSide{Score: 11}, Player2: league.MatchSide{Score: 5}},
	})

	_, err := recompute.New(s, metrics.NewMock()).RecomputeSport(sport)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown room")

	// Nothing was flushed.
	p1, err := s.Get(league.PlayersCollection(sport), "p1")
	require.NoError(t, err)
	var got league.Player
	require.NoError(t, json.Unmarshal(p1.Data, &got))
	assert.Equal(t, "p1", got.ID)
}

func TestRecompute_IsIdempotent(t *testing.T) {
	s := store.NewMock()
	seed(t, s, league.PlayersCollection(sport), map[string]any{
		"p1": league.Player{ID: "p1", Name: "Alice"},
		"p2": league.Player{ID: "p2", Name: "Bob"},
		"p3": league.Player{ID: "p3", Name: "Cara"},
	})
	seed(t, s, league.RoomsCollection(sport), map[string]any{
		"r1": league.Room{ID: "r1", Mode: league.ModeOffice, KFactor: 32},
		"r2": league.Room{ID: "r2", Mode: league.ModeProfessional, KFactor: 24},
	})
	seed(t, s, league.MatchesCollection(sport), map[string]any{
		"m1": league.Match{ID: "m1", RoomID: "r1", Player1ID: "p1", Player2ID: "p2",
			PlayedAt: "16.08.2025 10.00.00",
			Player1:  league.MatchSide{Score: 11, Stats: league.SportStats{Aces: 2}},
			Player2:  league.MatchSide{Score: 5}},
		"m2": league.Match{ID: "m2", RoomID: "r2", Player1ID: "p2", Player2ID: "p3",
			TS:      time.Date(2025, 8, 16, 12, 0, 0, 0, time.Local).Unix(),
			Player1: league.MatchSide{Score: 9}, Player2: league.MatchSide{Score: 11}},
		"m3": league.Match{ID: "m3", RoomID: "r1", Player1ID: "p3", Player2ID: "p1",
			Timestamp: "2025-08-17T09:30:00",
			Player1:   league.MatchSide{Score: 11}, Player2: league.MatchSide{Score: 8}},
	})

	engine := recompute.New(s, metrics.NewMock())
	_, err := engine.RecomputeSport(sport)
	require.NoError(t, err)

	snapshot := func() map[string]string {
		out := make(map[string]string)
		for _, coll := range []string{
			league.MatchesCollection(sport),
			league.RoomsCollection(sport),
			league.PlayersCollection(sport),
		} {
			docs, err := s.Query(coll, nil, "")
			require.NoError(t, err)
			for _, doc := range docs {
				out[coll+"/"+doc.ID] = string(doc.Data)
			}
		}
		return out
	}

	first := snapshot()
	_, err = engine.RecomputeSport(sport)
	require.NoError(t, err)
	assert.Equal(t, first, snapshot(), "a second run over its own output changes nothing")
}

func TestRecompute_IdempotentAcrossZonedTimestamps(t *testing.T) {
	s := store.NewMock()
	seed(t, s, league.PlayersCollection(sport), map[string]any{
		"p1": league.Player{ID: "p1", Name: "Alice"},
		"p2": league.Player{ID: "p2", Name: "Bob"},
	})
	seed(t, s, league.RoomsCollection(sport), map[string]any{
		"r1": league.Room{ID: "r1", Mode: league.ModeProfessional, KFactor: 32},
	})
	// One offset-carrying timestamp next to a zone-less one. The first run
	// rewrites the zoned form as a zone-less string; the relative order of
	// the two matches must not flip when that string is re-read.
	seed(t, s, league.MatchesCollection(sport), map[string]any{
		"zoned": league.Match{ID: "zoned", RoomID: "r1", Player1ID: "p1", Player2ID: "p2",
			Timestamp: "2025-08-16T10:00:00+05:00",
			Player1:   league.MatchSide{Score: 11}, Player2: league.MatchSide{Score: 5}},
		"plain": league.Match{ID: "plain", RoomID: "r1", Player1ID: "p2", Player2ID: "p1",
			Timestamp: "2025-08-16T07:00:00",
			Player1:   league.MatchSide{Score: 11}, Player2: league.MatchSide{Score: 5}},
	})

	engine := recompute.New(s, metrics.NewMock())
	_, err := engine.RecomputeSport(sport)
	require.NoError(t, err)
	firstZoned := getMatch(t, s, "zoned")
	firstPlain := getMatch(t, s, "plain")

	_, err = engine.RecomputeSport(sport)
	require.NoError(t, err)
	assert.Equal(t, firstZoned, getMatch(t, s, "zoned"), "second run changed the zoned match's snapshots")
	assert.Equal(t, firstPlain, getMatch(t, s, "plain"), "second run changed the plain match's snapshots")
}

func TestRecomputeAll(t *testing.T) {
	s := store.NewMock()
	for _, sp := range []league.Sport{league.SportPingPong, league.SportTennis} {
		b := s.Batch()
		b.Set(league.PlayersCollection(sp), "p1", league.Player{ID: "p1"})
		b.Set(league.PlayersCollection(sp), "p2", league.Player{ID: "p2"})
		b.Set(league.RoomsCollection(sp), "r1", league.Room{ID: "r1", Mode: league.ModeProfessional, KFactor: 32})
		b.Set(league.MatchesCollection(sp), "m1", league.Match{
			ID: "m1", RoomID: "r1", Player1ID: "p1", Player2ID: "p2",
			Timestamp: "2025-08-16T10:00:00",
			Player1:   league.MatchSide{Score: 11}, Player2: league.MatchSide{Score: 5},
		})
		require.NoError(t, b.Commit())
	}

	m := metrics.NewMock()
	reports, err := recompute.New(s, m).RecomputeAll()
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, league.SportPingPong, reports[0].Sport)
	assert.Equal(t, league.SportTennis, reports[1].Sport)
	assert.Equal(t, 2, m.RecomputeRuns())
	assert.Equal(t, float64(2), m.RecomputeMatches())
}

func TestRecompute_WritesBackupBeforeRewriting(t *testing.T) {
	s := store.NewMock()
	seed(t, s, league.PlayersCollection(sport), map[string]any{"p1": league.Player{ID: "p1"}})

	dir := t.TempDir()
	engine := recompute.New(s, metrics.NewMock(), recompute.WithBackupDir(dir))
	_, err := engine.RecomputeSport(sport)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "recompute-pingpong-")

	info, err := entries[0].Info()
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
