package recompute

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/arttusulkonen/paddletracker-sub000/internal/dates"
	"github.com/arttusulkonen/paddletracker-sub000/internal/league"
	"github.com/arttusulkonen/paddletracker-sub000/internal/metrics"
	"github.com/arttusulkonen/paddletracker-sub000/internal/rating"
	"github.com/arttusulkonen/paddletracker-sub000/internal/store"
	"github.com/charmbracelet/log"
)

// New creates an Engine.
func New(s store.Store, m metrics.Metrics, opts ...Option) *Engine {
	e := &Engine{
		store:      s,
		metrics:    m,
		batchLimit: store.DefaultWriterLimit,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sports discovers every sport with a matches collection.
func (e *Engine) Sports() ([]league.Sport, error) {
	names, err := e.store.Collections()
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	var sports []league.Sport
	for _, name := range names {
		if sport, ok := league.SportFromMatchesCollection(name); ok {
			sports = append(sports, sport)
		}
	}
	return sports, nil
}

// RecomputeAll replays every discovered sport, sequentially. One sport
// completes (including all its flushes) before the next begins; the first
// failure aborts the run. Batches already committed for the failed sport stay
// committed, so a failed run can leave that sport partially recomputed.
func (e *Engine) RecomputeAll() ([]Report, error) {
	sports, err := e.Sports()
	if err != nil {
		return nil, err
	}
	var reports []Report
	for _, sport := range sports {
		report, err := e.RecomputeSport(sport)
		if err != nil {
			return reports, fmt.Errorf("recompute %s: %w", sport, err)
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

// RecomputeSport rebuilds one sport: every match's rating snapshots, every
// room's member ratings and tallies, and every player's global rating,
// history and tallies, with no dependency on their prior stored values.
func (e *Engine) RecomputeSport(sport league.Sport) (*Report, error) {
	started := e.now()
	e.metrics.IncRecomputeRuns()
	log.Info("Recomputing sport", "sport", sport)

	matches, err := e.loadMatches(sport)
	if err != nil {
		return nil, err
	}
	rooms, err := e.loadRooms(sport)
	if err != nil {
		return nil, err
	}
	players, err := e.loadPlayers(sport)
	if err != nil {
		return nil, err
	}

	if e.backupDir != "" {
		if err := e.writeBackup(sport, players, rooms, matches); err != nil {
			return nil, err
		}
	}

	// Chronological order of the resolved instants is the single source of
	// truth; ties keep document order.
	league.SortMatches(matches)

	roomsByID := make(map[string]*league.Room, len(rooms))
	for _, room := range rooms {
		roomsByID[room.ID] = room
	}
	roster := make(map[string]*league.Player, len(players))
	for _, p := range players {
		roster[p.ID] = p
	}

	// Everyone starts over: 1000 in both scopes, empty history, zero tallies.
	globals := make(map[string]*playerAcc)
	for id := range roster {
		globals[id] = &playerAcc{rating: league.DefaultRating, history: []league.RatingEvent{}}
	}
	locals := make(map[string]map[string]*memberAcc, len(rooms))
	memberOrder := make(map[string][]string, len(rooms))
	for _, room := range rooms {
		locals[room.ID] = make(map[string]*memberAcc)
		for _, m := range room.Members {
			locals[room.ID][m.UserID] = &memberAcc{rating: league.DefaultRating}
			memberOrder[room.ID] = append(memberOrder[room.ID], m.UserID)
		}
	}

	missing := make(map[string]bool)
	writer := store.NewWriter(e.store, e.batchLimit)

	for _, match := range matches {
		room, ok := roomsByID[match.RoomID]
		if !ok {
			// A match pointing at an unknown room means the dataset is
			// inconsistent; recomputing over a guess would bake the guess in.
			return nil, fmt.Errorf("match %s references unknown room %s", match.ID, match.RoomID)
		}
		e.replayMatch(match, room, globals, locals, memberOrder, roster, missing)
		if err := writer.Set(league.MatchesCollection(sport), match.ID, match); err != nil {
			return nil, err
		}
	}

	for _, room := range rooms {
		rebuildRoom(room, locals[room.ID], memberOrder[room.ID], roster)
		if err := writer.Set(league.RoomsCollection(sport), room.ID, room); err != nil {
			return nil, err
		}
	}

	for _, p := range players {
		acc := globals[p.ID]
		p.GlobalRating = acc.rating
		p.RatingHistory = acc.history
		p.Wins = acc.wins
		p.Losses = acc.losses
		p.Stats = acc.stats
		// Derived achievements are stale after a rewrite; they are rebuilt by
		// an independent pass, not here.
		p.Achievements = nil
		if err := writer.Set(league.PlayersCollection(sport), p.ID, p); err != nil {
			return nil, err
		}
	}

	if err := writer.Flush(); err != nil {
		return nil, err
	}

	report := &Report{
		Sport:            sport,
		MatchesProcessed: len(matches),
		RoomsUpdated:     len(rooms),
		PlayersUpdated:   len(players),
		MissingPlayers:   sortedKeys(missing),
	}
	e.metrics.AddRecomputeMatches(float64(report.MatchesProcessed))
	e.metrics.AddRecomputeSkippedPlayers(float64(len(report.MissingPlayers)))
	e.metrics.AddBatchCommits(float64(writer.Commits()))
	e.metrics.ObserveRecomputeDuration(e.now().Sub(started).Seconds())
	for _, id := range report.MissingPlayers {
		log.Warn("Match history references player absent from roster, no document written", "sport", sport, "playerID", id)
	}
	log.Info("Sport recomputed",
		"sport", sport,
		"matches", report.MatchesProcessed,
		"rooms", report.RoomsUpdated,
		"players", report.PlayersUpdated,
		"skipped", len(report.MissingPlayers),
		"commits", writer.Commits(),
	)
	return report, nil
}

// replayMatch applies one match to the running state and overwrites its
// rating snapshot and human-readable fields in place. Identity and scores are
// preserved.
func (e *Engine) replayMatch(
	match *league.Match,
	room *league.Room,
	globals map[string]*playerAcc,
	locals map[string]map[string]*memberAcc,
	memberOrder map[string][]string,
	roster map[string]*league.Player,
	missing map[string]bool,
) {
	for _, id := range []string{match.Player1ID, match.Player2ID} {
		if _, ok := roster[id]; !ok && !missing[id] {
			missing[id] = true
		}
		if _, ok := globals[id]; !ok {
			// Transient accumulator: the opponent's math still needs a
			// correct rating even when this player has no document.
			globals[id] = &playerAcc{rating: league.DefaultRating, history: []league.RatingEvent{}}
		}
		if _, ok := locals[room.ID][id]; !ok {
			locals[room.ID][id] = &memberAcc{rating: league.DefaultRating}
			memberOrder[room.ID] = append(memberOrder[room.ID], id)
		}
	}

	g1, g2 := globals[match.Player1ID], globals[match.Player2ID]
	l1, l2 := locals[room.ID][match.Player1ID], locals[room.ID][match.Player2ID]
	p1Won := match.Player1Won()
	ranked := match.EffectiveRanked(room)
	at := match.ResolvedInstant()

	gd1, gd2, ld1, ld2 := rating.MatchDeltas(
		g1.rating, g2.rating, l1.rating, l2.rating,
		p1Won, ranked, room.KFactor, room.Mode,
	)

	match.Player1.OldGlobalRating = g1.rating
	match.Player1.NewGlobalRating = g1.rating + gd1
	match.Player1.GlobalDelta = gd1
	match.Player1.OldRoomRating = l1.rating
	match.Player1.NewRoomRating = l1.rating + ld1
	match.Player1.RoomDelta = ld1
	match.Player2.OldGlobalRating = g2.rating
	match.Player2.NewGlobalRating = g2.rating + gd2
	match.Player2.GlobalDelta = gd2
	match.Player2.OldRoomRating = l2.rating
	match.Player2.NewRoomRating = l2.rating + ld2
	match.Player2.RoomDelta = ld2
	match.Timestamp = dates.FormatISO(at)
	match.PlayedAt = dates.FormatLegacy(at)
	if p1Won {
		match.WinnerName = displayName(match.Player1ID, room, roster)
	} else {
		match.WinnerName = displayName(match.Player2ID, room, roster)
	}

	g1.rating += gd1
	g2.rating += gd2
	l1.rating += ld1
	l2.rating += ld2
	if ranked {
		g1.history = append(g1.history, league.RatingEvent{Date: match.Timestamp, Rating: g1.rating})
		g2.history = append(g2.history, league.RatingEvent{Date: match.Timestamp, Rating: g2.rating})
	}
	if p1Won {
		g1.wins++
		g2.losses++
		l1.wins++
		l2.losses++
	} else {
		g2.wins++
		g1.losses++
		l2.wins++
		l1.losses++
	}
	g1.stats.Add(match.Player1.Stats)
	g2.stats.Add(match.Player2.Stats)
}

// rebuildRoom overwrites the member list with final replayed state, keeping
// prior member order and appending first appearances in replay order. The
// legacy season summary does not survive: a rewritten history invalidates it.
func rebuildRoom(room *league.Room, accs map[string]*memberAcc, order []string, roster map[string]*league.Player) {
	members := make([]league.RoomMember, 0, len(order))
	for _, id := range order {
		acc := accs[id]
		members = append(members, league.RoomMember{
			UserID: id,
			Name:   memberName(id, room, roster),
			Rating: acc.rating,
			Wins:   acc.wins,
			Losses: acc.losses,
		})
	}
	room.Members = members
	room.SeasonSummary = nil
}

func displayName(id string, room *league.Room, roster map[string]*league.Player) string {
	if p, ok := roster[id]; ok && p.Name != "" {
		return p.Name
	}
	if m := room.Member(id); m != nil && m.Name != "" {
		return m.Name
	}
	return id
}

func memberName(id string, room *league.Room, roster map[string]*league.Player) string {
	if m := room.Member(id); m != nil && m.Name != "" {
		return m.Name
	}
	if p, ok := roster[id]; ok && p.Name != "" {
		return p.Name
	}
	return id
}

func (e *Engine) loadMatches(sport league.Sport) ([]*league.Match, error) {
	docs, err := e.store.Query(league.MatchesCollection(sport), nil, "")
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}
	matches := make([]*league.Match, 0, len(docs))
	for _, doc := range docs {
		var m league.Match
		if err := json.Unmarshal(doc.Data, &m); err != nil {
			return nil, fmt.Errorf("decode match %s: %w", doc.ID, err)
		}
		m.ID = doc.ID
		m.Seq = doc.Seq
		matches = append(matches, &m)
	}
	return matches, nil
}

func (e *Engine) loadRooms(sport league.Sport) ([]*league.Room, error) {
	docs, err := e.store.Query(league.RoomsCollection(sport), nil, "")
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	rooms := make([]*league.Room, 0, len(docs))
	for _, doc := range docs {
		var room league.Room
		if err := json.Unmarshal(doc.Data, &room); err != nil {
			return nil, fmt.Errorf("decode room %s: %w", doc.ID, err)
		}
		room.ID = doc.ID
		league.NormalizeRoom(&room)
		rooms = append(rooms, &room)
	}
	return rooms, nil
}

func (e *Engine) loadPlayers(sport league.Sport) ([]*league.Player, error) {
	docs, err := e.store.Query(league.PlayersCollection(sport), nil, "")
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	players := make([]*league.Player, 0, len(docs))
	for _, doc := range docs {
		var p league.Player
		if err := json.Unmarshal(doc.Data, &p); err != nil {
			return nil, fmt.Errorf("decode player %s: %w", doc.ID, err)
		}
		p.ID = doc.ID
		league.NormalizePlayer(&p)
		players = append(players, &p)
	}
	return players, nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
