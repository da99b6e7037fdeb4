package league_test

import (
	"testing"

	"github.com/arttusulkonen/paddletracker-sub000/internal/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionNaming(t *testing.T) {
	assert.Equal(t, "matches-pingpong", league.MatchesCollection(league.SportPingPong))
	assert.Equal(t, "rooms-tennis", league.RoomsCollection(league.SportTennis))
	assert.Equal(t, "players-badminton", league.PlayersCollection(league.SportBadminton))

	sport, ok := league.SportFromMatchesCollection("matches-pingpong")
	require.True(t, ok)
	assert.Equal(t, league.SportPingPong, sport)

	_, ok = league.SportFromMatchesCollection("rooms-pingpong")
	assert.False(t, ok)
	_, ok = league.SportFromMatchesCollection("matches-")
	assert.False(t, ok)
}

func TestNormalizeRoom(t *testing.T) {
	room := league.Room{
		Members: []league.RoomMember{
			{UserID: "a", Rating: 1100},
			{UserID: "b"},
			{UserID: "a", Rating: 900}, // duplicate, first wins
			{UserID: ""},               // dropped
		},
	}
	league.NormalizeRoom(&room)

	assert.Equal(t, league.ModeOffice, room.Mode)
	assert.Equal(t, league.DefaultKFactor, room.KFactor)
	require.Len(t, room.Members, 2)
	assert.Equal(t, "a", room.Members[0].UserID)
	assert.Equal(t, 1100, room.Members[0].Rating)
	assert.Equal(t, league.DefaultRating, room.Members[1].Rating)
}

func TestNormalizePlayer(t *testing.T) {
	p := league.Player{ID: "p1"}
	league.NormalizePlayer(&p)
	assert.Equal(t, league.DefaultRating, p.GlobalRating)
	assert.NotNil(t, p.RatingHistory)
}

func TestRankedDefaults(t *testing.T) {
	yes, no := true, false
	room := league.Room{}
	assert.True(t, room.IsRanked(), "absent flag means ranked")
	room.Ranked = &no
	assert.False(t, room.IsRanked())

	match := league.Match{}
	assert.True(t, match.IsRanked())
	match.Ranked = &yes
	assert.True(t, match.EffectiveRanked(&league.Room{Ranked: &yes}))
	assert.False(t, match.EffectiveRanked(&league.Room{Ranked: &no}))
}

func TestPlayer1Won(t *testing.T) {
	t.Run("score comparison", func(t *testing.T) {
		m := league.Match{Player1: league.MatchSide{Score: 11}, Player2: league.MatchSide{Score: 5}}
		assert.True(t, m.Player1Won())
		m = league.Match{Player1: league.MatchSide{Score: 9}, Player2: league.MatchSide{Score: 11}}
		assert.False(t, m.Player1Won())
	})

	t.Run("equal scores use explicit winner", func(t *testing.T) {
		m := league.Match{
			Player1ID: "p1", Player2ID: "p2",
			Player1: league.MatchSide{Score: 10}, Player2: league.MatchSide{Score: 10},
			Winner: "p2",
		}
		assert.False(t, m.Player1Won())
	})

	t.Run("equal scores default to player1", func(t *testing.T) {
		m := league.Match{
			Player1ID: "p1", Player2ID: "p2",
			Player1: league.MatchSide{Score: 10}, Player2: league.MatchSide{Score: 10},
		}
		assert.True(t, m.Player1Won())
	})
}

func TestSortMatches(t *testing.T) {
	t.Run("legacy and ISO timestamps interleave chronologically", func(t *testing.T) {
		matches := []*league.Match{
			{ID: "c", Timestamp: "2025-08-16T12:00:00", Seq: 3},
			{ID: "a", PlayedAt: "16.08.2025 10.00.00", Seq: 1},
			{ID: "b", TS: 1755334800, Seq: 2}, // falls between when local is UTC-ish; order by instant regardless
		}
		league.SortMatches(matches)
		// Whatever instants resolve to, order must be ascending.
		for i := 1; i < len(matches); i++ {
			prev := matches[i-1].ResolvedInstant()
			cur := matches[i].ResolvedInstant()
			assert.False(t, cur.Before(prev), "matches out of order at %d", i)
		}
	})

	t.Run("equal instants keep document order", func(t *testing.T) {
		matches := []*league.Match{
			{ID: "second", Timestamp: "2025-08-16T10:00:00", Seq: 2},
			{ID: "first", Timestamp: "2025-08-16T10:00:00", Seq: 1},
			{ID: "third", Timestamp: "2025-08-16T10:00:00", Seq: 3},
		}
		league.SortMatches(matches)
		assert.Equal(t, "first", matches[0].ID)
		assert.Equal(t, "second", matches[1].ID)
		assert.Equal(t, "third", matches[2].ID)
	})

	t.Run("unresolvable timestamps sort to the epoch front", func(t *testing.T) {
		matches := []*league.Match{
			{ID: "dated", Timestamp: "2025-08-16T10:00:00", Seq: 1},
			{ID: "undated", Seq: 2},
		}
		league.SortMatches(matches)
		assert.Equal(t, "undated", matches[0].ID)
	})
}
