// Package rating implements the Elo math for both rating scopes. It is pure:
// no I/O, no state, every function is deterministic over its inputs.
package rating

import (
	"math"

	"github.com/arttusulkonen/paddletracker-sub000/internal/league"
)

// Scope selects which rating universe a delta is for.
type Scope string

const (
	// ScopeGlobal is the per-sport rating shared across all rooms.
	ScopeGlobal Scope = "global"
	// ScopeLocal is the room-scoped rating.
	ScopeLocal Scope = "local"
)

// GlobalKFactor is fixed for the global scope regardless of room settings.
const GlobalKFactor = 32

// officeLossFactor softens negative local deltas in office rooms. Losses hurt
// less than symmetric wins help; casual rooms keep people playing.
const officeLossFactor = 0.8

// Delta computes the rating change for one player.
//
//	expected = 1 / (1 + 10^((opponent-self)/400))
//	delta    = round(k * (outcome - expected))
//
// Global scope always uses GlobalKFactor and ignores the room mode. Local
// scope applies the mode policy: arcade forces 0, office dampens losses,
// professional is raw. Inputs are coerced rather than rejected; this function
// never fails.
func Delta(ratingSelf, ratingOpponent float64, won bool, kFactor float64, scope Scope, mode league.RoomMode) int {
	self := coerce(ratingSelf)
	opponent := coerce(ratingOpponent)
	k := coerce(kFactor)
	if scope == ScopeGlobal {
		k = GlobalKFactor
	} else if mode == league.ModeArcade {
		return 0
	}

	expected := 1.0 / (1.0 + math.Pow(10, (opponent-self)/400.0))
	outcome := 0.0
	if won {
		outcome = 1.0
	}
	d := int(math.Round(k * (outcome - expected)))

	if scope == ScopeLocal {
		d = DampenLocal(d, mode)
	}
	return d
}

// DampenLocal applies a room mode's policy to an already-computed delta. It
// is the single point through which every local rating movement passes, so
// the lockstep path (local follows the global delta on ranked matches) and
// the independent path share one policy.
func DampenLocal(delta int, mode league.RoomMode) int {
	switch mode {
	case league.ModeArcade:
		return 0
	case league.ModeOffice:
		if delta < 0 {
			return int(math.Round(float64(delta) * officeLossFactor))
		}
	}
	return delta
}

// MatchDeltas computes all four rating movements for one match under the
// recording policy: when ranked, the base delta comes from the global ratings
// and the local copy moves in lockstep (mode-dampened); when unranked, the
// global deltas are zero and the local deltas come from an independent Elo
// comparison over the current local ratings.
func MatchDeltas(global1, global2, local1, local2 int, p1Won, ranked bool, kFactor int, mode league.RoomMode) (g1, g2, l1, l2 int) {
	if ranked {
		g1 = Delta(float64(global1), float64(global2), p1Won, GlobalKFactor, ScopeGlobal, mode)
		g2 = Delta(float64(global2), float64(global1), !p1Won, GlobalKFactor, ScopeGlobal, mode)
		l1 = DampenLocal(g1, mode)
		l2 = DampenLocal(g2, mode)
		return g1, g2, l1, l2
	}
	l1 = Delta(float64(local1), float64(local2), p1Won, float64(kFactor), ScopeLocal, mode)
	l2 = Delta(float64(local2), float64(local1), !p1Won, float64(kFactor), ScopeLocal, mode)
	return 0, 0, l1, l2
}

func coerce(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
