package league

import (
	"sort"
	"time"

	"github.com/arttusulkonen/paddletracker-sub000/internal/dates"
)

// The store hands back loosely-typed JSON documents with optional legacy
// fields. Normalization happens once at ingestion so the engines can rely on
// the canonical shape everywhere else.

// NormalizePlayer fills defaults on a freshly loaded player document.
func NormalizePlayer(p *Player) {
	if p.GlobalRating == 0 {
		p.GlobalRating = DefaultRating
	}
	if p.RatingHistory == nil {
		p.RatingHistory = []RatingEvent{}
	}
}

// NormalizeRoom fills defaults and drops duplicate members, keeping the first
// occurrence to preserve member order.
func NormalizeRoom(r *Room) {
	if r.Mode == "" {
		r.Mode = ModeOffice
	}
	if r.KFactor <= 0 {
		r.KFactor = DefaultKFactor
	}
	seen := make(map[string]bool, len(r.Members))
	members := r.Members[:0]
	for _, m := range r.Members {
		if m.UserID == "" || seen[m.UserID] {
			continue
		}
		seen[m.UserID] = true
		if m.Rating == 0 {
			m.Rating = DefaultRating
		}
		members = append(members, m)
	}
	r.Members = members
}

// ResolvedInstant normalizes the match's timestamp fields into one instant,
// preferring the ISO form, then the numeric epoch, then the legacy locale
// string, then creation time.
func (m *Match) ResolvedInstant() time.Time {
	return dates.ResolveChain(m.Timestamp, m.TS, m.PlayedAt, m.CreatedAt)
}

// SortMatches orders matches ascending by resolved instant with the store's
// insertion order as the stable tie-break. Replay correctness depends on this
// ordering; equal instants must keep document order.
func SortMatches(matches []*Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		ti, tj := matches[i].ResolvedInstant(), matches[j].ResolvedInstant()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return matches[i].Seq < matches[j].Seq
	})
}
