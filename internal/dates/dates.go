// Package dates normalizes the timestamp zoo found on stored match documents
// into a single comparable instant. Old documents carry a locale format, newer
// ones an ISO string or an epoch number; some carry nothing usable at all.
package dates

import (
	"encoding/json"
	"time"
)

// LegacyLayout is the dd.mm.yyyy hh.mm.ss format written by early clients.
const LegacyLayout = "02.01.2006 15.04.05"

// ISOLayout is the zone-less ISO form written back onto recomputed documents.
const ISOLayout = "2006-01-02T15:04:05"

// Zone-less layouts are parsed in local time so that a legacy timestamp and
// its ISO equivalent resolve to the same instant.
var stringLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	LegacyLayout,
}

// Epoch values at or above this are taken as milliseconds. The cutoff is far
// beyond any plausible seconds value (year 5138).
const millisCutoff = int64(1e11)

// Epoch returns the zero fallback instant.
func Epoch() time.Time { return time.Unix(0, 0) }

// Parse attempts all known string layouts. The second return is false when
// nothing matched.
func Parse(s string) (time.Time, bool) {
	if s == "" {
		return Epoch(), false
	}
	for _, layout := range stringLayouts {
		var t time.Time
		var err error
		if layout == time.RFC3339 || layout == time.RFC3339Nano {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, time.Local)
		}
		if err == nil {
			return t, true
		}
	}
	return Epoch(), false
}

// FromEpoch interprets a numeric timestamp as epoch seconds or milliseconds.
func FromEpoch(n int64) time.Time {
	if n <= 0 {
		return Epoch()
	}
	if n >= millisCutoff {
		return time.UnixMilli(n)
	}
	return time.Unix(n, 0)
}

// Resolve normalizes a heterogeneous timestamp value. Strings go through the
// layout chain, numbers through the epoch heuristic. It never fails; total
// garbage resolves to the epoch.
func Resolve(v any) time.Time {
	switch x := v.(type) {
	case time.Time:
		return x
	case string:
		t, _ := Parse(x)
		return t
	case int64:
		return FromEpoch(x)
	case int:
		return FromEpoch(int64(x))
	case float64:
		return FromEpoch(int64(x))
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return FromEpoch(n)
		}
		t, _ := Parse(x.String())
		return t
	default:
		return Epoch()
	}
}

// ResolveChain picks the first field of a match document that yields a usable
// instant: ISO timestamp, then numeric epoch, then the legacy played-at
// string, then creation time, else the epoch fallback.
func ResolveChain(iso string, epoch int64, legacy, created string) time.Time {
	if t, ok := Parse(iso); ok {
		return t
	}
	if epoch > 0 {
		return FromEpoch(epoch)
	}
	if t, ok := Parse(legacy); ok {
		return t
	}
	if t, ok := Parse(created); ok {
		return t
	}
	return Epoch()
}

// FormatISO renders the sortable form stored on documents. Both formats are
// zone-less and Parse reads them back in local time, so the instant is
// rendered in local time first; formatting in any other location would change
// the instant on the next parse.
func FormatISO(t time.Time) string { return t.In(time.Local).Format(ISOLayout) }

// FormatLegacy renders the human-readable locale form.
func FormatLegacy(t time.Time) string { return t.In(time.Local).Format(LegacyLayout) }
