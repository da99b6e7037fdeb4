package dates_test

import (
	"testing"
	"time"

	"github.com/arttusulkonen/paddletracker-sub000/internal/dates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_LegacyAndISOAgree(t *testing.T) {
	legacy, ok := dates.Parse("16.08.2025 10.01.01")
	require.True(t, ok)
	iso, ok := dates.Parse("2025-08-16T10:01:01")
	require.True(t, ok)

	// Both layouts are zone-less and carry local time semantics, so they
	// must resolve to the same instant.
	assert.True(t, legacy.Equal(iso), "legacy %v != iso %v", legacy, iso)
}

func TestParse_Unparseable(t *testing.T) {
	for _, input := range []string{"", "not a date", "99.99.9999 10.00.00", "tomorrowish"} {
		got, ok := dates.Parse(input)
		assert.False(t, ok, "input %q should not parse", input)
		assert.True(t, got.Equal(dates.Epoch()), "input %q should fall back to epoch", input)
	}
}

func TestFromEpoch(t *testing.T) {
	t.Run("seconds", func(t *testing.T) {
		got := dates.FromEpoch(1723802461)
		assert.Equal(t, int64(1723802461), got.Unix())
	})

	t.Run("milliseconds", func(t *testing.T) {
		got := dates.FromEpoch(1723802461000)
		assert.Equal(t, int64(1723802461), got.Unix())
	})

	t.Run("zero and negative fall back", func(t *testing.T) {
		assert.True(t, dates.FromEpoch(0).Equal(dates.Epoch()))
		assert.True(t, dates.FromEpoch(-5).Equal(dates.Epoch()))
	})
}

func TestResolve(t *testing.T) {
	want := time.Date(2025, 8, 16, 10, 1, 1, 0, time.Local)

	assert.True(t, dates.Resolve("2025-08-16T10:01:01").Equal(want))
	assert.True(t, dates.Resolve("16.08.2025 10.01.01").Equal(want))
	assert.True(t, dates.Resolve(want.Unix()).Equal(want))
	assert.True(t, dates.Resolve(float64(want.Unix())).Equal(want))
	assert.True(t, dates.Resolve(nil).Equal(dates.Epoch()))
	assert.True(t, dates.Resolve(struct{}{}).Equal(dates.Epoch()))
}

func TestResolveChain(t *testing.T) {
	t.Run("prefers ISO over epoch", func(t *testing.T) {
		got := dates.ResolveChain("2025-08-16T10:01:01", 1000000000, "", "")
		want := time.Date(2025, 8, 16, 10, 1, 1, 0, time.Local)
		assert.True(t, got.Equal(want))
	})

	t.Run("falls through to epoch then legacy then created", func(t *testing.T) {
		got := dates.ResolveChain("", 1723802461, "", "")
		assert.Equal(t, int64(1723802461), got.Unix())

		got = dates.ResolveChain("garbage", 0, "16.08.2025 10.01.01", "")
		assert.True(t, got.Equal(time.Date(2025, 8, 16, 10, 1, 1, 0, time.Local)))

		got = dates.ResolveChain("", 0, "", "2024-01-01T00:00:00")
		assert.True(t, got.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)))
	})

	t.Run("total failure resolves to epoch zero", func(t *testing.T) {
		got := dates.ResolveChain("", 0, "", "")
		assert.True(t, got.Equal(dates.Epoch()))
	})
}

func TestFormatRoundTrip(t *testing.T) {
	at := time.Date(2025, 8, 16, 10, 1, 1, 0, time.Local)
	isoBack, ok := dates.Parse(dates.FormatISO(at))
	require.True(t, ok)
	legacyBack, ok := dates.Parse(dates.FormatLegacy(at))
	require.True(t, ok)
	assert.True(t, isoBack.Equal(at))
	assert.True(t, legacyBack.Equal(at))
}

func TestFormatRoundTrip_PreservesZonedInstants(t *testing.T) {
	// The formats are zone-less and Parse reads them back in local time, so
	// an instant parsed from an offset-carrying string must survive a
	// format/parse cycle unchanged.
	zoned, ok := dates.Parse("2025-08-16T10:00:00+05:00")
	require.True(t, ok)

	isoBack, ok := dates.Parse(dates.FormatISO(zoned))
	require.True(t, ok)
	assert.True(t, isoBack.Equal(zoned), "iso round-trip moved the instant: %v != %v", isoBack, zoned)

	legacyBack, ok := dates.Parse(dates.FormatLegacy(zoned))
	require.True(t, ok)
	assert.True(t, legacyBack.Equal(zoned), "legacy round-trip moved the instant: %v != %v", legacyBack, zoned)
}
