package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestDistanceMeters(t *testing.T) {
	cairoLat, cairoLon := 30.0444, 31.2357
	gizaLat, gizaLon := 29.9792, 31.1342

	t.Run("symmetric", func(t *testing.T) {
		ab, ok := DistanceMeters(ptr(cairoLat), ptr(cairoLon), ptr(gizaLat), ptr(gizaLon))
		require.True(t, ok)
		ba, ok := DistanceMeters(ptr(gizaLat), ptr(gizaLon), ptr(cairoLat), ptr(cairoLon))
		require.True(t, ok)
		assert.InDelta(t, ab, ba, 1e-9)
	})

	t.Run("same point is zero", func(t *testing.T) {
		d, ok := DistanceMeters(ptr(cairoLat), ptr(cairoLon), ptr(cairoLat), ptr(cairoLon))
		require.True(t, ok)
		assert.Equal(t, 0.0, d)
	})

	t.Run("city scale accuracy", func(t *testing.T) {
		// Tahrir Square to the Giza pyramids is roughly 12.3 km.
		d, ok := DistanceMeters(ptr(cairoLat), ptr(cairoLon), ptr(gizaLat), ptr(gizaLon))
		require.True(t, ok)
		assert.InDelta(t, 12300, d, 300)
	})

	t.Run("one thousandth of a degree of latitude", func(t *testing.T) {
		d, ok := DistanceMeters(ptr(30.0), ptr(31.0), ptr(30.001), ptr(31.0))
		require.True(t, ok)
		assert.InDelta(t, 111.19, d, 0.5)
	})

	t.Run("missing or non-finite coordinates", func(t *testing.T) {
		cases := []struct {
			name                   string
			lat1, lon1, lat2, lon2 *float64
		}{
			{"nil lat1", nil, ptr(1), ptr(1), ptr(1)},
			{"nil lon2", ptr(1), ptr(1), ptr(1), nil},
			{"NaN", ptr(math.NaN()), ptr(1), ptr(1), ptr(1)},
			{"Inf", ptr(1), ptr(math.Inf(1)), ptr(1), ptr(1)},
		}
		for _, c := range cases {
			_, ok := DistanceMeters(c.lat1, c.lon1, c.lat2, c.lon2)
			assert.False(t, ok, c.name)
		}
	})
}

func TestNormalizeAPID(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"   ", ""},
		{"aa-bb-cc-dd-ee-ff", "AA:BB:CC:DD:EE:FF"},
		{" aa:bb:cc:dd:ee:ff ", "AA:BB:CC:DD:EE:FF"},
		{"Aa-Bb:cc-DD:ee-FF", "AA:BB:CC:DD:EE:FF"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeAPID(c.input), c.input)
	}
}

func TestParseAPList(t *testing.T) {
	got := ParseAPList("aa-bb-cc-dd-ee-01, aa:bb:cc:dd:ee:02\naa-bb-cc-dd-ee-03  ,,")
	assert.Equal(t, []string{"AA:BB:CC:DD:EE:01", "AA:BB:CC:DD:EE:02", "AA:BB:CC:DD:EE:03"}, got)
	assert.Empty(t, ParseAPList(" \n , "))
}

func TestAPSet(t *testing.T) {
	s := NewAPSet("aa-bb-cc-dd-ee-ff", "AA:BB:CC:DD:EE:FF", "", "11:22:33:44:55:66")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("aa-bb-cc-dd-ee-ff"))
	assert.Equal(t, []string{"11:22:33:44:55:66", "AA:BB:CC:DD:EE:FF"}, s.Values())
}

func TestMatchesAllowedAccessPoint(t *testing.T) {
	allowed := NewAPSet("AA:BB:CC:DD:EE:FF")

	cases := []struct {
		name     string
		observed string
		allowed  APSet
		want     bool
	}{
		{"empty allow-list passes anything", "", NewAPSet(), true},
		{"empty allow-list passes unknown ap", "11:22:33:44:55:66", NewAPSet(), true},
		{"listed ap in other notation", "aa-bb-cc-dd-ee-ff", allowed, true},
		{"unlisted ap", "11:22:33:44:55:66", allowed, false},
		{"no ap observed", "", allowed, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, MatchesAllowedAccessPoint(c.observed, c.allowed))
		})
	}
}
