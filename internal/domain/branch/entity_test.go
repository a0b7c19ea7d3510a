package branch

import (
	"testing"

	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/geo"
	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func TestSiteUnknown(t *testing.T) {
	var s Site
	assert.False(t, s.Known())
	assert.Nil(t, s.BranchID())
	_, ok := s.DistanceFrom(f(30), f(31))
	assert.False(t, ok)
	assert.Equal(t, 200.0, s.RadiusOr(200))
}

func TestSiteDistanceAndRadius(t *testing.T) {
	s := Site{
		Branch: &Branch{ID: "b1", Latitude: f(30), Longitude: f(31)},
		Radius: f(150),
	}
	assert.True(t, s.Known())
	assert.Equal(t, "b1", *s.BranchID())
	assert.True(t, s.Branch.HasCenter())

	d, ok := s.DistanceFrom(f(30.001), f(31))
	assert.True(t, ok)
	assert.InDelta(t, 111.19, d, 0.5)
	assert.Equal(t, 150.0, s.RadiusOr(200))

	zero := Site{Radius: f(0)}
	assert.Equal(t, 200.0, zero.RadiusOr(200))
}

func TestSiteWifiValid(t *testing.T) {
	empty := Site{AllowedAPs: geo.NewAPSet()}
	assert.True(t, empty.WifiValid("", true))
	assert.False(t, empty.WifiValid("AA:BB:CC:DD:EE:FF", false))

	listed := Site{AllowedAPs: geo.NewAPSet("aa-bb-cc-dd-ee-ff")}
	assert.True(t, listed.WifiValid("AA:BB:CC:DD:EE:FF", false))
	assert.False(t, listed.WifiValid("11:22:33:44:55:66", true))
}
