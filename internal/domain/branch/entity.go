package branch

import (
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/geo"
)

type Branch struct {
	ID             string
	Name           string
	Latitude       *float64
	Longitude      *float64
	GeofenceRadius *float64
	PulseTolerance *float64
	WifiBSSID      *string
	BSSID2         *string
	ManagerID      *string
}

// HasCenter reports whether the branch has usable center coordinates.
func (b Branch) HasCenter() bool {
	_, ok := geo.DistanceMeters(b.Latitude, b.Longitude, b.Latitude, b.Longitude)
	return ok
}

// Site is a resolved branch together with its geofence parameters. A Site with a nil
// Branch means the branch could not be resolved and validation is indeterminate.
type Site struct {
	Branch     *Branch
	AllowedAPs geo.APSet
	// Radius is the branch's configured geofence radius, nil when unset.
	Radius    *float64
	Tolerance float64
}

func (s Site) Known() bool {
	return s.Branch != nil
}

func (s Site) BranchID() *string {
	if s.Branch == nil {
		return nil
	}
	id := s.Branch.ID
	return &id
}

// DistanceFrom returns the distance from the branch center, ok false when either side
// lacks coordinates.
func (s Site) DistanceFrom(lat, lon *float64) (float64, bool) {
	if s.Branch == nil {
		return 0, false
	}
	return geo.DistanceMeters(lat, lon, s.Branch.Latitude, s.Branch.Longitude)
}

// RadiusOr returns the configured radius when positive, otherwise fallback.
func (s Site) RadiusOr(fallback float64) float64 {
	if s.Radius != nil && *s.Radius > 0 {
		return *s.Radius
	}
	return fallback
}

// WifiValid matches an observed access point against the allow-list. An empty
// allow-list passes only when failOpenEmpty is set.
func (s Site) WifiValid(observed string, failOpenEmpty bool) bool {
	if s.AllowedAPs.Len() == 0 {
		return failOpenEmpty
	}
	return geo.MatchesAllowedAccessPoint(observed, s.AllowedAPs)
}
