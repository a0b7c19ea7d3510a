package geo

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

const earthRadiusMeters = 6371000

// DistanceMeters returns the haversine distance between two coordinates in meters.
// ok is false when any coordinate is missing or not finite.
func DistanceMeters(lat1, lon1, lat2, lon2 *float64) (meters float64, ok bool) {
	if !finite(lat1) || !finite(lon1) || !finite(lat2) || !finite(lon2) {
		return 0, false
	}
	return Haversine(*lat1, *lon1, *lat2, *lon2), true
}

// Haversine computes the great-circle distance in meters.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// RoundMeters rounds a distance to whole meters for responses.
func RoundMeters(d float64) float64 {
	return math.Round(d)
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// NormalizeAPID normalizes a Wi-Fi access point identifier (BSSID).
// An empty result means no identifier.
func NormalizeAPID(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ""
	}
	return strings.ReplaceAll(strings.ToUpper(v), "-", ":")
}

var apSeparators = regexp.MustCompile(`[\s,]+`)

// ParseAPList splits a stored allow-list field that may hold several identifiers
// separated by whitespace, commas or newlines.
func ParseAPList(raw string) []string {
	var out []string
	for _, part := range apSeparators.Split(raw, -1) {
		if id := NormalizeAPID(part); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// APSet is a set of normalized access point identifiers.
type APSet map[string]struct{}

func NewAPSet(values ...string) APSet {
	s := make(APSet, len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add normalizes v and adds it. Empty identifiers are ignored.
func (s APSet) Add(v string) {
	if id := NormalizeAPID(v); id != "" {
		s[id] = struct{}{}
	}
}

func (s APSet) Has(v string) bool {
	_, ok := s[NormalizeAPID(v)]
	return ok
}

func (s APSet) Len() int {
	return len(s)
}

// Values returns the identifiers in sorted order.
func (s APSet) Values() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MatchesAllowedAccessPoint reports whether observed is allowed. An empty allow-list
// allows everything.
func MatchesAllowedAccessPoint(observed string, allowed APSet) bool {
	if allowed.Len() == 0 {
		return true
	}
	id := NormalizeAPID(observed)
	if id == "" {
		return false
	}
	_, ok := allowed[id]
	return ok
}
