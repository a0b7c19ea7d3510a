package validator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsEmpty(c.input), c.input)
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"123e4567-e89b-12d3-a456-426614174000",
		"123E4567-E89B-12D3-A456-426614174000",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"urn:uuid:123e4567-e89b-12d3-a456-426614174000",
		"",
	}
	for _, id := range valid {
		assert.True(t, IsValidUUID(id), id)
	}
	for _, id := range invalid {
		assert.False(t, IsValidUUID(id), id)
	}
}

func TestIsPlaceholderID(t *testing.T) {
	placeholders := []string{"", "abc", "pending-123456", "local_9f8e7d6c", "TEMP-attendance", "dummy-record-1"}
	for _, id := range placeholders {
		assert.True(t, IsPlaceholderID(id), id)
	}
	assert.False(t, IsPlaceholderID("123e4567-e89b-12d3-a456-426614174000"))
}

func TestIsValidDate(t *testing.T) {
	for _, s := range []string{"2023-01-01", "2000-12-31"} {
		_, ok := IsValidDate(s)
		assert.True(t, ok, s)
	}
	for _, s := range []string{"2023-13-01", "01-01-2023", "2023/01/01", ""} {
		_, ok := IsValidDate(s)
		assert.False(t, ok, s)
	}
}

func TestIsValidDateTime(t *testing.T) {
	for _, s := range []string{"2024-01-15T10:30:00Z", "2024-01-15T10:30:00+02:00", "2024-01-15T10:30:00.123Z"} {
		_, ok := IsValidDateTime(s)
		assert.True(t, ok, s)
	}
	_, ok := IsValidDateTime("2024-01-15 10:30")
	assert.False(t, ok)
}

func TestCoordinates(t *testing.T) {
	assert.True(t, IsValidLatitude(30.04))
	assert.False(t, IsValidLatitude(91))
	assert.False(t, IsValidLatitude(math.NaN()))
	assert.True(t, IsValidLongitude(-180))
	assert.False(t, IsValidLongitude(180.5))
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "latitude", Message: "latitude is required"},
		{Field: "longitude", Message: "longitude is required"},
	}
	assert.Equal(t, "latitude: latitude is required; longitude: longitude is required", errs.Error())
	assert.Equal(t, map[string]string{
		"latitude":  "latitude is required",
		"longitude": "longitude is required",
	}, errs.ToMap())
}
