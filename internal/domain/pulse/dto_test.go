package pulse

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBatchShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{"single object", `{"latitude": 30.1, "longitude": 31.2}`, 1},
		{"array", `[{"latitude": 30.1, "longitude": 31.2}, {"wifi_bssid": "aa:bb"}]`, 2},
		{"wrapped", ` {"pulses": [{"latitude": 30.1, "longitude": 31.2}]}`, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := DecodeBatch([]byte(c.body))
			require.NoError(t, err)
			assert.Len(t, got, c.want)
		})
	}
}

func TestDecodeBatchRejects(t *testing.T) {
	_, err := DecodeBatch([]byte(""))
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = DecodeBatch([]byte(`[]`))
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = DecodeBatch([]byte(`{"pulses": []}`))
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = DecodeBatch([]byte(`"pulse"`))
	assert.Error(t, err)

	big := "[" + strings.TrimSuffix(strings.Repeat(`{},`, MaxBatchSize+1), ",") + "]"
	_, err = DecodeBatch([]byte(big))
	assert.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestPulseInputValidate(t *testing.T) {
	lat, lon, neg := 30.0, 31.0, -1.0
	assert.NoError(t, (&PulseInput{EmployeeID: "e1", Latitude: &lat, Longitude: &lon}).Validate())
	assert.Error(t, (&PulseInput{EmployeeID: "e1", Latitude: &lat}).Validate())
	assert.Error(t, (&PulseInput{EmployeeID: "e1", DistanceFromCenter: &neg}).Validate())
	assert.Error(t, (&PulseInput{}).Validate())
}

func TestSessionValidationSubmitRequestValidate(t *testing.T) {
	ok := SessionValidationSubmitRequest{
		EmployeeID: "e1",
		GapStart:   "2024-03-04T08:30:00+02:00",
		GapEnd:     "2024-03-04T09:00:00+02:00",
		Reason:     "offline",
	}
	assert.NoError(t, ok.Validate())

	backwards := ok
	backwards.GapEnd = "2024-03-04T08:00:00+02:00"
	assert.Error(t, backwards.Validate())

	badRef := ok
	badRef.AttendanceID = testPtr("local-123")
	assert.Error(t, badRef.Validate())

	assert.Error(t, (&SessionValidationSubmitRequest{}).Validate())
}

func TestSyntheticTimesStayInsideGap(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	v := SessionValidation{GapStart: start, GapEnd: start.Add(20 * time.Minute)}

	got := v.SyntheticTimes()
	require.Len(t, got, 3)
	assert.Equal(t, start.Add(5*time.Minute), got[0])
	assert.Equal(t, start.Add(15*time.Minute), got[2])

	short := SessionValidation{GapStart: start, GapEnd: start.Add(4 * time.Minute)}
	assert.Empty(t, short.SyntheticTimes())
}

func testPtr(s string) *string { return &s }
