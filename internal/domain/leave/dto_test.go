package leave

import (
	"testing"

	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLeaveRequestValidate(t *testing.T) {
	ok := CreateLeaveRequest{StartDate: "2025-03-01", EndDate: "2025-03-03", Reason: "family"}
	assert.NoError(t, ok.Validate())

	cases := map[string]CreateLeaveRequest{
		"end_date": {StartDate: "2025-03-05", EndDate: "2025-03-01", Reason: "x"},
		"reason":   {StartDate: "2025-03-01", EndDate: "2025-03-01"},
	}
	for field, req := range cases {
		err := req.Validate()
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap(), field)
	}

	long := CreateLeaveRequest{StartDate: "2025-01-01", EndDate: "2025-06-01", Reason: "travel"}
	assert.Error(t, long.Validate())
}
