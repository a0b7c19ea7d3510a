package employee

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestRateOr(t *testing.T) {
	fallback := decimal.NewFromInt(60)
	rate := decimal.NewFromInt(50)
	zero := decimal.Zero

	assert.True(t, Employee{}.RateOr(fallback).Equal(fallback))
	assert.True(t, Employee{HourlyRate: &zero}.RateOr(fallback).Equal(fallback))
	assert.True(t, Employee{HourlyRate: &rate}.RateOr(fallback).Equal(rate))
}

func TestInSameBranch(t *testing.T) {
	cases := []struct {
		name string
		a, b Employee
		want bool
	}{
		{"same id", Employee{BranchID: strPtr("b1")}, Employee{BranchID: strPtr("b1")}, true},
		{"different id", Employee{BranchID: strPtr("b1")}, Employee{BranchID: strPtr("b2")}, false},
		{"name fallback", Employee{BranchName: strPtr("Downtown ")}, Employee{BranchName: strPtr("downtown")}, true},
		{"different names", Employee{BranchName: strPtr("Downtown")}, Employee{BranchName: strPtr("Airport")}, false},
		{"nothing assigned", Employee{}, Employee{}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.a.InSameBranch(c.b))
		})
	}
}
