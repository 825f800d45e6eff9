package members

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckEligibility(t *testing.T) {
	tests := []struct {
		name       string
		found      bool
		status     string
		active     int
		max        int
		canBorrow  bool
		wantReason Reason
	}{
		{
			name: "not found", found: false,
			canBorrow: false, wantReason: ReasonMemberNotFound,
		},
		{
			name: "suspended", found: true, status: StatusSuspended,
			canBorrow: false, wantReason: ReasonMemberSuspended,
		},
		{
			// 停止判定は貸出数より先に行う
			name: "suspended and at limit", found: true, status: StatusSuspended, active: 5, max: 5,
			canBorrow: false, wantReason: ReasonMemberSuspended,
		},
		{
			name: "active with no borrowings", found: true, status: StatusActive, active: 0, max: 5,
			canBorrow: true,
		},
		{
			name: "active just under limit", found: true, status: StatusActive, active: 4, max: 5,
			canBorrow: true,
		},
		{
			name: "active at limit", found: true, status: StatusActive, active: 5, max: 5,
			canBorrow: false, wantReason: ReasonMaxBorrowingsReached,
		},
		{
			name: "active over limit", found: true, status: StatusActive, active: 6, max: 5,
			canBorrow: false, wantReason: ReasonMaxBorrowingsReached,
		},
		{
			name: "custom limit", found: true, status: StatusActive, active: 2, max: 3,
			canBorrow: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckEligibility(tt.found, tt.status, tt.active, tt.max)
			assert.Equal(t, tt.canBorrow, got.CanBorrow)
			assert.Equal(t, tt.wantReason, got.Reason)
		})
	}
}
