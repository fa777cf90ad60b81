package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReservationStatus_Active(t *testing.T) {
	assert.True(t, ReservationStatusPending.Active())
	assert.True(t, ReservationStatusApproved.Active())
	assert.False(t, ReservationStatusRejected.Active())
	assert.False(t, ReservationStatusBorrowed.Active())
	assert.False(t, ReservationStatusReturned.Active())
}

func TestActiveStatuses(t *testing.T) {
	assert.Equal(t,
		[]ReservationStatus{ReservationStatusPending, ReservationStatusApproved},
		ActiveStatuses())
}
