package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		allowed  bool
	}{
		{AppointmentStatusPending, AppointmentStatusConfirmed, true},
		{AppointmentStatusPending, AppointmentStatusCancelled, true},
		{AppointmentStatusPending, AppointmentStatusCompleted, false},
		{AppointmentStatusConfirmed, AppointmentStatusCompleted, true},
		{AppointmentStatusConfirmed, AppointmentStatusCancelled, true},
		{AppointmentStatusConfirmed, AppointmentStatusPending, false},
		{AppointmentStatusCancelled, AppointmentStatusPending, false},
		{AppointmentStatusCancelled, AppointmentStatusConfirmed, false},
		{AppointmentStatusCompleted, AppointmentStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}

	assert.True(t, AppointmentStatusCancelled.Terminal())
	assert.True(t, AppointmentStatusCompleted.Terminal())
	assert.False(t, AppointmentStatusPending.Terminal())
	assert.False(t, AppointmentStatus("archived").Valid())
}

func TestRecordAndPrescriptionStatus(t *testing.T) {
	assert.True(t, RecordStatusActive.CanTransitionTo(RecordStatusInactive))
	assert.True(t, RecordStatusInactive.CanTransitionTo(RecordStatusActive))
	assert.False(t, RecordStatusActive.CanTransitionTo(RecordStatusActive))
	assert.False(t, RecordStatus("deleted").Valid())

	assert.True(t, PrescriptionStatusActive.CanTransitionTo(PrescriptionStatusEnded))
	assert.False(t, PrescriptionStatusEnded.CanTransitionTo(PrescriptionStatusActive))
}

func TestPagination_Normalize(t *testing.T) {
	p := Pagination{}.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Equal(t, 0, p.Offset())

	p = Pagination{Page: 3, PageSize: 500}.Normalize()
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, 200, p.Offset())
}

func TestNewOutboxEvent(t *testing.T) {
	evt, err := NewOutboxEvent(EventAppointmentCreated, AppointmentEvent{ReferenceCode: "ABCD2345"})
	require.NoError(t, err)

	assert.Equal(t, OutboxStatusPending, evt.Status)
	assert.Contains(t, string(evt.Payload), `"reference_code":"ABCD2345"`)
}
