package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clinicadelvalle/asistente/internal/entity"
)

// Miércoles 2 de septiembre de 2026 a las 12:00, hora de Buenos Aires.
func fixedNow(loc *time.Location) func() time.Time {
	return func() time.Time {
		return time.Date(2026, 9, 2, 12, 0, 0, 0, loc)
	}
}

func newTestValidator(t *testing.T, checker AvailabilityChecker) *SchedulingValidator {
	t.Helper()
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	require.NoError(t, err)

	v := NewSchedulingValidator(checker, loc)
	v.Now = fixedNow(loc)
	return v
}

func TestValidateInvalidFormat(t *testing.T) {
	v := newTestValidator(t, nil)

	cases := []struct {
		date, time string
	}{
		{"03-09-2026", "10:00"},
		{"2026-09-03", "10"},
		{"mañana", "10:00"},
		{"", ""},
	}

	for _, c := range cases {
		availability, err := v.Validate(context.Background(), c.date, c.time)
		require.NoError(t, err)
		assert.False(t, availability.Available)
		assert.Equal(t, entity.ReasonInvalidFormat, availability.Reason)
	}
}

func TestValidatePastDate(t *testing.T) {
	v := newTestValidator(t, nil)

	availability, err := v.Validate(context.Background(), "2026-09-01", "10:00")
	require.NoError(t, err)
	assert.False(t, availability.Available)
	assert.Equal(t, entity.ReasonPastDate, availability.Reason)
}

func TestValidateClosedWeekend(t *testing.T) {
	v := newTestValidator(t, nil)

	// Sábado y domingo
	for _, date := range []string{"2026-09-05", "2026-09-06"} {
		availability, err := v.Validate(context.Background(), date, "10:00")
		require.NoError(t, err)
		assert.False(t, availability.Available)
		assert.Equal(t, entity.ReasonClosedWeekend, availability.Reason)
	}
}

func TestValidateOutsideBusinessHours(t *testing.T) {
	v := newTestValidator(t, nil)

	for _, hour := range []string{"08:59", "18:00", "23:00"} {
		availability, err := v.Validate(context.Background(), "2026-09-03", hour)
		require.NoError(t, err)
		assert.False(t, availability.Available)
		assert.Equal(t, entity.ReasonOutsideBusinessHours, availability.Reason)
	}

	// El cierre es exclusivo pero 17:59 todavía entra.
	checker := new(MockAppointmentRepository)
	checker.On("CheckAvailability", mock.Anything, "2026-09-03", "17:59").
		Return(&entity.Availability{Available: true}, nil)
	v = newTestValidator(t, checker)

	availability, err := v.Validate(context.Background(), "2026-09-03", "17:59")
	require.NoError(t, err)
	assert.True(t, availability.Available)
}

func TestValidateSlotTaken(t *testing.T) {
	checker := new(MockAppointmentRepository)
	checker.On("CheckAvailability", mock.Anything, "2026-09-03", "10:00").
		Return(&entity.Availability{Available: false, Reason: entity.ReasonSlotTaken}, nil)

	v := newTestValidator(t, checker)

	availability, err := v.Validate(context.Background(), "2026-09-03", "10:00")
	require.NoError(t, err)
	assert.False(t, availability.Available)
	assert.Equal(t, entity.ReasonSlotTaken, availability.Reason)
}

// El orden importa: una fecha pasada en fin de semana reporta PastDate, no
// ClosedWeekend.
func TestValidateRuleOrder(t *testing.T) {
	v := newTestValidator(t, nil)

	availability, err := v.Validate(context.Background(), "2026-08-30", "10:00")
	require.NoError(t, err)
	assert.Equal(t, entity.ReasonPastDate, availability.Reason)
}

func TestParseSlotCombinedField(t *testing.T) {
	v := newTestValidator(t, nil)

	slot, ok := v.ParseSlot("2026-09-03, 14:00", "")
	require.True(t, ok)
	assert.Equal(t, 14, slot.Hour())
	assert.Equal(t, 3, slot.Day())
}
