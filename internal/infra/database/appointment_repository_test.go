package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicadelvalle/asistente/internal/entity"
)

func newTestRepo(t *testing.T) (*AppointmentRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	require.NoError(t, err)

	return NewAppointmentRepository(db, loc), mock
}

func testPatientAndAppointment(t *testing.T, loc *time.Location) (*entity.Patient, *entity.Appointment) {
	t.Helper()

	patient, err := entity.NewPatient("Ana López", "ana@mail.com", "+5491155551234")
	require.NoError(t, err)

	slot := time.Date(2026, 9, 3, 10, 0, 0, 0, loc)
	appointment, err := entity.NewAppointment(patient.ID, slot, entity.ServiceConsulta, "")
	require.NoError(t, err)

	return patient, appointment
}

func TestCreateWithPatientCommits(t *testing.T) {
	repo, mock := newTestRepo(t)
	patient, appointment := testPatientAndAppointment(t, repo.Loc)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO patients").
		WithArgs(patient.ID, patient.Name, sqlmock.AnyArg(), sqlmock.AnyArg(), patient.Notes, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WithArgs(appointment.Datetime).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO appointments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.CreateWithPatient(context.Background(), patient, appointment)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Si el slot se ocupó entre la validación y la transacción, todo vuelve
// atrás: el paciente insertado no sobrevive al rollback.
func TestCreateWithPatientRollsBackWhenSlotTaken(t *testing.T) {
	repo, mock := newTestRepo(t)
	patient, appointment := testPatientAndAppointment(t, repo.Loc)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO patients").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WithArgs(appointment.Datetime).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.CreateWithPatient(context.Background(), patient, appointment)

	require.ErrorIs(t, err, entity.ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithPatientRollsBackOnInsertFailure(t *testing.T) {
	repo, mock := newTestRepo(t)
	patient, appointment := testPatientAndAppointment(t, repo.Loc)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO patients").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO appointments").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.CreateWithPatient(context.Background(), patient, appointment)

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Los chequeos de calendario cortan antes de tocar la base.
func TestCheckAvailabilityRejectsWithoutQuerying(t *testing.T) {
	repo, mock := newTestRepo(t)

	cases := []struct {
		name   string
		date   string
		time   string
		reason string
	}{
		{"formato inválido", "03/09/2026", "10:00", entity.ReasonInvalidFormat},
		{"sábado", "2026-09-05", "10:00", entity.ReasonClosedWeekend},
		{"domingo", "2026-09-06", "10:00", entity.ReasonClosedWeekend},
		{"antes de abrir", "2026-09-03", "08:00", entity.ReasonOutsideBusinessHours},
		{"hora de cierre", "2026-09-03", "18:00", entity.ReasonOutsideBusinessHours},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			availability, err := repo.CheckAvailability(context.Background(), c.date, c.time)
			require.NoError(t, err)
			assert.False(t, availability.Available)
			assert.Equal(t, c.reason, availability.Reason)
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAvailabilityFreeSlot(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	availability, err := repo.CheckAvailability(context.Background(), "2026-09-03", "10:00")

	require.NoError(t, err)
	assert.True(t, availability.Available)
	assert.Empty(t, availability.Reason)
}

func TestCheckAvailabilityTakenSlot(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	availability, err := repo.CheckAvailability(context.Background(), "2026-09-03", "10:00")

	require.NoError(t, err)
	assert.False(t, availability.Available)
	assert.Equal(t, entity.ReasonSlotTaken, availability.Reason)
}
