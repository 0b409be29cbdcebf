package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicadelvalle/asistente/internal/entity"
)

func newTestContextRepo(t *testing.T) (*ContextRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewContextRepository(db), mock
}

// Un usuario que nunca escribió arranca con el contexto por defecto, sin
// error.
func TestGetMissingContextReturnsDefault(t *testing.T) {
	repo, mock := newTestContextRepo(t)

	mock.ExpectQuery("SELECT context_data").
		WithArgs("user-nuevo").
		WillReturnRows(sqlmock.NewRows([]string{"context_data"}))

	c, err := repo.Get(context.Background(), "user-nuevo")

	require.NoError(t, err)
	assert.Equal(t, entity.StateInitial, c.State)
	assert.Empty(t, c.ContactInfo.Name)
	assert.Empty(t, c.LeadID)
}

func TestGetRoundTripsDocument(t *testing.T) {
	repo, mock := newTestContextRepo(t)

	doc := `{
		"contact_info": {"name": "Ana", "email": "ana@mail.com", "phone": "+549115555"},
		"state": "scheduling_appointment",
		"appointment_details": {"date": "2026-09-03", "time": "10:00", "appointment_id": "apt-1", "patient_id": "pat-1"},
		"lead_id": "lead-1"
	}`

	mock.ExpectQuery("SELECT context_data").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"context_data"}).AddRow(doc))

	c, err := repo.Get(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, "Ana", c.ContactInfo.Name)
	assert.Equal(t, entity.StateSchedulingAppointment, c.State)
	assert.Equal(t, "apt-1", c.AppointmentDetails.AppointmentID)
	assert.Equal(t, "lead-1", c.LeadID)
}

// Un documento viejo sin campo state se normaliza a initial.
func TestGetBackfillsMissingState(t *testing.T) {
	repo, mock := newTestContextRepo(t)

	mock.ExpectQuery("SELECT context_data").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"context_data"}).AddRow(`{"contact_info": {"name": "Ana"}}`))

	c, err := repo.Get(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, entity.StateInitial, c.State)
	assert.Equal(t, "Ana", c.ContactInfo.Name)
}

func TestSaveUpsertsDocument(t *testing.T) {
	repo, mock := newTestContextRepo(t)

	c := entity.NewConversationContext()
	c.ContactInfo.Name = "Ana"
	c.State = entity.StateCollectingInfo

	mock.ExpectExec("INSERT INTO user_context").
		WithArgs("user-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(context.Background(), "user-1", c)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
