package database

import (
	"context"
	"database/sql"

	"github.com/clinicadelvalle/asistente/internal/entity"
)

type PatientRepository struct {
	DB *sql.DB
}

func NewPatientRepository(db *sql.DB) *PatientRepository {
	return &PatientRepository{DB: db}
}

func (r *PatientRepository) Create(ctx context.Context, patient *entity.Patient) error {
	if err := patient.Validate(); err != nil {
		return err
	}
	return insertPatient(ctx, r.DB, patient)
}

// execer lo cumplen *sql.DB y *sql.Tx; permite reusar el insert dentro de
// la transacción del turno.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertPatient(ctx context.Context, db execer, patient *entity.Patient) error {
	query := `
		INSERT INTO patients (id, name, email, phone, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := db.ExecContext(ctx, query,
		patient.ID,
		patient.Name,
		nullString(patient.Email),
		nullString(patient.Phone),
		patient.Notes,
		patient.CreatedAt,
		patient.UpdatedAt,
	)

	return err
}
