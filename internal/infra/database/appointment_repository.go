package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/clinicadelvalle/asistente/internal/entity"
)

const slotLayout = "2006-01-02 15:04"

type AppointmentRepository struct {
	DB  *sql.DB
	Loc *time.Location
}

func NewAppointmentRepository(db *sql.DB, loc *time.Location) *AppointmentRepository {
	return &AppointmentRepository{DB: db, Loc: loc}
}

// CreateWithPatient crea el paciente y el turno como una sola unidad
// atómica. Si el insert del turno falla, la transacción hace rollback
// completo: nunca queda un paciente huérfano que parezca "agendado".
func (r *AppointmentRepository) CreateWithPatient(ctx context.Context, patient *entity.Patient, appointment *entity.Appointment) error {
	if err := patient.Validate(); err != nil {
		return err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("abrir transacción: %w", err)
	}
	defer tx.Rollback()

	if err := insertPatient(ctx, tx, patient); err != nil {
		return fmt.Errorf("crear paciente: %w", err)
	}

	// Re-chequeo de disponibilidad adentro de la transacción: entre la
	// validación y este punto otro turno pudo haber tomado el horario.
	taken, err := slotTaken(ctx, tx, appointment.Datetime)
	if err != nil {
		return err
	}
	if taken {
		return entity.ErrSlotTaken
	}

	appointment.PatientID = patient.ID
	if err := appointment.Validate(); err != nil {
		return err
	}

	if err := insertAppointment(ctx, tx, appointment); err != nil {
		return fmt.Errorf("crear turno: %w", err)
	}

	return tx.Commit()
}

func insertAppointment(ctx context.Context, db execer, a *entity.Appointment) error {
	query := `
		INSERT INTO appointments (id, patient_id, datetime, service_type, duration, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := db.ExecContext(ctx, query,
		a.ID,
		a.PatientID,
		a.Datetime,
		a.ServiceType,
		a.Duration,
		a.Status,
		a.Notes,
		a.CreatedAt,
		a.UpdatedAt,
	)

	return err
}

// CheckAvailability verifica un horario puntual. Repite los chequeos de
// horario y día hábil del validador a propósito: el repositorio tiene que
// poder usarse solo sin dejar pasar un turno un domingo.
func (r *AppointmentRepository) CheckAvailability(ctx context.Context, date, timeStr string) (*entity.Availability, error) {
	slot, err := time.ParseInLocation(slotLayout, date+" "+timeStr, r.Loc)
	if err != nil {
		return &entity.Availability{Available: false, Reason: entity.ReasonInvalidFormat}, nil
	}

	if slot.Weekday() == time.Saturday || slot.Weekday() == time.Sunday {
		return &entity.Availability{Available: false, Reason: entity.ReasonClosedWeekend}, nil
	}

	if slot.Hour() < entity.OpeningHour || slot.Hour() >= entity.ClosingHour {
		return &entity.Availability{Available: false, Reason: entity.ReasonOutsideBusinessHours}, nil
	}

	taken, err := slotTaken(ctx, r.DB, slot)
	if err != nil {
		return nil, err
	}
	if taken {
		return &entity.Availability{Available: false, Reason: entity.ReasonSlotTaken}, nil
	}

	return &entity.Availability{Available: true}, nil
}

// queryer lo cumplen *sql.DB y *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func slotTaken(ctx context.Context, db queryer, slot time.Time) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM appointments
		WHERE datetime = $1
		AND status != 'CANCELLED'
	`

	var count int
	if err := db.QueryRowContext(ctx, query, slot).Scan(&count); err != nil {
		return false, fmt.Errorf("consultar disponibilidad: %w", err)
	}

	return count > 0, nil
}
