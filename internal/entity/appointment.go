package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	AppointmentStatusScheduled = "SCHEDULED"
	AppointmentStatusCompleted = "COMPLETED"
	AppointmentStatusCancelled = "CANCELLED"

	// Duración por defecto de los turnos, en minutos.
	DefaultAppointmentDuration = 30
)

// Tipos de servicio que ofrece la clínica. El asistente solo puede agendar
// estos tres (el enum viaja en la definición de la tool).
const (
	ServiceConsulta    = "CONSULTA"
	ServiceLimpieza    = "LIMPIEZA"
	ServiceTratamiento = "TRATAMIENTO"
)

type Appointment struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	Datetime    time.Time `json:"datetime"` // única fuente de verdad para disponibilidad
	ServiceType string    `json:"service_type"`
	Duration    int       `json:"duration"` // minutos
	Status      string    `json:"status"`   // SCHEDULED, COMPLETED, CANCELLED
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Factory
func NewAppointment(patientID string, datetime time.Time, serviceType, notes string) (*Appointment, error) {
	if serviceType == "" {
		serviceType = ServiceConsulta
	}
	if notes == "" {
		notes = "Turno agendado por WhatsApp"
	}

	appointment := &Appointment{
		ID:          uuid.New().String(),
		PatientID:   patientID,
		Datetime:    datetime,
		ServiceType: serviceType,
		Duration:    DefaultAppointmentDuration,
		Status:      AppointmentStatusScheduled,
		Notes:       notes,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := appointment.Validate(); err != nil {
		return nil, err
	}

	return appointment, nil
}

func (a *Appointment) Validate() error {
	if a.PatientID == "" {
		return errors.New("patient_id is required")
	}
	if a.Datetime.IsZero() {
		return errors.New("datetime is required")
	}
	return nil
}
