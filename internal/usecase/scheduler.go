package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/clinicadelvalle/asistente/internal/entity"
)

const slotLayout = "2006-01-02 15:04"

// AvailabilityChecker consulta si un turno puntual ya está tomado en la base.
type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, date, timeStr string) (*entity.Availability, error)
}

// SchedulingValidator aplica las reglas de agenda en orden fijo: formato,
// fecha pasada, fin de semana, horario de atención y por último
// disponibilidad del slot. Devuelve el primer rechazo que encuentra.
type SchedulingValidator struct {
	Availability AvailabilityChecker
	Loc          *time.Location
	Now          func() time.Time
}

func NewSchedulingValidator(availability AvailabilityChecker, loc *time.Location) *SchedulingValidator {
	return &SchedulingValidator{
		Availability: availability,
		Loc:          loc,
		Now:          time.Now,
	}
}

func (v *SchedulingValidator) Validate(ctx context.Context, date, timeStr string) (*entity.Availability, error) {
	slot, ok := v.ParseSlot(date, timeStr)
	if !ok {
		return &entity.Availability{Available: false, Reason: entity.ReasonInvalidFormat}, nil
	}

	now := v.Now().In(v.Loc)
	if slot.Before(now) {
		return &entity.Availability{Available: false, Reason: entity.ReasonPastDate}, nil
	}

	if wd := slot.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return &entity.Availability{Available: false, Reason: entity.ReasonClosedWeekend}, nil
	}

	if h := slot.Hour(); h < entity.OpeningHour || h >= entity.ClosingHour {
		return &entity.Availability{Available: false, Reason: entity.ReasonOutsideBusinessHours}, nil
	}

	return v.Availability.CheckAvailability(ctx, date, timeStr)
}

// ParseSlot interpreta la fecha y hora en la zona horaria del consultorio.
// Tolera que el modelo mande ambos campos juntos en date ("2025-09-03, 14:00").
func (v *SchedulingValidator) ParseSlot(date, timeStr string) (time.Time, bool) {
	date = strings.TrimSpace(date)
	timeStr = strings.TrimSpace(timeStr)

	if timeStr == "" && strings.Contains(date, ",") {
		parts := strings.SplitN(date, ",", 2)
		date = strings.TrimSpace(parts[0])
		timeStr = strings.TrimSpace(parts[1])
	}

	slot, err := time.ParseInLocation(slotLayout, date+" "+timeStr, v.Loc)
	if err != nil {
		return time.Time{}, false
	}
	return slot, true
}
