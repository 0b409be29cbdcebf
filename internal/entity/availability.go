package entity

import "errors"

// Horario de atención de la clínica: lunes a viernes, de 9:00 a 18:00
// (la hora 18 ya queda afuera).
const (
	OpeningHour = 9
	ClosingHour = 18
)

// Códigos de rechazo de una fecha propuesta. Viajan en el output de la
// tool para que el asistente pueda ofrecer alternativas.
const (
	ReasonInvalidFormat        = "InvalidFormat"
	ReasonPastDate             = "PastDate"
	ReasonClosedWeekend        = "ClosedWeekend"
	ReasonOutsideBusinessHours = "OutsideBusinessHours"
	ReasonSlotTaken            = "SlotTaken"
	ReasonMissingContactInfo   = "MissingContactInfo"
)

// ErrSlotTaken: ya existe un turno no cancelado en ese horario exacto.
var ErrSlotTaken = errors.New("slot already taken")

type Availability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}
