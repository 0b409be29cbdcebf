package entity

// Estados de la conversación. Los valores van tal cual al documento
// persistido, no renombrar.
const (
	StateInitial               = "initial"
	StateCollectingInfo        = "collecting_info"
	StateSchedulingAppointment = "scheduling_appointment"
	StateCompleted             = "completed"
	StateError                 = "error"
)

type ContactInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Merge incorpora datos nuevos sin pisar los existentes con vacío. Un dato
// cargado solo puede ser reemplazado por otro dato no vacío.
func (c *ContactInfo) Merge(update ContactInfo) {
	if update.Name != "" {
		c.Name = update.Name
	}
	if update.Email != "" {
		c.Email = update.Email
	}
	if update.Phone != "" {
		c.Phone = update.Phone
	}
}

func (c *ContactInfo) IsComplete() bool {
	return c.Name != "" && c.Email != "" && c.Phone != ""
}

type AppointmentDetails struct {
	Date          string `json:"date,omitempty"`
	Time          string `json:"time,omitempty"`
	AppointmentID string `json:"appointment_id,omitempty"`
	PatientID     string `json:"patient_id,omitempty"`
}

// ConversationContext es el documento que persiste entre mensajes de un
// usuario: sus datos de contacto, el estado del flujo y el turno agendado.
type ConversationContext struct {
	ContactInfo        ContactInfo        `json:"contact_info"`
	State              string             `json:"state"`
	AppointmentDetails AppointmentDetails `json:"appointment_details"`
	LeadID             string             `json:"lead_id,omitempty"`
}

func NewConversationContext() *ConversationContext {
	return &ConversationContext{State: StateInitial}
}
