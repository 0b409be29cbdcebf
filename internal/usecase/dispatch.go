package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/clinicadelvalle/asistente/internal/entity"
	"github.com/clinicadelvalle/asistente/internal/infra/integration/openai"
	"github.com/clinicadelvalle/asistente/internal/infra/metrics"
	"github.com/clinicadelvalle/asistente/internal/infra/queue"
	logx "github.com/clinicadelvalle/asistente/pkg/logger"
)

// ToolDispatcher ejecuta las funciones que el asistente pide durante un run
// y arma el batch de outputs. Cada tool call recibe un output, incluso las
// que fallan: devolver un error estructurado deja que el modelo se lo
// explique al usuario en vez de matar el run.
type ToolDispatcher struct {
	Leads        LeadRepositoryInterface
	Appointments AppointmentRepositoryInterface
	Contexts     ContextRepositoryInterface
	Validator    *SchedulingValidator
	Producer     EventProducerInterface // opcional
}

func NewToolDispatcher(
	leads LeadRepositoryInterface,
	appointments AppointmentRepositoryInterface,
	contexts ContextRepositoryInterface,
	validator *SchedulingValidator,
	producer EventProducerInterface,
) *ToolDispatcher {
	return &ToolDispatcher{
		Leads:        leads,
		Appointments: appointments,
		Contexts:     contexts,
		Validator:    validator,
		Producer:     producer,
	}
}

// Dispatch procesa todas las tool calls de un requires_action y devuelve un
// output por cada una, en el mismo orden.
func (d *ToolDispatcher) Dispatch(ctx context.Context, userID string, s *session, calls []openai.ToolCall) []openai.ToolOutput {
	outputs := make([]openai.ToolOutput, 0, len(calls))

	for _, call := range calls {
		result := d.handle(ctx, userID, s, call)

		raw, err := json.Marshal(result)
		if err != nil {
			logx.Error().Err(err).Str("tool", call.Function.Name).Msg("No se pudo serializar el resultado de la tool")
			raw = []byte(`{"success":false,"error":"Error interno"}`)
		}

		outputs = append(outputs, openai.ToolOutput{
			ToolCallID: call.ID,
			Output:     string(raw),
		})
	}

	return outputs
}

func (d *ToolDispatcher) handle(ctx context.Context, userID string, s *session, call openai.ToolCall) map[string]any {
	name := call.Function.Name

	var result map[string]any
	switch name {
	case "extract_contact_info", "create_lead":
		// create_lead comparte el camino de extract_contact_info: ambas
		// terminan en el mismo lead idempotente, asi que un modelo que
		// llama las dos no duplica nada.
		result = d.extractContactInfo(ctx, userID, s, call.Function.Arguments)
	case "validate_appointment_date":
		result = d.validateAppointmentDate(ctx, s, call.Function.Arguments)
	case "create_appointment":
		result = d.createAppointment(ctx, userID, s, call.Function.Arguments)
	default:
		logx.Warn().Str("tool", name).Msg("Tool desconocida pedida por el asistente")
		result = map[string]any{"success": false, "error": "Operación no soportada"}
	}

	outcome := "error"
	if ok, _ := result["success"].(bool); ok {
		outcome = "ok"
	}
	metrics.RecordToolDispatch(name, outcome)

	return result
}

type contactInfoArgs struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (d *ToolDispatcher) extractContactInfo(ctx context.Context, userID string, s *session, rawArgs string) map[string]any {
	var args contactInfoArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		logx.Warn().Err(err).Msg("Argumentos inválidos en extract_contact_info")
		return map[string]any{"success": false, "error": "Argumentos inválidos"}
	}

	// El merge es monótono: un dato cargado nunca se pisa con vacío.
	s.context.ContactInfo.Merge(entity.ContactInfo{
		Name:  args.Name,
		Email: args.Email,
		Phone: args.Phone,
	})

	if s.context.State == entity.StateInitial {
		s.context.State = entity.StateCollectingInfo
	}

	if err := d.Contexts.Save(ctx, userID, s.context); err != nil {
		logx.Error().Err(err).Str("user_id", userID).Msg("No se pudo persistir el contexto")
		return map[string]any{"success": false, "error": "No se pudo guardar la información"}
	}

	if s.context.ContactInfo.IsComplete() && s.context.LeadID == "" {
		d.createLead(ctx, userID, s)
	}

	return map[string]any{
		"success": true,
		"message": "Información de contacto procesada correctamente",
	}
}

// createLead es best effort: si el insert falla, el contacto sigue cargado en
// el contexto y un intento posterior vuelve a entrar por LeadID vacío.
func (d *ToolDispatcher) createLead(ctx context.Context, userID string, s *session) {
	lead, err := entity.NewLead(s.context.ContactInfo.Name, s.context.ContactInfo.Email, s.context.ContactInfo.Phone)
	if err != nil {
		logx.Warn().Err(err).Str("user_id", userID).Msg("Datos de lead inválidos")
		return
	}

	if err := d.Leads.Create(ctx, lead); err != nil {
		logx.Error().Err(err).Str("user_id", userID).Msg("Error al crear lead")
		return
	}

	s.context.LeadID = lead.ID
	if err := d.Contexts.Save(ctx, userID, s.context); err != nil {
		logx.Error().Err(err).Str("user_id", userID).Msg("Lead creado pero no se pudo guardar el lead_id")
	}

	metrics.RecordLeadCreated()
	logx.Info().Str("lead_id", lead.ID).Str("user_id", userID).Msg("✅ Lead creado")

	if d.Producer != nil {
		payload := queue.LeadCreatedPayload{
			LeadID: lead.ID,
			Name:   lead.Name,
			Email:  lead.Email,
			Phone:  lead.Phone,
			Source: lead.Source,
		}
		if err := d.Producer.PublishLeadCreated(ctx, payload); err != nil {
			logx.Error().Err(err).Str("lead_id", lead.ID).Msg("Error al publicar evento de lead")
			metrics.RecordIntegrationError("rabbitmq")
		}
	}
}

type appointmentDateArgs struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

func (d *ToolDispatcher) validateAppointmentDate(ctx context.Context, s *session, rawArgs string) map[string]any {
	var args appointmentDateArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		logx.Warn().Err(err).Msg("Argumentos inválidos en validate_appointment_date")
		return map[string]any{"success": false, "error": "Argumentos inválidos"}
	}

	if s.context.ContactInfo.Name == "" {
		return map[string]any{
			"success": false,
			"reason":  entity.ReasonMissingContactInfo,
			"error":   "Necesito tus datos de contacto antes de agendar. ¿Me decís tu nombre?",
		}
	}

	availability, err := d.Validator.Validate(ctx, args.Date, args.Time)
	if err != nil {
		logx.Error().Err(err).Msg("Error al consultar disponibilidad")
		return map[string]any{"success": false, "error": "No se pudo validar la fecha. Intentá de nuevo."}
	}

	if !availability.Available {
		return map[string]any{
			"success":   false,
			"available": false,
			"reason":    availability.Reason,
			"error":     rejectionMessage(availability.Reason),
		}
	}

	return map[string]any{
		"success":   true,
		"available": true,
		"message":   "Fecha y hora disponibles para agendar",
	}
}

type createAppointmentArgs struct {
	ServiceType string `json:"service_type"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Notes       string `json:"notes"`
}

func (d *ToolDispatcher) createAppointment(ctx context.Context, userID string, s *session, rawArgs string) map[string]any {
	var args createAppointmentArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		logx.Warn().Err(err).Msg("Argumentos inválidos en create_appointment")
		return map[string]any{"success": false, "error": "Argumentos inválidos"}
	}

	if s.context.ContactInfo.Name == "" {
		return map[string]any{
			"success": false,
			"reason":  entity.ReasonMissingContactInfo,
			"error":   "Necesito tus datos de contacto antes de agendar. ¿Me decís tu nombre?",
		}
	}

	availability, err := d.Validator.Validate(ctx, args.Date, args.Time)
	if err != nil {
		logx.Error().Err(err).Msg("Error al consultar disponibilidad")
		return map[string]any{"success": false, "error": "No se pudo validar la fecha. Intentá de nuevo."}
	}
	if !availability.Available {
		return map[string]any{
			"success":   false,
			"available": false,
			"reason":    availability.Reason,
			"error":     rejectionMessage(availability.Reason),
		}
	}

	slot, ok := d.Validator.ParseSlot(args.Date, args.Time)
	if !ok {
		return map[string]any{
			"success": false,
			"reason":  entity.ReasonInvalidFormat,
			"error":   rejectionMessage(entity.ReasonInvalidFormat),
		}
	}

	patient, err := entity.NewPatient(s.context.ContactInfo.Name, s.context.ContactInfo.Email, s.context.ContactInfo.Phone)
	if err != nil {
		logx.Warn().Err(err).Msg("Datos de paciente inválidos")
		return map[string]any{"success": false, "error": "Datos de paciente incompletos"}
	}

	appointment, err := entity.NewAppointment(patient.ID, slot, args.ServiceType, args.Notes)
	if err != nil {
		logx.Warn().Err(err).Msg("Datos de turno inválidos")
		return map[string]any{"success": false, "error": "Datos del turno incompletos"}
	}

	if err := d.persistAppointment(ctx, userID, patient, appointment); err != nil {
		if IsDomainError(err) {
			var de *DomainError
			errors.As(err, &de)
			return map[string]any{
				"success":   false,
				"available": false,
				"reason":    de.Code,
				"error":     de.Message,
			}
		}
		return map[string]any{"success": false, "error": "No pudimos completar la reserva. Por favor, intentá de nuevo."}
	}

	s.context.AppointmentDetails = entity.AppointmentDetails{
		Date:          slot.Format("2006-01-02"),
		Time:          slot.Format("15:04"),
		AppointmentID: appointment.ID,
		PatientID:     patient.ID,
	}
	s.context.State = entity.StateSchedulingAppointment

	if err := d.Contexts.Save(ctx, userID, s.context); err != nil {
		logx.Error().Err(err).Str("user_id", userID).Msg("Turno creado pero no se pudo guardar el contexto")
	}

	metrics.RecordAppointmentCreated()
	logx.Info().
		Str("appointment_id", appointment.ID).
		Str("patient_id", patient.ID).
		Time("datetime", appointment.Datetime).
		Msg("✅ Turno agendado")

	if d.Producer != nil {
		payload := queue.AppointmentCreatedPayload{
			AppointmentID: appointment.ID,
			PatientID:     patient.ID,
			Name:          patient.Name,
			Email:         patient.Email,
			Phone:         patient.Phone,
			Datetime:      slot.Format("2006-01-02 15:04"),
			ServiceType:   appointment.ServiceType,
		}
		if err := d.Producer.PublishAppointmentCreated(ctx, payload); err != nil {
			logx.Error().Err(err).Str("appointment_id", appointment.ID).Msg("Error al publicar evento de turno")
			metrics.RecordIntegrationError("rabbitmq")
		}
	}

	return map[string]any{
		"success":        true,
		"appointment_id": appointment.ID,
		"message":        "Turno agendado exitosamente",
	}
}

// persistAppointment separa los rechazos de negocio de las fallas técnicas:
// un slot perdido en la carrera entre la validación y el insert es un
// DomainError que el modelo le explica al usuario, el resto es infraestructura.
func (d *ToolDispatcher) persistAppointment(ctx context.Context, userID string, patient *entity.Patient, appointment *entity.Appointment) error {
	if err := d.Appointments.CreateWithPatient(ctx, patient, appointment); err != nil {
		if errors.Is(err, entity.ErrSlotTaken) {
			return &DomainError{
				Code:    entity.ReasonSlotTaken,
				Message: rejectionMessage(entity.ReasonSlotTaken),
			}
		}
		logx.Error().Err(err).Str("user_id", userID).Msg("Error al crear el turno")
		return &TechnicalError{Code: "APPOINTMENT_PERSISTENCE", Message: err.Error()}
	}
	return nil
}

func rejectionMessage(reason string) string {
	switch reason {
	case entity.ReasonInvalidFormat:
		return "El formato de fecha u hora no es válido. Usá AAAA-MM-DD y HH:MM."
	case entity.ReasonPastDate:
		return "Esa fecha ya pasó. Elegí una fecha futura."
	case entity.ReasonClosedWeekend:
		return "Solo atendemos de lunes a viernes."
	case entity.ReasonOutsideBusinessHours:
		return "Nuestro horario de atención es de 9:00 a 18:00."
	case entity.ReasonSlotTaken:
		return "Ese horario ya está reservado. ¿Querés probar con otro?"
	default:
		return "No se pudo agendar en ese horario."
	}
}
