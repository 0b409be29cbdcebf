package usecase

import (
	"context"

	"github.com/clinicadelvalle/asistente/internal/entity"
	"github.com/clinicadelvalle/asistente/internal/infra/integration/openai"
	"github.com/clinicadelvalle/asistente/internal/infra/queue"
)

// ChatInput es el mensaje entrante de un usuario (vía webhook o web).
type ChatInput struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// ChatOutput es la respuesta que vuelve al canal. Type es "text" para una
// respuesta del asistente y "error" cuando no pudimos procesar el mensaje.
type ChatOutput struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// AssistantDriver es el contrato con la API de Assistants: threads,
// mensajes, runs y tool outputs.
type AssistantDriver interface {
	CreateThread(ctx context.Context) (string, error)
	PostMessage(ctx context.Context, threadID, role, content string) error
	StartRun(ctx context.Context, threadID, assistantID string) (*openai.Run, error)
	GetRun(ctx context.Context, threadID, runID string) (*openai.Run, error)
	ListRuns(ctx context.Context, threadID string) ([]openai.Run, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []openai.ToolOutput) error
	ListMessages(ctx context.Context, threadID string, limit int) ([]openai.Message, error)
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *entity.Lead) error
}

type AppointmentRepositoryInterface interface {
	CreateWithPatient(ctx context.Context, patient *entity.Patient, appointment *entity.Appointment) error
	CheckAvailability(ctx context.Context, date, timeStr string) (*entity.Availability, error)
}

type ContextRepositoryInterface interface {
	Save(ctx context.Context, userID string, c *entity.ConversationContext) error
	Get(ctx context.Context, userID string) (*entity.ConversationContext, error)
}

// EventProducerInterface publica eventos de dominio para consumidores
// externos (notificaciones, CRM).
type EventProducerInterface interface {
	PublishLeadCreated(ctx context.Context, payload queue.LeadCreatedPayload) error
	PublishAppointmentCreated(ctx context.Context, payload queue.AppointmentCreatedPayload) error
}
