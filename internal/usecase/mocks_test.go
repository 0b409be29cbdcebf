package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/clinicadelvalle/asistente/internal/entity"
	"github.com/clinicadelvalle/asistente/internal/infra/integration/openai"
	"github.com/clinicadelvalle/asistente/internal/infra/queue"
)

// MockAssistantDriver
type MockAssistantDriver struct {
	mock.Mock
}

func (m *MockAssistantDriver) CreateThread(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockAssistantDriver) PostMessage(ctx context.Context, threadID, role, content string) error {
	args := m.Called(ctx, threadID, role, content)
	return args.Error(0)
}

func (m *MockAssistantDriver) StartRun(ctx context.Context, threadID, assistantID string) (*openai.Run, error) {
	args := m.Called(ctx, threadID, assistantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*openai.Run), args.Error(1)
}

func (m *MockAssistantDriver) GetRun(ctx context.Context, threadID, runID string) (*openai.Run, error) {
	args := m.Called(ctx, threadID, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*openai.Run), args.Error(1)
}

func (m *MockAssistantDriver) ListRuns(ctx context.Context, threadID string) ([]openai.Run, error) {
	args := m.Called(ctx, threadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]openai.Run), args.Error(1)
}

func (m *MockAssistantDriver) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []openai.ToolOutput) error {
	args := m.Called(ctx, threadID, runID, outputs)
	return args.Error(0)
}

func (m *MockAssistantDriver) ListMessages(ctx context.Context, threadID string, limit int) ([]openai.Message, error) {
	args := m.Called(ctx, threadID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]openai.Message), args.Error(1)
}

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

// MockAppointmentRepository
type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) CreateWithPatient(ctx context.Context, patient *entity.Patient, appointment *entity.Appointment) error {
	args := m.Called(ctx, patient, appointment)
	return args.Error(0)
}

func (m *MockAppointmentRepository) CheckAvailability(ctx context.Context, date, timeStr string) (*entity.Availability, error) {
	args := m.Called(ctx, date, timeStr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Availability), args.Error(1)
}

// MockContextRepository
type MockContextRepository struct {
	mock.Mock
}

func (m *MockContextRepository) Save(ctx context.Context, userID string, c *entity.ConversationContext) error {
	args := m.Called(ctx, userID, c)
	return args.Error(0)
}

func (m *MockContextRepository) Get(ctx context.Context, userID string) (*entity.ConversationContext, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ConversationContext), args.Error(1)
}

// MockEventProducer
type MockEventProducer struct {
	mock.Mock
}

func (m *MockEventProducer) PublishLeadCreated(ctx context.Context, payload queue.LeadCreatedPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockEventProducer) PublishAppointmentCreated(ctx context.Context, payload queue.AppointmentCreatedPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}
