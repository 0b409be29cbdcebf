package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/clinicadelvalle/asistente/internal/infra/integration/openai"
	"github.com/clinicadelvalle/asistente/internal/infra/metrics"
	logx "github.com/clinicadelvalle/asistente/pkg/logger"
)

const (
	msgStillProcessing      = "Estoy procesando tu mensaje anterior. Por favor, esperá un momento antes de enviar otro."
	msgStillProcessingRetry = "Aún estoy procesando tu mensaje anterior. Esperá unos segundos y volvé a intentarlo."
	msgGenericError         = "Hubo un error al procesar tu mensaje. Por favor, intentá nuevamente en unos momentos."
	msgTimeout              = "Tu mensaje está tardando más de lo esperado. Por favor, intentá nuevamente en unos momentos."
)

type EngineConfig struct {
	AssistantID     string
	MaxAttempts     int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	RateLimitWait   time.Duration
	ActiveRunWait   time.Duration
	ActiveRunPoll   time.Duration
	SessionCapacity int
}

func (c *EngineConfig) withDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 10
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 500 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 4 * time.Second
	}
	if c.RateLimitWait <= 0 {
		c.RateLimitWait = 2 * time.Second
	}
	if c.ActiveRunWait <= 0 {
		c.ActiveRunWait = 15 * time.Second
	}
	if c.ActiveRunPoll <= 0 {
		c.ActiveRunPoll = 1 * time.Second
	}
}

// ConversationEngine orquesta el ciclo completo de un mensaje: serializa por
// usuario, resuelve la session, espera runs activos, crea el run nuevo y
// hace polling hasta obtener la respuesta del asistente.
type ConversationEngine struct {
	driver     AssistantDriver
	contexts   ContextRepositoryInterface
	dispatcher *ToolDispatcher
	sessions   *sessionRegistry
	cfg        EngineConfig
	sleep      func(time.Duration)
}

func NewConversationEngine(
	driver AssistantDriver,
	contexts ContextRepositoryInterface,
	dispatcher *ToolDispatcher,
	cfg EngineConfig,
) (*ConversationEngine, error) {
	cfg.withDefaults()

	sessions, err := newSessionRegistry(cfg.SessionCapacity)
	if err != nil {
		return nil, err
	}

	return &ConversationEngine{
		driver:     driver,
		contexts:   contexts,
		dispatcher: dispatcher,
		sessions:   sessions,
		cfg:        cfg,
		sleep:      time.Sleep,
	}, nil
}

// HandleMessage procesa un mensaje de usuario de punta a punta. Siempre
// devuelve una respuesta: los errores técnicos se loguean y al usuario le
// llega un mensaje genérico.
func (e *ConversationEngine) HandleMessage(ctx context.Context, userID, text string) *ChatOutput {
	s := e.sessions.getOrCreate(userID)

	// Un solo mensaje por usuario a la vez. Usuarios distintos no comparten
	// este lock.
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := e.ensureSession(ctx, userID, s); err != nil {
		logx.Error().Err(err).Str("user_id", userID).Msg("No se pudo inicializar la session")
		return &ChatOutput{Type: "error", Content: msgGenericError}
	}

	if !e.waitForActiveRun(ctx, s.threadID) {
		return &ChatOutput{Type: "text", Content: msgStillProcessing}
	}

	if err := e.driver.PostMessage(ctx, s.threadID, "user", text); err != nil {
		if errors.Is(err, openai.ErrActiveRun) {
			// Un run arrancó entre el chequeo y el post. No es fatal.
			return &ChatOutput{Type: "text", Content: msgStillProcessingRetry}
		}
		logx.Error().Err(err).Str("user_id", userID).Msg("No se pudo publicar el mensaje en el thread")
		return &ChatOutput{Type: "error", Content: msgGenericError}
	}

	run, err := e.driver.StartRun(ctx, s.threadID, e.cfg.AssistantID)
	if err != nil {
		logx.Error().Err(err).Str("user_id", userID).Msg("No se pudo crear el run")
		return &ChatOutput{Type: "error", Content: msgGenericError}
	}

	reply, err := e.processRun(ctx, userID, s, run.ID)
	if err != nil {
		if errors.Is(err, ErrEngineTimeout) {
			logx.Warn().Str("user_id", userID).Str("run_id", run.ID).Msg("Run agotó los reintentos de polling")
			metrics.RecordRun("timeout")
			return &ChatOutput{Type: "error", Content: msgTimeout}
		}
		logx.Error().Err(err).Str("user_id", userID).Str("run_id", run.ID).Msg("Run terminó con error")
		metrics.RecordRun("failed")
		return &ChatOutput{Type: "error", Content: msgGenericError}
	}

	metrics.RecordRun("completed")
	return &ChatOutput{Type: "text", Content: reply}
}

// ensureSession deja la session lista: contexto cargado desde la base y
// thread creado. Se ejecuta bajo el lock de la session, nunca bajo el lock
// del registry.
func (e *ConversationEngine) ensureSession(ctx context.Context, userID string, s *session) error {
	if s.context == nil {
		c, err := e.contexts.Get(ctx, userID)
		if err != nil {
			return err
		}
		s.context = c
	}

	if s.threadID == "" {
		threadID, err := e.driver.CreateThread(ctx)
		if err != nil {
			return err
		}
		s.threadID = threadID
		logx.Info().Str("user_id", userID).Str("thread_id", threadID).Msg("Thread creado")
	}

	return nil
}

// waitForActiveRun espera a que un run previo del thread se asiente.
// Devuelve false si sigue activo pasado el plazo: el llamador responde
// "esperá un momento" en vez de encolar otro mensaje.
func (e *ConversationEngine) waitForActiveRun(ctx context.Context, threadID string) bool {
	runs, err := e.driver.ListRuns(ctx, threadID)
	if err != nil {
		// Si no pudimos listar, seguimos: PostMessage va a rebotar con
		// ErrActiveRun si el thread está ocupado.
		logx.Warn().Err(err).Str("thread_id", threadID).Msg("No se pudieron listar los runs del thread")
		return true
	}

	var active *openai.Run
	for i := range runs {
		if runs[i].IsActive() {
			active = &runs[i]
			break
		}
	}
	if active == nil {
		return true
	}

	attempts := int(e.cfg.ActiveRunWait / e.cfg.ActiveRunPoll)
	for i := 0; i < attempts; i++ {
		e.sleep(e.cfg.ActiveRunPoll)

		run, err := e.driver.GetRun(ctx, threadID, active.ID)
		if err != nil {
			continue
		}
		if !run.IsActive() {
			return true
		}
	}

	return false
}

// processRun hace polling del run con backoff exponencial hasta un estado
// terminal. Un requires_action despacha las tools, manda el batch de outputs
// y reinicia el backoff; no consume intentos. Un rate limit espera un plazo
// fijo y tampoco consume intentos, con su propio presupuesto para no quedar
// en loop.
func (e *ConversationEngine) processRun(ctx context.Context, userID string, s *session, runID string) (string, error) {
	attempt := 0
	rateLimitBudget := e.cfg.MaxAttempts

	for attempt < e.cfg.MaxAttempts {
		run, err := e.driver.GetRun(ctx, s.threadID, runID)
		if err != nil {
			var rl *openai.RateLimitError
			if errors.As(err, &rl) {
				if rateLimitBudget <= 0 {
					return "", ErrEngineTimeout
				}
				rateLimitBudget--
				e.sleep(e.rateLimitDelay(rl))
				continue
			}
			return "", err
		}

		switch run.Status {
		case openai.RunStatusCompleted:
			return e.latestAssistantReply(ctx, s.threadID)

		case openai.RunStatusRequiresAction:
			calls := run.ToolCalls()
			if len(calls) == 0 {
				// Un batch vacío rebota con 400 en la API, no lo mandamos.
				return "", &TechnicalError{Code: "EMPTY_TOOL_CALLS", Message: "run en requires_action sin tool calls"}
			}
			outputs := e.dispatcher.Dispatch(ctx, userID, s, calls)
			if err := e.submitOutputs(ctx, s.threadID, runID, outputs, &rateLimitBudget); err != nil {
				return "", err
			}
			attempt = 0

		case openai.RunStatusFailed, openai.RunStatusCancelled, openai.RunStatusExpired:
			msg := run.Status
			if run.LastError != nil && run.LastError.Message != "" {
				msg = run.LastError.Message
			}
			return "", &TechnicalError{Code: "RUN_" + run.Status, Message: msg}

		default:
			// queued o in_progress: backoff exponencial con techo.
			e.sleep(e.pollDelay(attempt))
			attempt++
		}
	}

	return "", ErrEngineTimeout
}

// submitOutputs manda el batch completo en una sola llamada. Solo reintenta
// ante rate limit; cualquier otro error es fatal para el run.
func (e *ConversationEngine) submitOutputs(ctx context.Context, threadID, runID string, outputs []openai.ToolOutput, rateLimitBudget *int) error {
	for {
		err := e.driver.SubmitToolOutputs(ctx, threadID, runID, outputs)
		if err == nil {
			return nil
		}

		var rl *openai.RateLimitError
		if !errors.As(err, &rl) {
			return err
		}
		if *rateLimitBudget <= 0 {
			return ErrEngineTimeout
		}
		*rateLimitBudget--
		e.sleep(e.rateLimitDelay(rl))
	}
}

func (e *ConversationEngine) pollDelay(attempt int) time.Duration {
	delay := e.cfg.BaseDelay << uint(attempt)
	if delay > e.cfg.MaxDelay || delay <= 0 {
		delay = e.cfg.MaxDelay
	}
	return delay
}

func (e *ConversationEngine) rateLimitDelay(rl *openai.RateLimitError) time.Duration {
	if rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	return e.cfg.RateLimitWait
}

func (e *ConversationEngine) latestAssistantReply(ctx context.Context, threadID string) (string, error) {
	messages, err := e.driver.ListMessages(ctx, threadID, 10)
	if err != nil {
		return "", err
	}

	// La lista viene ordenada del más nuevo al más viejo.
	for _, m := range messages {
		if m.Role == "assistant" {
			if text := m.Text(); text != "" {
				return text, nil
			}
		}
	}

	return "", &TechnicalError{Code: "NO_REPLY", Message: "el run terminó sin respuesta del asistente"}
}
