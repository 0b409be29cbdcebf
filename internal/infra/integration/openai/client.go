package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	logx "github.com/clinicadelvalle/asistente/pkg/logger"
)

const defaultBaseURL = "https://api.openai.com/v1"

// ErrActiveRun: el thread ya tiene un run en curso. La API no permite
// agregar mensajes ni arrancar otro run hasta que termine; lo maneja el
// motor de conversación, nunca llega al usuario como error.
var ErrActiveRun = errors.New("openai: thread has an active run")

// RateLimitError es un 429 de la API. Trae la espera sugerida por el
// header Retry-After (o un default razonable si no vino).
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("openai: rate limited, retry after %s", e.RetryAfter)
}

// APIError es cualquier otra respuesta no-2xx. Para el motor es una falla
// fatal del run en curso.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai: api error (status %d): %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// EnsureAssistant devuelve el ID del asistente a usar. Si vino configurado
// por env lo usa tal cual; si no, crea uno nuevo con las tools declaradas.
// El ID resultante se inyecta en el motor al arrancar, no hay singleton.
func (c *Client) EnsureAssistant(ctx context.Context, assistantID string) (string, error) {
	if assistantID != "" {
		return assistantID, nil
	}

	payload := createAssistantRequest{
		Name:         AssistantName,
		Instructions: AssistantInstructions,
		Model:        AssistantModel,
		Tools:        AssistantTools,
	}

	var assistant Assistant
	if err := c.do(ctx, http.MethodPost, "/assistants", payload, &assistant); err != nil {
		return "", fmt.Errorf("crear asistente: %w", err)
	}

	logx.Info().Str("assistant_id", assistant.ID).Msg("asistente creado en OpenAI")
	return assistant.ID, nil
}

func (c *Client) CreateThread(ctx context.Context) (string, error) {
	var thread Thread
	if err := c.do(ctx, http.MethodPost, "/threads", struct{}{}, &thread); err != nil {
		return "", fmt.Errorf("crear thread: %w", err)
	}
	return thread.ID, nil
}

func (c *Client) PostMessage(ctx context.Context, threadID, role, content string) error {
	payload := createMessageRequest{Role: role, Content: content}

	var msg Message
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/messages", payload, &msg); err != nil {
		return err
	}
	return nil
}

func (c *Client) StartRun(ctx context.Context, threadID, assistantID string) (*Run, error) {
	payload := createRunRequest{AssistantID: assistantID}

	var run Run
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs", payload, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (c *Client) GetRun(ctx context.Context, threadID, runID string) (*Run, error) {
	var run Run
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns lista los runs del thread, el más reciente primero. Se usa para
// detectar un run viejo todavía activo antes de encolar un mensaje nuevo.
func (c *Client) ListRuns(ctx context.Context, threadID string) ([]Run, error) {
	var resp listResponse[Run]
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/runs?order=desc", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// SubmitToolOutputs entrega los resultados de TODAS las tool calls
// pendientes en un solo batch. La API exige responder el lote completo.
func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) error {
	payload := submitToolOutputsRequest{ToolOutputs: outputs}

	var run Run
	return c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs/"+runID+"/submit_tool_outputs", payload, &run)
}

// ListMessages devuelve los mensajes del thread, el más nuevo primero.
func (c *Client) ListMessages(ctx context.Context, threadID string, limit int) ([]Message, error) {
	path := fmt.Sprintf("/threads/%s/messages?order=desc&limit=%d", threadID, limit)

	var resp listResponse[Message]
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// do centraliza request, headers y clasificación de errores.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("conexión con openai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.classifyError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode respuesta openai: %w", err)
		}
	}
	return nil
}

// classifyError separa las condiciones que el motor recupera solo (rate
// limit, run activo) de las fallas fatales.
func (c *Client) classifyError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)

	var apiErr apiErrorResponse
	_ = json.Unmarshal(raw, &apiErr)
	message := apiErr.Error.Message
	if message == "" {
		message = string(raw)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 2 * time.Second
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, err := strconv.Atoi(v); err == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return &RateLimitError{RetryAfter: retryAfter}
	}

	if resp.StatusCode == http.StatusBadRequest && strings.Contains(message, "while a run") {
		return ErrActiveRun
	}

	logx.Error().Int("status", resp.StatusCode).Str("body", message).Msg("error de la API de OpenAI")
	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

// setHeaders centraliza los headers obligatorios
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("OpenAI-Beta", "assistants=v2")
}
