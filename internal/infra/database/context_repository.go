package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/clinicadelvalle/asistente/internal/entity"
)

type ContextRepository struct {
	DB *sql.DB
}

func NewContextRepository(db *sql.DB) *ContextRepository {
	return &ContextRepository{DB: db}
}

// Save reemplaza el documento completo del usuario (upsert). Se llama
// después de cada mutación del contexto, nunca con merges parciales.
func (r *ContextRepository) Save(ctx context.Context, userID string, c *entity.ConversationContext) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal contexto: %w", err)
	}

	query := `
		INSERT INTO user_context (user_id, context_data, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET
			context_data = EXCLUDED.context_data,
			updated_at = NOW()
	`

	_, err = r.DB.ExecContext(ctx, query, userID, string(doc))
	return err
}

// Get devuelve el contexto guardado, o el contexto por defecto si el
// usuario nunca escribió. No existir no es un error.
func (r *ContextRepository) Get(ctx context.Context, userID string) (*entity.ConversationContext, error) {
	query := `
		SELECT context_data::text
		FROM user_context
		WHERE user_id = $1
	`

	var doc string
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.NewConversationContext(), nil
	}
	if err != nil {
		return nil, err
	}

	var c entity.ConversationContext
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		return nil, fmt.Errorf("unmarshal contexto: %w", err)
	}
	if c.State == "" {
		c.State = entity.StateInitial
	}

	return &c, nil
}
