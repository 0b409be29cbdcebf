package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	LeadStatusNuevo      = "NUEVO"
	LeadStatusContactado = "CONTACTADO"
	LeadStatusConvertido = "CONVERTIDO"

	LeadSourceWhatsApp = "WhatsApp"
)

type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Source    string    `json:"source"`
	Status    string    `json:"status"` // NUEVO, CONTACTADO, CONVERTIDO
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Factory
func NewLead(name, email, phone string) (*Lead, error) {
	lead := &Lead{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Source:    LeadSourceWhatsApp,
		Status:    LeadStatusNuevo,
		Notes:     "Contacto inicial por WhatsApp",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if l.Name == "" {
		return errors.New("name is required")
	}
	return nil
}
