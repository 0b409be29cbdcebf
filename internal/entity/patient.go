package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Factory
func NewPatient(name, email, phone string) (*Patient, error) {
	patient := &Patient{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Notes:     "Paciente creado por WhatsApp",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := patient.Validate(); err != nil {
		return nil, err
	}

	return patient, nil
}

func (p *Patient) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	return nil
}
