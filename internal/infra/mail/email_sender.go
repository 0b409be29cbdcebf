package mail

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	"gopkg.in/gomail.v2"
)

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	if from == "" {
		from = "no-responder@clinicadelvalle.com.ar"
	}
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

func (s *EmailSender) SendAppointmentConfirmation(to, name, datetime, serviceType string) error {
	data := ConfirmationEmailData{
		Name:        name,
		Datetime:    datetime,
		ServiceType: serviceType,
		ClinicName:  "Clínica del Valle",
	}

	tmplPath := filepath.Join("templates", "confirmacion.html")
	t, err := template.ParseFiles(tmplPath)
	if err != nil {
		return fmt.Errorf("error al leer template de email: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("error al procesar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("¡Turno confirmado, %s! 🦷", name))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("error al enviar email SMTP: %w", err)
	}

	return nil
}
