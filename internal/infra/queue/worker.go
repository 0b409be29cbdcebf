package queue

import (
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	logx "github.com/clinicadelvalle/asistente/pkg/logger"
)

// ConfirmationSender define el contrato para el envío de confirmaciones de
// turno (hoy email, mañana WhatsApp).
type ConfirmationSender interface {
	SendAppointmentConfirmation(to, name, datetime, serviceType string) error
}

type Worker struct {
	Channel *amqp.Channel
	Mail    ConfirmationSender
}

func NewWorker(ch *amqp.Channel, mail ConfirmationSender) *Worker {
	return &Worker{
		Channel: ch,
		Mail:    mail,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName, // cola
		"",        // consumer
		false,     // auto-ack (manual es más seguro)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		logx.Fatal().Err(err).Msg("❌ Fallo al registrar consumidor RabbitMQ")
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload AppointmentCreatedPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				logx.Error().Err(err).Msg("❌ [WORKER] JSON inválido, descartando mensaje")
				// Mensaje podrido. Rechazar sin requeue para no trabar la cola.
				d.Nack(false, false)
				continue
			}

			if payload.Email == "" {
				// Sin email no hay a quién notificar. Ack para sacarlo de la cola.
				logx.Warn().Str("appointment_id", payload.AppointmentID).Msg("⚠️ [WORKER] Turno sin email, se omite la confirmación")
				d.Ack(false)
				continue
			}

			logx.Info().Str("appointment_id", payload.AppointmentID).Str("email", payload.Email).Msg("📥 [WORKER] Enviando confirmación de turno")

			if err := w.Mail.SendAppointmentConfirmation(payload.Email, payload.Name, payload.Datetime, payload.ServiceType); err != nil {
				logx.Error().Err(err).Str("appointment_id", payload.AppointmentID).Msg("❌ [WORKER] Error al enviar confirmación")
				// Sin requeue: el mensaje va a la DLQ para revisión manual.
				d.Nack(false, false)
			} else {
				logx.Info().Str("appointment_id", payload.AppointmentID).Msg("✅ [WORKER] Confirmación enviada")
				d.Ack(false)
			}
		}
	}()

	logx.Info().Str("queue", queueName).Msg(" [*] Worker esperando mensajes")
	<-forever
}
