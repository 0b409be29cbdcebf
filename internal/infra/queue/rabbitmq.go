package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName       = "ex.asistente"
	NotificationsQueue = "q.notificaciones"
	DLQName            = "q.notificaciones.dlq"
	DLXName            = "ex.dlx" // Dead Letter Exchange
	LeadCreatedKey     = "k.lead.created"
	AppointmentKey     = "k.appointment.created"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewRabbitMQ(user, pass, host, port string) (*RabbitMQ, error) {
	dsn := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)

	conn, err := amqp.Dial(dsn)
	if err != nil {
		return nil, fmt.Errorf("fallo al conectar con RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("fallo al abrir canal: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		return nil, err
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

func setupTopology(ch *amqp.Channel) error {

	err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil)
	if err != nil {
		return err
	}

	_, err = ch.QueueDeclare(DLQName, true, false, false, false, nil)
	if err != nil {
		return err
	}

	err = ch.QueueBind(DLQName, AppointmentKey, DLXName, false, nil)
	if err != nil {
		return err
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    DLXName,        // Si hay Nack, va a la DLX
		"x-dead-letter-routing-key": AppointmentKey, // Con esta clave
	}

	err = ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil)
	if err != nil {
		return err
	}

	_, err = ch.QueueDeclare(NotificationsQueue, true, false, false, false, args)
	if err != nil {
		return err
	}

	// La cola de notificaciones solo escucha turnos confirmados. Los eventos
	// de leads quedan en el exchange para que otro consumidor (CRM) los tome.
	err = ch.QueueBind(NotificationsQueue, AppointmentKey, ExchangeName, false, nil)
	if err != nil {
		return err
	}

	return nil
}
