package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

const (
	// NotificationsExchange обменник событий платформы.
	NotificationsExchange = "notifications"
	// AccessCodeQueue очередь доставки кодов доступа.
	AccessCodeQueue = "access-codes"
	// PaymentCompletedKey ключ маршрутизации событий успешной оплаты.
	PaymentCompletedKey = "payment.completed"
)

// SetupChannel открывает канал, объявляет обменник уведомлений и
// привязывает к нему очередь кодов доступа.
func SetupChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		NotificationsExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = ch.QueueDeclare(
		AccessCodeQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, AccessCodeQueue, err)
	}

	err = ch.QueueBind(
		AccessCodeQueue,
		PaymentCompletedKey,
		NotificationsExchange,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to bind queue %s: %w", op, AccessCodeQueue, err)
	}

	return ch, nil
}
