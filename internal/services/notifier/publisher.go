// Package notifier доставляет выпущенные коды доступа их владельцам.
// Сторона публикации кладёт событие в очередь уведомлений, сторона
// потребления отправляет письмо, если у пользователя задан email,
// и пишет в лог иначе.
package notifier

import (
	"github.com/streadway/amqp"

	"github.com/mwalimuclement/theory-access/internal/models"
	"github.com/mwalimuclement/theory-access/internal/rabbitmq"
)

// Publisher публикует события о выпущенных кодах в RabbitMQ.
type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher создаёт публикатора на открытом канале.
func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch}
}

// PublishCodeIssued кладёт событие в обменник уведомлений.
func (p *Publisher) PublishCodeIssued(event models.CodeIssuedEvent) error {
	return rabbitmq.PublishMessage(p.ch, rabbitmq.NotificationsExchange, rabbitmq.PaymentCompletedKey, event)
}
