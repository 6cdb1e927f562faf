// Package sender собирает сервис доставки кодов доступа: потребителя
// очереди уведомлений и SMTP-транспорт.
package sender

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/mwalimuclement/theory-access/internal/config"
	"github.com/mwalimuclement/theory-access/internal/lib/smtp"
	"github.com/mwalimuclement/theory-access/internal/rabbitmq"
	"github.com/mwalimuclement/theory-access/internal/services/notifier"
)

type App struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	sender *notifier.Sender
	logger *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitConnectionString, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	codeSender := notifier.NewSender(logger, transport)

	return &App{
		conn:   conn,
		ch:     ch,
		sender: codeSender,
		logger: logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.AccessCodeQueue, a.sender.SendAccessCode)
	if err != nil {
		a.logger.Error("failed to start access code consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("notification sender shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
