package notifier

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mwalimuclement/theory-access/internal/lib/sl"
	"github.com/mwalimuclement/theory-access/internal/lib/smtp"
	"github.com/mwalimuclement/theory-access/internal/models"
	"github.com/mwalimuclement/theory-access/internal/plans"
)

// Sender отправляет пользователю письмо с кодом доступа после
// успешной оплаты. Если email не указан, событие только логируется:
// пользователь видит код в ответе на проверку платежа.
type Sender struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSender создает новый экземпляр Sender.
func NewSender(log *slog.Logger, transport smtp.TransportInterface) *Sender {
	return &Sender{
		transport: transport,
		log:       log,
	}
}

// SendAccessCode обрабатывает событие о выпуске кода доступа.
func (s *Sender) SendAccessCode(body []byte) error {
	var event models.CodeIssuedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	if event.Email == "" {
		s.log.Info("access code issued, no email on file",
			slog.String("payment_id", event.PaymentID),
			slog.String("phone", event.Phone),
			slog.String("plan", string(event.PlanType)))
		return nil
	}

	plan, ok := plans.Find(event.PlanType)
	planName := string(event.PlanType)
	if ok {
		planName = plan.Description
	}

	to := []string{event.Email}
	subject := "Kode yawe yo gukora ikizamini"
	bodyText := fmt.Sprintf(
		"Murakoze! Ubwishyu bwanyu bwa %d RWF bwemejwe.\n\n"+
			"Kode yanyu: %s\n"+
			"Ifatika: %s\n"+
			"Izarangira: %s\n\n"+
			"Kode ikoreshwa rimwe gusa.",
		event.Amount, event.Code, planName,
		event.ExpiresAt.Format("02/01/2006 15:04"))

	return s.sendEmail(to, subject, bodyText)
}

func (s *Sender) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("access code email sent", "to", to)
	return nil
}
