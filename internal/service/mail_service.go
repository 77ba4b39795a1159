package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kaensy/mathed-romania/pkg/config"
	"github.com/Kaensy/mathed-romania/pkg/jobs"
	"github.com/Kaensy/mathed-romania/pkg/mailer"
)

type mailMessage struct {
	To      string
	Subject string
	Body    string
}

// MailService dispatches transactional email through the background queue
// so the request path never waits on the provider.
type MailService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewMailService wires the mailer behind a retrying worker queue.
func NewMailService(m mailer.Mailer, cfg config.MailConfig, logger *zap.Logger) *MailService {
	if logger == nil {
		logger = zap.NewNop()
	}

	handler := func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(mailMessage)
		if !ok {
			return fmt.Errorf("unexpected mail payload %T", job.Payload)
		}
		return m.Send(ctx, msg.To, msg.Subject, msg.Body)
	}

	queue := jobs.NewQueue("mail", handler, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		Logger:     logger,
	})

	return &MailService{queue: queue, logger: logger}
}

// Start launches the delivery workers.
func (s *MailService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *MailService) Stop() {
	s.queue.Stop()
}

// Enqueue schedules a message for delivery. Queue errors are logged, not
// returned: a full queue must not fail the registration that triggered it.
func (s *MailService) Enqueue(to, subject, body string) {
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "email",
		Payload: mailMessage{To: to, Subject: subject, Body: body},
	})
	if err != nil {
		s.logger.Error("failed to enqueue email", zap.String("to", to), zap.Error(err))
	}
}
