package core

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"stackassist-backend/internal/metrics"
	"stackassist-backend/pkg/mailer"
	"stackassist-backend/pkg/messagequeue"
)

// DirectOutbox sends each message synchronously through the mailer.
type DirectOutbox struct {
	mailer mailer.Mailer
}

func NewDirectOutbox(m mailer.Mailer) *DirectOutbox {
	return &DirectOutbox{mailer: m}
}

func (o *DirectOutbox) Deliver(ctx context.Context, msg mailer.Message) error {
	err := o.mailer.Send(ctx, msg)
	metrics.RecordEmail("direct", err)
	if err != nil {
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}
	return nil
}

// QueueOutbox publishes messages to a queue drained by a MailWorker.
type QueueOutbox struct {
	queue     messagequeue.MessageQueue
	queueName string
}

func NewQueueOutbox(queue messagequeue.MessageQueue, queueName string) *QueueOutbox {
	return &QueueOutbox{queue: queue, queueName: queueName}
}

func (o *QueueOutbox) Deliver(ctx context.Context, msg mailer.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}
	if err := o.queue.Publish(ctx, o.queueName, body); err != nil {
		metrics.RecordEmail("queue", err)
		return fmt.Errorf("enqueue email to %s: %w", msg.To, err)
	}
	return nil
}

// MailWorker consumes queued messages and sends them.
type MailWorker struct {
	queue     messagequeue.MessageQueue
	queueName string
	mailer    mailer.Mailer
	logger    *zap.Logger
}

func NewMailWorker(queue messagequeue.MessageQueue, queueName string, m mailer.Mailer, logger *zap.Logger) *MailWorker {
	return &MailWorker{queue: queue, queueName: queueName, mailer: m, logger: logger}
}

// Run blocks until ctx is cancelled or the queue stops delivering.
func (w *MailWorker) Run(ctx context.Context) error {
	return w.queue.Consume(ctx, w.queueName, w.handle)
}

func (w *MailWorker) handle(ctx context.Context, body []byte) error {
	var msg mailer.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		// A malformed message will never succeed; drop it.
		w.logger.Error("discarding malformed queued email", zap.Error(err))
		return nil
	}
	err := w.mailer.Send(ctx, msg)
	metrics.RecordEmail("queue", err)
	if err != nil {
		return fmt.Errorf("send queued email to %s: %w", msg.To, err)
	}
	w.logger.Debug("queued email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
