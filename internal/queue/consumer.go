package queue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/filmorate/internal/logging"
	"github.com/iliyamo/filmorate/internal/metrics"
)

// StartFeedConsumer consumes FeedQueueName and appends one line per event
// to logPath. It reconnects with exponential backoff until ctx is done.
// Undecodable messages are rejected without requeue so they cannot spin.
func StartFeedConsumer(ctx context.Context, url, logPath string) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logging.Warn().Err(err).Dur("retry_in", backoff).Msg("feed-consumer: failed to dial broker")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, logPath)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Warn().Err(err).Msg("feed-consumer: consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logPath string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logging.Warn().Err(err).Msg("feed-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(FeedQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(FeedQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := HandleMessage(d.Body, logPath); err != nil {
				logging.Error().Err(err).Str("message_id", d.MessageId).Msg("feed-consumer: handle message failed")
				metrics.FeedConsumed.WithLabelValues("rejected").Inc()
				_ = d.Nack(false, false)
				continue
			}
			metrics.FeedConsumed.WithLabelValues("ok").Inc()
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one delivery body and appends it to logPath.
func HandleMessage(body []byte, logPath string) error {
	var m FeedEventMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if m.UserID == 0 || m.EventType == "" || m.Operation == "" {
		return fmt.Errorf("incomplete feed event %+v", m)
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(m)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders one feed event as a single log line.
func FormatLine(m FeedEventMessage) string {
	return fmt.Sprintf("[%s] %s/%s | event_id=%d | user_id=%d | entity_id=%d\n",
		m.RecordedAt, m.EventType, m.Operation, m.EventID, m.UserID, m.EntityID)
}
