package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// LogFileName is the file inside the event log directory that every
// consumed event is appended to.
const LogFileName = "booking.log"

// StartConsumer connects to RabbitMQ, declares both event queues and
// appends each delivery to <dir>/booking.log as one human-readable line.
// It reconnects with backoff until ctx is cancelled, then returns nil.
func StartConsumer(ctx context.Context, url, dir string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("event consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return nil
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn, dir, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		log.Warn("event consumer: consume loop ended; reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return nil
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

func consumeLoop(ctx context.Context, conn *amqp.Connection, dir string, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("event consumer: set QoS failed", zap.Error(err))
	}

	deliveries := make(map[string]<-chan amqp.Delivery, 2)
	for _, q := range []string{SeatBookedQueue, ReviewRecordedQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", q, err)
		}
		msgs, err := ch.Consume(q, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", q, err)
		}
		deliveries[q] = msgs
	}
	booked, reviewed := deliveries[SeatBookedQueue], deliveries[ReviewRecordedQueue]

	for {
		var (
			d  amqp.Delivery
			ok bool
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok = <-booked:
		case d, ok = <-reviewed:
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := handleMessage(dir, d.RoutingKey, d.Body); err != nil {
			log.Error("event consumer: handle message failed", zap.String("queue", d.RoutingKey), zap.Error(err))
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
}

func handleMessage(dir, queue string, body []byte) error {
	line, err := formatLine(queue, body)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatLine(queue string, body []byte) (string, error) {
	switch queue {
	case SeatBookedQueue:
		var ev SeatBookedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Seat booked | seat_id=%d | seat=%s | claimant_id=%s | claimant=%q | event_id=%s\n",
			ev.BookedAt, ev.SeatID, ev.SeatNumber, ev.ClaimantID, ev.ClaimantName, ev.EventID), nil
	case ReviewRecordedQueue:
		var ev ReviewRecordedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Review recorded | review_id=%d | seat_id=%d | seat=%s | claimant_id=%s | rating=%s | average_score=%.4f | event_id=%s\n",
			ev.RecordedAt, ev.ReviewID, ev.SeatID, ev.SeatNumber, ev.ClaimantID, ev.OverallRating, ev.AverageScore, ev.EventID), nil
	}
	return "", fmt.Errorf("unknown queue %q", queue)
}
