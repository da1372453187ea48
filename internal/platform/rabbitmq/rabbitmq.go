package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// New dials the broker and probes it with a throwaway channel operation so a
// dead broker fails startup instead of the first publish.
func New(ctx context.Context, url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq failed: %w", err)
	}

	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	done := make(chan error, 1)
	go func() {
		_, queueErr := ch.QueueDeclarePassive("healthcheck", false, false, false, false, nil)
		done <- queueErr
	}()

	select {
	case <-probeCtx.Done():
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq probe timeout: %w", probeCtx.Err())
	case err := <-done:
		// A passive declare of a queue that does not exist errors, but the
		// round trip itself is the proof of a responsive broker.
		_ = err
		return conn, nil
	}
}
