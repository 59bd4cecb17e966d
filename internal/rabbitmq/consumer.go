package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/Eka2r/Padayon/internal/lib/sl"
)

// ErrRequeue marks a handler error whose delivery goes back to the queue.
// Any other error drops the delivery.
var ErrRequeue = errors.New("requeue delivery")

// Handler processes one delivery body.
type Handler func(ctx context.Context, body []byte) error

// Consume reads queueName with at most workers handlers in flight. The returned
// channel is closed once the delivery loop and every worker have stopped.
func Consume(ctx context.Context, ch *amqp.Channel, queueName string, workers int, handler Handler, log *slog.Logger) (<-chan struct{}, error) {
	const op = "rabbitmq.Consume"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(sl.Op(op), slog.String("queue", queueName))
	done := make(chan struct{})
	sem := make(chan struct{}, max(workers, 1))
	var wg sync.WaitGroup

	go func() {
		defer close(done)
		defer wg.Wait()
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				wg.Add(1)
				go func(d amqp.Delivery) {
					defer wg.Done()
					defer func() { <-sem }()
					settle(ctx, d, handler, log)
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return done, nil
}

func settle(ctx context.Context, d amqp.Delivery, handler Handler, log *slog.Logger) {
	err := handler(ctx, d.Body)
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Err(ackErr))
		}
		return
	}

	requeue := errors.Is(err, ErrRequeue)
	log.Warn("handler failed", slog.String("routing_key", d.RoutingKey), slog.Bool("requeue", requeue), sl.Err(err))
	if nackErr := d.Nack(false, requeue); nackErr != nil {
		log.Error("failed to nack message", sl.Err(nackErr))
	}
}
