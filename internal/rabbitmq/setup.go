package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"

	"github.com/Eka2r/Padayon/internal/models"
)

// QueueConfig binds one queue to one routing key.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// EventQueues binds queue to every domain event routing key.
func EventQueues(queue string) []QueueConfig {
	keys := []string{
		models.EventPostCreated,
		models.EventPostReacted,
		models.EventPostDeleted,
		models.EventMessageCreated,
	}
	out := make([]QueueConfig, 0, len(keys))
	for _, k := range keys {
		out = append(out, QueueConfig{QueueName: queue, RoutingKey: k})
	}
	return out
}

// SetupChannel opens a channel, declares the direct exchange and declares and
// binds the queues.
func SetupChannel(conn *amqp.Connection, exchange string, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		exchange,
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

	declared := make(map[string]bool)
	for _, q := range queues {
		if !declared[q.QueueName] {
			if _, err := ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
				return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
			}
			declared[q.QueueName] = true
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, exchange, false, nil); err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
