package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Message wraps a delivered job with its RabbitMQ acknowledgement handle
type Message struct {
	Job         *Job
	DeliveryTag uint64
	Channel     *amqp.Channel
}

// GetJob returns the job carried by the message
func (m *Message) GetJob() *Job {
	return m.Job
}

// Ack acknowledges the message
func (m *Message) Ack() error {
	if m.Channel == nil {
		return fmt.Errorf("no channel available for ack")
	}
	return m.Channel.Ack(m.DeliveryTag, false)
}

// Nack rejects the message; requeue controls whether it is redelivered
// or dead-lettered
func (m *Message) Nack(requeue bool) error {
	if m.Channel == nil {
		return fmt.Errorf("no channel available for nack")
	}
	return m.Channel.Nack(m.DeliveryTag, false, requeue)
}

var _ MessageInterface = (*Message)(nil)
