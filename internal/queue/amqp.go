package queue

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/unclebandit/customer-service/internal/model"
)

// AMQPQueue publishes to and consumes from durable RabbitMQ queues named after the topic.
type AMQPQueue struct {
	conn *amqp.Connection
	mu   sync.Mutex
	ch   *amqp.Channel
	log  *zap.Logger
}

func DialAMQP(url string, log *zap.Logger) (*AMQPQueue, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	return &AMQPQueue{conn: conn, ch: ch, log: log.Named("queue.amqp")}, nil
}

func declare(ch *amqp.Channel, topic string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		topic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
}

func (q *AMQPQueue) Publish(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}
	if e, ok := payload.(model.CustomerEvent); ok {
		msg.MessageId = e.EventID
		msg.Type = e.Type
		msg.Timestamp = e.OccurredAt
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, err := declare(q.ch, topic); err != nil {
		return fmt.Errorf("declare queue %s: %w", topic, err)
	}
	if err := q.ch.Publish("", topic, false, false, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe consumes topic on its own channel. The handler receives the raw body.
// Failed deliveries are requeued once, then dropped.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel: %w", err)
	}
	if _, err := declare(ch, topic); err != nil {
		_ = ch.Close()
		return fmt.Errorf("declare queue %s: %w", topic, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		_ = ch.Close()
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := ch.Consume(
		topic,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("register consumer: %w", err)
	}

	go func() {
		for d := range deliveries {
			q.handleDelivery(d, handler)
		}
		q.log.Info("consumer stopped", zap.String("topic", topic))
	}()
	return nil
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (q *AMQPQueue) handleDelivery(d amqp.Delivery, handler func(payload any) error) {
	settle(q.log, &d, d.Redelivered, d.MessageId, d.Body, handler)
}

func settle(log *zap.Logger, ack acknowledger, redelivered bool, messageID string, body []byte, handler func(payload any) error) {
	if err := handler(body); err != nil {
		requeue := !redelivered
		log.Warn("delivery failed",
			zap.String("message_id", messageID),
			zap.Bool("requeue", requeue),
			zap.Error(err),
		)
		_ = ack.Nack(false, requeue)
		return
	}
	_ = ack.Ack(false)
}

// NotifyClose reports connection loss.
func (q *AMQPQueue) NotifyClose() <-chan *amqp.Error {
	return q.conn.NotifyClose(make(chan *amqp.Error, 1))
}

func (q *AMQPQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.ch.Close(); err != nil {
		_ = q.conn.Close()
		return err
	}
	return q.conn.Close()
}
