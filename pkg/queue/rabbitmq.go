package queue

import (
	"encoding/json"
	"log"

	"github.com/streadway/amqp"
)

// 审计事件类型
const (
	EventGenerationCreated = "generation.created"
	EventGenerationDeleted = "generation.deleted"
)

// Event 生成/删除审计事件
type Event struct {
	Type      string `json:"type"`
	ImageID   int64  `json:"image_id"`
	UserID    int64  `json:"user_id"`
	Prompt    string `json:"prompt,omitempty"`
	ImagePath string `json:"image_path,omitempty"`
	ModelUsed string `json:"model_used,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// EventPublisher 审计事件发布的最小接口
type EventPublisher interface {
	Publish(e Event) error
	Close() error
}

type RabbitMQ struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

const eventQueue = "image_events"

func NewRabbitMQ(uri string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(
		eventQueue, // queue name
		true,       // durable
		false,      // delete when unused
		false,      // exclusive
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return nil, err
	}

	return &RabbitMQ{conn: conn, ch: ch}, nil
}

func (r *RabbitMQ) Publish(e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return r.ch.Publish(
		"",         // exchange
		eventQueue, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		},
	)
}

func (r *RabbitMQ) Close() error {
	if r.ch != nil {
		if err := r.ch.Close(); err != nil {
			log.Printf("Failed to close RabbitMQ channel: %v", err)
		}
	}

	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			log.Printf("Failed to close RabbitMQ connection: %v", err)
			return err
		}
	}

	return nil
}
