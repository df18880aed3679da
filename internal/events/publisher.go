// Package events publishes order-confirmed messages to Kafka.
package events

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"storefront/internal/ledger"
	"storefront/internal/session"
)

const (
	eventTypeOrderConfirmed = "order_confirmed"
	queueSize               = 256
	writeTimeout            = 5 * time.Second
)

// OrderConfirmed is the message value written for every created order.
type OrderConfirmed struct {
	OrderID   string  `json:"orderId"`
	SessionID string  `json:"sessionId"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"itemCount"`
	OrderDate string  `json:"orderDate"`
	Status    string  `json:"status"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter builds the writer used in production.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

// Publisher forwards order_created ledger events to a Kafka topic. Writes happen
// on the Run goroutine so ledger callers never wait on the broker.
type Publisher struct {
	writer messageWriter
	logger *log.Logger
	queue  chan kafka.Message
}

func NewPublisher(w messageWriter, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Publisher{
		writer: w,
		logger: logger,
		queue:  make(chan kafka.Message, queueSize),
	}
}

// Attach subscribes the publisher to the session's cart. It matches session.Options.OnLoad.
func (p *Publisher) Attach(s *session.Session) {
	s.Cart.Subscribe(func(e ledger.Event) {
		if e.Kind != ledger.EventOrderCreated || e.Order == nil {
			return
		}
		p.enqueue(s.ID, e)
	})
}

func (p *Publisher) enqueue(sessionID string, e ledger.Event) {
	count := 0
	for _, it := range e.Order.Items {
		count += it.Quantity
	}
	value, err := json.Marshal(OrderConfirmed{
		OrderID:   e.Order.OrderID,
		SessionID: sessionID,
		Total:     e.Order.Total,
		ItemCount: count,
		OrderDate: e.Order.OrderDate,
		Status:    string(e.Order.Status),
	})
	if err != nil {
		p.logger.Printf("events: marshal order_id=%s error=%v", e.Order.OrderID, err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(e.Order.OrderID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventTypeOrderConfirmed)},
		},
	}
	select {
	case p.queue <- msg:
	default:
		p.logger.Printf("events: queue full, dropped order_id=%s", e.Order.OrderID)
	}
}

// Run writes queued messages until ctx is cancelled, then flushes what is left.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case msg := <-p.queue:
			p.write(msg)
		case <-ctx.Done():
			for {
				select {
				case msg := <-p.queue:
					p.write(msg)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) write(msg kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Printf("events: publish order_id=%s error=%v", msg.Key, err)
		return
	}
	p.logger.Printf("events: published order_id=%s", msg.Key)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
