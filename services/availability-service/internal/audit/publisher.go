package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/md-rashed-zaman/slotserve/libs/kafkax"
)

// Event is the payload of availability.search.performed.v1, consumed by the
// analytics pipeline.
type Event struct {
	EventID         string `json:"event_id"`
	RequestID       string `json:"request_id,omitempty"`
	Timezone        string `json:"timezone"`
	From            string `json:"from"`
	To              string `json:"to"`
	DurationMinutes int    `json:"duration_minutes"`
	SlotCount       int    `json:"slot_count"`
	OccurredAt      string `json:"occurred_at"`
}

// Publisher sends audit events to Kafka off the request path. Events flow
// through a bounded queue drained by Run; when the queue is full the event is
// dropped with a warning, never blocking a search.
type Publisher struct {
	logger  *slog.Logger
	brokers []string
	topic   string
	queue   chan kafka.Message
}

// NewPublisher returns nil when no brokers are configured, which callers
// treat as "auditing disabled".
func NewPublisher(logger *slog.Logger, brokers string, topic string) *Publisher {
	list := kafkax.SplitBrokers(brokers)
	if len(list) == 0 || topic == "" {
		return nil
	}
	return &Publisher{
		logger:  logger,
		brokers: list,
		topic:   topic,
		queue:   make(chan kafka.Message, 256),
	}
}

// Record enqueues one event. Trace context from ctx travels in the message
// headers so the analytics consumer joins the request trace.
func (p *Publisher) Record(ctx context.Context, ev Event) {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("failed to build audit payload", "err", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(ev.EventID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(ev.EventID)},
			{Key: "event_type", Value: []byte(p.topic)},
		},
	}
	msg.Headers = kafkax.InjectTraceHeaders(ctx, msg.Headers)

	select {
	case p.queue <- msg:
	default:
		p.logger.Warn("audit queue full; dropping event", "event_id", ev.EventID)
	}
}

// Run drains the queue until ctx is cancelled. Start it once per process.
func (p *Publisher) Run(ctx context.Context) {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  p.brokers,
		Topic:    p.topic,
		Balancer: &kafka.Hash{},
	})
	defer writer.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-p.queue:
			if err := writer.WriteMessages(ctx, msg); err != nil {
				p.logger.Error("audit publish failed", "err", err)
			}
		}
	}
}
