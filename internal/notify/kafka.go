package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Event struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// KafkaNotifier publishes each message as an Event. Delivery is best effort:
// failures are logged and dropped.
type KafkaNotifier struct {
	writer  messageWriter
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewKafkaNotifier(log logrus.FieldLogger, topic string, brokers ...string) *KafkaNotifier {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaNotifier{writer: w, timeout: 5 * time.Second, log: log}
}

func (n *KafkaNotifier) Error(message string) {
	event := Event{
		ID:        uuid.NewString(),
		Level:     "error",
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		n.log.WithError(err).Error("failed to encode notification")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("cart_notification")},
		},
	})
	if err != nil {
		n.log.WithError(err).WithField("event_id", event.ID).Warn("failed to publish notification")
	}
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
