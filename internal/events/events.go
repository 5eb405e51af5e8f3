package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// MenuImported is published after every import batch.
type MenuImported struct {
	RunID        string    `json:"runId"`
	Source       string    `json:"source"`
	StartDate    string    `json:"startDate"`
	CreatedCount int       `json:"createdCount"`
	SkippedCount int       `json:"skippedCount"`
	ErrorCount   int       `json:"errorCount"`
	CreatedDates []string  `json:"createdDates"`
	FinishedAt   time.Time `json:"finishedAt"`
}

// Publisher delivers import events to downstream consumers.
type Publisher interface {
	PublishMenuImported(ctx context.Context, evt MenuImported) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishMenuImported(context.Context, MenuImported) error { return nil }
func (NopPublisher) Close() error                                             { return nil }

// messageWriter is the part of kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON messages keyed by run id.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaPublisher returns a publisher for the given brokers, or a
// NopPublisher when brokers is empty.
func NewKafkaPublisher(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
	log.Infof("publishing import events to %v topic %s", brokers, topic)
	return &KafkaPublisher{writer: w, topic: topic}
}

func (p *KafkaPublisher) PublishMenuImported(ctx context.Context, evt MenuImported) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode import event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(evt.RunID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte("menu.imported")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish import event to %s: %w", p.topic, err)
	}
	log.Debugf("published import event for run %s", evt.RunID)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
