package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/lqnhat/chatcore/internal/config"
	"github.com/lqnhat/chatcore/internal/models"
)

// Publisher mirrors message lifecycle events to a stream for downstream
// consumers. Publishing is fire-and-forget: a broker outage must never fail
// the chat operation that triggered the event.
type Publisher interface {
	MessageSent(ctx context.Context, message *models.Message)
	MessageDeleted(ctx context.Context, message *models.Message)
}

// Envelope is the wire format: a pattern naming the event plus its payload.
type Envelope struct {
	Pattern string `json:"pattern"`
	Data    any    `json:"data"`
}

type kafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.SugaredLogger
}

func NewPublisher(lc fx.Lifecycle, conf *config.Config, log *zap.SugaredLogger) Publisher {
	if !conf.Kafka.Enabled {
		return noopPublisher{}
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(conf.Kafka.Brokers...),
		Topic:    conf.Kafka.Topic,
		Balancer: &kafka.Hash{},
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return writer.Close()
		},
	})

	return &kafkaPublisher{
		writer: writer,
		log:    log.Named("events"),
	}
}

func (p *kafkaPublisher) MessageSent(ctx context.Context, message *models.Message) {
	p.publish(ctx, "message.sent", message.ConversationID.Hex(), message)
}

func (p *kafkaPublisher) MessageDeleted(ctx context.Context, message *models.Message) {
	p.publish(ctx, "message.deleted", message.ConversationID.Hex(), message)
}

func (p *kafkaPublisher) publish(ctx context.Context, pattern, key string, data any) {
	payload, err := json.Marshal(Envelope{Pattern: pattern, Data: data})
	if err != nil {
		p.log.Errorw("marshal event", "pattern", pattern, "error", err)
		return
	}

	// Keyed by conversation so per-conversation ordering survives
	// partitioning.
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		p.log.Warnw("publish event", "pattern", pattern, "error", err)
	}
}

type noopPublisher struct{}

func (noopPublisher) MessageSent(context.Context, *models.Message)    {}
func (noopPublisher) MessageDeleted(context.Context, *models.Message) {}
