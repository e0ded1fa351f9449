package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"srsevents/pkg/logger"
)

// Consumer drains the notification topic and hands messages to the email
// sender.
type Consumer interface {
	Start(ctx context.Context) error
	Stop() error
}

type ConsumerConfig struct {
	Brokers        []string
	GroupID        string
	Topic          string
	SessionTimeout time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:        []string{"localhost:9092"},
		GroupID:        "srsevents-notification-workers",
		Topic:          "booking-notifications",
		SessionTimeout: 30 * time.Second,
		MaxRetries:     3,
		RetryBackoff:   time.Second,
	}
}

type kafkaConsumer struct {
	group  sarama.ConsumerGroup
	config *ConsumerConfig
	email  EmailSender
	cancel context.CancelFunc
}

func NewKafkaConsumer(config *ConsumerConfig, email EmailSender) (Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &kafkaConsumer{group: group, config: config, email: email}, nil
}

func (c *kafkaConsumer) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	go func() {
		for err := range c.group.Errors() {
			logger.Error("notification consumer error", "error", err)
		}
	}()

	go func() {
		handler := &messageHandler{email: c.email, config: c.config}
		for {
			if err := c.group.Consume(ctx, []string{c.config.Topic}, handler); err != nil {
				logger.Error("notification consume loop failed", "error", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	logger.Info("notification consumer started",
		"topic", c.config.Topic, "group", c.config.GroupID)
	return nil
}

func (c *kafkaConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	return c.group.Close()
}

type messageHandler struct {
	email  EmailSender
	config *ConsumerConfig
}

func (h *messageHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *messageHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *messageHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for kafkaMsg := range claim.Messages() {
		msg, err := MessageFromJSON(kafkaMsg.Value)
		if err != nil {
			// Poison message; log and move on rather than wedging the
			// partition.
			logger.Error("dropping undecodable notification",
				"offset", kafkaMsg.Offset, "error", err)
			session.MarkMessage(kafkaMsg, "")
			continue
		}

		h.deliver(session.Context(), msg)
		session.MarkMessage(kafkaMsg, "")
	}
	return nil
}

func (h *messageHandler) deliver(ctx context.Context, msg *Message) {
	var err error
	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(h.config.RetryBackoff)
		}
		if err = h.email.Send(ctx, msg); err == nil {
			logger.Debug("notification delivered",
				"type", string(msg.Type), "recipient", msg.RecipientEmail)
			return
		}
	}
	logger.Error("notification delivery failed",
		"type", string(msg.Type),
		"recipient", msg.RecipientEmail,
		"retries", h.config.MaxRetries,
		"error", err,
	)
}
