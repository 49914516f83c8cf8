// Package kafka consumes carrier scan events from a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"parcel-service/internal/logx"
	"parcel-service/internal/service/scans"
)

// HandleFunc processes a single scans.Event from Kafka.
type HandleFunc func(context.Context, scans.Event) error

var newConsumerGroup = sarama.NewConsumerGroup

const consumeBackoff = time.Second

// Consumer wraps a Sarama consumer group and dispatches events to a handler.
type Consumer struct {
	group   sarama.ConsumerGroup
	topic   string
	handler HandleFunc
	logger  logx.Logger
}

// NewConsumer creates a consumer. It returns nil, nil when Kafka is not configured.
func NewConsumer(logger logx.Logger, brokers []string, groupID, topic string, h HandleFunc) (*Consumer, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" || strings.TrimSpace(groupID) == "" {
		return nil, nil
	}
	if logger == nil {
		logger = logx.Nop()
	}

	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true

	group, err := newConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:   group,
		topic:   topic,
		handler: h,
		logger:  logger.With(logx.String("component", "kafka_consumer"), logx.String("topic", topic)),
	}, nil
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	if c == nil {
		return nil
	}

	go c.drainErrors(ctx)

	h := &groupHandler{c: c}
	for {
		if err := c.group.Consume(ctx, []string{c.topic}, h); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			c.logger.Warn("kafka consume error", logx.Err(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(consumeBackoff):
			}
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) drainErrors(ctx context.Context) {
	errs := c.group.Errors()
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				return
			}
			c.logger.Warn("kafka group error", logx.Err(err))
		}
	}
}

// Close closes the underlying consumer group.
func (c *Consumer) Close() error {
	if c == nil {
		return nil
	}
	return c.group.Close()
}

type groupHandler struct{ c *Consumer }

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marks a message once it is handled or found permanently bad.
// A transient handler error ends the session without marking, so the scan is
// redelivered.
func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log := h.c.logger
	for msg := range claim.Messages() {
		var dto ScanDTO
		if err := json.Unmarshal(msg.Value, &dto); err != nil {
			log.Warn("kafka bad json", logx.Int64("offset", msg.Offset), logx.Err(err))
			sess.MarkMessage(msg, "")
			continue
		}

		ev, err := ToDomain(dto)
		if err == nil {
			err = h.c.handler(sess.Context(), ev)
		}

		var perm PermanentError
		switch {
		case err == nil:
		case errors.As(err, &perm):
			log.Warn("kafka scan skipped",
				logx.Int64("offset", msg.Offset),
				logx.Int64("delivery_id", dto.DeliveryID),
				logx.Err(err),
			)
		default:
			log.Error("kafka handle failed",
				logx.Int64("offset", msg.Offset),
				logx.Int64("delivery_id", dto.DeliveryID),
				logx.Err(err),
			)
			return err
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}
