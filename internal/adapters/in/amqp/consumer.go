// Package amqp triggers the dispatch pipeline from order-ready events.
//
// The consumer owns a durable queue bound to a durable fanout exchange and acknowledges
// manually: a message is acked once dispatched, and also when it can never succeed
// (malformed, invalid, unknown order, exhausted serial space). Any other failure is
// nacked with requeue. Transport failures are not failures here: they are recorded on the
// documents and picked up by the retry job.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"

	"github.com/go-playground/validator/v10"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	defaultPrefetch = 4
	initialBackoff  = time.Second
	maxBackoff      = 30 * time.Second
	connectionName  = "fulfillment"
	outcomeAcked    = "ack"
	outcomeDropped  = "dropped"
	outcomeRequeued = "requeued"
)

type Config struct {
	URL      string
	Exchange string
	Queue    string
	Prefetch int
}

type OrderDispatcher interface {
	Handle(ctx context.Context, cmd commands.DispatchOrderCommand) ([]commands.ShipmentResult, error)
}

type Consumer struct {
	cfg        Config
	dispatcher OrderDispatcher
	validate   *validator.Validate
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

func NewConsumer(cfg Config, dispatcher OrderDispatcher, logger *slog.Logger, m *metrics.Metrics) (*Consumer, error) {
	if cfg.URL == "" {
		return nil, errs.NewConfigurationError("AMQP_URL", "must not be empty")
	}
	if cfg.Exchange == "" {
		return nil, errs.NewConfigurationError("AMQP_EXCHANGE", "must not be empty")
	}
	if cfg.Queue == "" {
		return nil, errs.NewConfigurationError("AMQP_QUEUE", "must not be empty")
	}
	if dispatcher == nil {
		return nil, errs.NewValueIsRequiredError("dispatcher")
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = defaultPrefetch
	}

	return &Consumer{
		cfg:        cfg,
		dispatcher: dispatcher,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     logger.With("component", "amqp_consumer"),
		metrics:    m,
	}, nil
}

// Run consumes until ctx is cancelled, reconnecting with exponential backoff whenever the
// broker connection is lost.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := initialBackoff
	for {
		connected, err := c.consume(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			backoff = initialBackoff
		}

		c.logger.WarnContext(ctx, "amqp consumer disconnected", "error", err, "retry_in", backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func (c *Consumer) consume(ctx context.Context) (bool, error) {
	conn, err := amqp.DialConfig(c.cfg.URL, amqp.Config{
		Properties: amqp.Table{"connection_name": connectionName},
	})
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return false, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	deliveries, err := Setup(ch, c.cfg)
	if err != nil {
		return false, err
	}
	closed := conn.NotifyClose(make(chan *amqp.Error, 1))

	c.logger.InfoContext(ctx, "amqp consumer subscribed", "exchange", c.cfg.Exchange, "queue", c.cfg.Queue)
	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case amqpErr, ok := <-closed:
			if ok && amqpErr != nil {
				return true, amqpErr
			}
			return true, errors.New("connection closed")
		case d, ok := <-deliveries:
			if !ok {
				return true, errors.New("delivery channel closed")
			}
			c.Process(ctx, d)
		}
	}
}

// Setup declares the fanout exchange and the queue, binds them and starts a manually
// acknowledged consumer.
func Setup(ch *amqp.Channel, cfg Config) (<-chan amqp.Delivery, error) {
	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}
	q, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", cfg.Queue, err)
	}
	// fanout ignores the routing key
	if err = ch.QueueBind(q.Name, "", cfg.Exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue %s: %w", q.Name, err)
	}
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = defaultPrefetch
	}
	if err = ch.Qos(prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := ch.Consume(q.Name, connectionName, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", q.Name, err)
	}
	return deliveries, nil
}

// Process dispatches one delivery and settles it.
func (c *Consumer) Process(ctx context.Context, d amqp.Delivery) {
	outcome := c.handle(ctx, d)

	var err error
	switch outcome {
	case outcomeRequeued:
		err = d.Nack(false, true)
	default:
		err = d.Ack(false)
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "amqp settle failed", "delivery_tag", d.DeliveryTag, "outcome", outcome, "error", err)
	}
	c.metrics.RecordMessage(outcome)
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) string {
	log := c.logger.With("message_id", d.MessageId, "delivery_tag", d.DeliveryTag)

	cmd, err := decodeMessage(c.validate, d.Body)
	if err != nil {
		log.ErrorContext(ctx, "order-ready message rejected", "error", err)
		return outcomeDropped
	}
	log = log.With("order_id", cmd.OrderID().String())

	results, err := c.dispatcher.Handle(ctx, cmd)
	switch {
	case err == nil:
		failed := 0
		for _, r := range results {
			if !r.Done() {
				failed++
			}
		}
		log.InfoContext(ctx, "order dispatched from event", "shipments", len(results), "failed", failed)
		return outcomeAcked
	case errs.IsFatal(err), errors.Is(err, errs.ErrObjectNotFound):
		log.ErrorContext(ctx, "order cannot be dispatched", "error", err)
		return outcomeDropped
	default:
		log.WarnContext(ctx, "order dispatch failed, requeueing", "error", err, "redelivered", d.Redelivered)
		return outcomeRequeued
	}
}
