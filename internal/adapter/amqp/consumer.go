package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rabbitmq/amqp091-go"

	"item-crowdfund/internal/config/configs"
	"item-crowdfund/internal/core/domain"
)

// MintResultMessage is the body published by the minting service on the
// result routing key.
type MintResultMessage struct {
	ItemIndex  int64  `json:"item_index"`
	DispatchID string `json:"dispatch_id"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// Result converts the message into a domain.MintResult.
func (m MintResultMessage) Result() domain.MintResult {
	return domain.MintResult{DispatchID: m.DispatchID, Success: m.Success, Reason: m.Error}
}

// Confirmer applies mint results. port.CrowdfundUseCase satisfies it.
type Confirmer interface {
	ConfirmTokenization(ctx context.Context, index int64, res domain.MintResult) error
}

// Consumer feeds mint results from the broker into a Confirmer.
type Consumer struct {
	conn      *amqp091.Connection
	channel   *amqp091.Channel
	queue     string
	confirmer Confirmer
	logger    *slog.Logger
}

// NewConsumer declares the result queue, binds it and sets the prefetch.
func NewConsumer(cfg configs.AMQP, confirmer Confirmer, logger *slog.Logger) (*Consumer, error) {
	conn, ch, err := Dial(cfg)
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*Consumer, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	q, err := ch.QueueDeclare(
		cfg.ResultQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fail(fmt.Errorf("declare queue: %w", err))
	}
	if err = ch.QueueBind(q.Name, cfg.ResultKey, cfg.Exchange, false, nil); err != nil {
		return fail(fmt.Errorf("bind queue: %w", err))
	}
	if cfg.PrefetchCount > 0 {
		if err = ch.Qos(cfg.PrefetchCount, 0, false); err != nil {
			return fail(fmt.Errorf("set qos: %w", err))
		}
	}

	logger.Info("mint result consumer initialized",
		slog.String("queue", q.Name),
		slog.String("routing_key", cfg.ResultKey),
		slog.String("exchange", cfg.Exchange),
	)
	return &Consumer{
		conn:      conn,
		channel:   ch,
		queue:     q.Name,
		confirmer: confirmer,
		logger:    logger,
	}, nil
}

// Run consumes until ctx is done or the delivery channel closes. Every
// delivery is acked or nacked exactly once.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.channel.ConsumeWithContext(ctx,
		c.queue,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg amqp091.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("mint result handler panic", slog.Any("panic", r))
			_ = msg.Nack(false, false)
		}
	}()

	switch err := HandleResult(ctx, c.confirmer, msg.Body); {
	case err == nil:
		if aerr := msg.Ack(false); aerr != nil {
			c.logger.Error("ack mint result", slog.Any("error", aerr))
		}
	case domain.Kind(err) == domain.KindInternal:
		// storage trouble, let the broker redeliver
		c.logger.Error("apply mint result", slog.Any("error", err))
		_ = msg.Nack(false, true)
	default:
		c.logger.Warn("drop mint result", slog.Any("error", err))
		_ = msg.Nack(false, false)
	}
}

// HandleResult decodes one result body and applies it.
func HandleResult(ctx context.Context, confirmer Confirmer, body []byte) error {
	var m MintResultMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err)
	}
	if m.ItemIndex < 0 {
		return fmt.Errorf("%w: item index %d", domain.ErrMalformedMessage, m.ItemIndex)
	}
	return confirmer.ConfirmTokenization(ctx, m.ItemIndex, m.Result())
}

// Close releases the channel and the connection.
func (c *Consumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}
