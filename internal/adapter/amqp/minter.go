package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rabbitmq/amqp091-go"

	"item-crowdfund/internal/core/domain"
)

// Minter publishes mint requests to the minting service. It implements
// port.Minter.
type Minter struct {
	mu         sync.Mutex
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	exchange   string
	routingKey string
}

// NewMinter returns a publisher on an already opened channel.
func NewMinter(conn *amqp091.Connection, ch *amqp091.Channel, exchange, routingKey string) *Minter {
	return &Minter{
		conn:       conn,
		channel:    ch,
		exchange:   exchange,
		routingKey: routingKey,
	}
}

// DispatchMint publishes req as persistent JSON. The message id is the
// dispatch id so the minting service can drop redeliveries.
func (m *Minter) DispatchMint(ctx context.Context, req domain.MintRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil || m.conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection closed")
	}
	return m.channel.PublishWithContext(ctx,
		m.exchange,
		m.routingKey,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			MessageId:    req.DispatchID,
			Body:         body,
			DeliveryMode: amqp091.Persistent,
		},
	)
}

// Close releases the channel and the connection.
func (m *Minter) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.channel != nil {
		_ = m.channel.Close()
	}
	if m.conn != nil {
		_ = m.conn.Close()
	}
}
