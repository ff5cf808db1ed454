// Package events publishes ledger events to NATS. Each event goes to the
// subject "<prefix>.<event type>" as JSON.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/ghosttips/internal/ledger"
	"github.com/nats-io/nats.go"
)

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	Publish(subject string, data []byte) error
}

var natsConnect = nats.Connect

// Connect dials the NATS server at url and keeps reconnecting for the
// lifetime of the process.
func Connect(url, name string) (*nats.Conn, error) {
	nc, err := natsConnect(url, nats.Name(name), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return nc, nil
}

type NATSNotifier struct {
	pub    Publisher
	prefix string
}

var _ ledger.Notifier = (*NATSNotifier)(nil)

func NewNATSNotifier(pub Publisher, prefix string) *NATSNotifier {
	return &NATSNotifier{pub: pub, prefix: prefix}
}

// Subject returns the subject an event of type t is published on.
func (n *NATSNotifier) Subject(t ledger.EventType) string {
	if n.prefix == "" {
		return string(t)
	}
	return n.prefix + "." + string(t)
}

func (n *NATSNotifier) Notify(ctx context.Context, e ledger.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	subject := n.Subject(e.Type)
	if err := n.pub.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}
