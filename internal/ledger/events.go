package ledger

import "context"

type EventType string

const (
	EventJarCreated  EventType = "jar.created"
	EventTipReceived EventType = "tip.received"
	EventJarStatus   EventType = "jar.status"
)

// Event describes a committed change. Events never carry amounts or tip
// senders.
type Event struct {
	Type     EventType `json:"type"`
	JarID    uint64    `json:"jar_id"`
	Owner    string    `json:"owner,omitempty"`
	TipCount uint64    `json:"tip_count,omitempty"`
	Active   *bool     `json:"active,omitempty"`
}

// Notifier receives events after their operation has been committed.
// Notify runs outside the ledger lock, so events of concurrent operations
// may arrive out of commit order; consumers should order tip.received by
// tip_count rather than by arrival.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Event) error { return nil }
