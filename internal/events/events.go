package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	RequestCreated          Type = "request.created"
	RequestOccupantApproved Type = "request.occupant_approved"
	RequestApproved         Type = "request.approved"
	RequestRejected         Type = "request.rejected"
	RequestCancelled        Type = "request.cancelled"
	ContractCreated         Type = "contract.created"
	ContractTerminated      Type = "contract.terminated"
	ContractExpired         Type = "contract.expired"
	InvoiceCreated          Type = "invoice.created"
	InvoicePaid             Type = "invoice.paid"
	InvoiceFailed           Type = "invoice.failed"
	PostVisibility          Type = "post.visibility"
)

// Event is emitted after a transition has been committed.
type Event struct {
	ID         uuid.UUID      `json:"id"`
	Type       Type           `json:"type"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	RoomID     uuid.UUID      `json:"room_id"`
	Audience   []uuid.UUID    `json:"-"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func New(t Type, entityType string, entityID, roomID uuid.UUID, payload map[string]any, audience ...uuid.UUID) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		EntityType: entityType,
		EntityID:   entityID,
		RoomID:     roomID,
		Audience:   audience,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

// Concerns reports whether the actor is a named recipient of the event.
func (e Event) Concerns(actorID uuid.UUID) bool {
	for _, id := range e.Audience {
		if id == actorID {
			return true
		}
	}
	return false
}

type Publisher interface {
	Publish(event Event)
}

type subscriber struct {
	ch chan Event
}

// Broker fans events out to subscribers. A subscriber that does not keep up
// loses events rather than blocking the publisher.
type Broker struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	buffer int
	log    *slog.Logger
}

func NewBroker(buffer int, log *slog.Logger) *Broker {
	if log == nil {
		log = slog.Default()
	}
	if buffer <= 0 {
		buffer = 16
	}
	return &Broker{
		subs:   make(map[*subscriber]struct{}),
		buffer: buffer,
		log:    log,
	}
}

func (b *Broker) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		select {
		case sub.ch <- event:
		default:
			b.log.Debug("dropping event", slog.String("type", string(event.Type)), slog.String("entity_id", event.EntityID.String()))
		}
	}
}

// Subscribe registers a new listener. The returned cancel func closes the
// channel and is safe to call more than once.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, b.buffer)}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, sub)
			b.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
