package channel

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ryanreadbooks/codemaster/chat/event"
)

type subscriber struct {
	id int
	fn func(event.Delivery)
}

// Bus fans every published event out to all subscribers. Deliveries happen one
// at a time in publish order, and each subscriber sees them in that order.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscriber
	nextID int

	pubMu sync.Mutex
	newID func() string
}

func NewBus() *Bus {
	return &Bus{
		newID: func() string { return uuid.Must(uuid.NewV7()).String() },
	}
}

// Subscribe registers fn. The returned func removes it again.
func (b *Bus) Subscribe(fn func(event.Delivery)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish stamps e with a fresh delivery id and hands it to every subscriber
// before returning.
func (b *Bus) Publish(e event.Event) event.Delivery {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	d := event.Delivery{ID: b.newID(), Event: e}

	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()

	for _, s := range subs {
		deliver(s.fn, d)
	}
	return d
}

// PublishFrame decodes one wire frame and publishes it.
func (b *Bus) PublishFrame(frame []byte) (event.Delivery, error) {
	e, err := event.Decode(frame)
	if err != nil {
		return event.Delivery{}, err
	}
	return b.Publish(e), nil
}

func deliver(fn func(event.Delivery), d event.Delivery) {
	defer func() {
		if err := recover(); err != nil {
			slog.Error("[bus] subscriber panic", "type", d.Event.Type(), "error", fmt.Sprint(err))
		}
	}()
	fn(d)
}
