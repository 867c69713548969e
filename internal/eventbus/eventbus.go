package eventbus

import (
	"encoding/json"
	"sync"
)

type (
	// Bus fans out progress events to the subscribers of an identifier, e.g. "verification:42".
	Bus interface {
		Register(identifier string) (<-chan Event, func())
		BroadcastWithData(identifier string, evType Type, message string, data []byte)
	}

	Event struct {
		Type    Type            `json:"type"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data,omitempty"`
	}

	Type string
)

const (
	Error    Type = "error"
	Info     Type = "info"
	Success  Type = "success"
	Complete Type = "complete"
)

const subscriberBuffer = 64

type eventPublisher struct {
	events map[string][]chan Event
	lock   sync.Mutex
}

func New() Bus {
	return &eventPublisher{
		events: make(map[string][]chan Event),
	}
}

// Register subscribes to identifier. The returned function unsubscribes and closes the channel;
// it is safe to call more than once.
func (e *eventPublisher) Register(identifier string) (<-chan Event, func()) {
	e.lock.Lock()
	defer e.lock.Unlock()

	ch := make(chan Event, subscriberBuffer)
	e.events[identifier] = append(e.events[identifier], ch)

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.unregister(identifier, ch)
		})
	}
}

func (e *eventPublisher) unregister(identifier string, ch chan Event) {
	e.lock.Lock()
	defer e.lock.Unlock()

	clients := e.events[identifier]
	for i, next := range clients {
		if next == ch {
			clients = append(clients[:i], clients[i+1:]...)
			close(ch)
			break
		}
	}
	if len(clients) == 0 {
		delete(e.events, identifier)
		return
	}
	e.events[identifier] = clients
}

func (e *eventPublisher) BroadcastWithData(identifier string, evType Type, message string, data []byte) {
	e.publish(identifier, Event{
		Type:    evType,
		Message: message,
		Data:    data,
	})
}

// publish never blocks the caller: a subscriber whose buffer is full misses the event.
// The lock is held while sending so a concurrent unregister cannot close a channel mid-send.
func (e *eventPublisher) publish(identifier string, ev Event) {
	e.lock.Lock()
	defer e.lock.Unlock()

	for _, ch := range e.events[identifier] {
		select {
		case ch <- ev:
		default:
		}
	}
}
