package services

import "sync"

// Topic names a class of in-process events.
type Topic string

// EventInboxRefresh asks every inbox view to reload its messages.
const EventInboxRefresh Topic = "refreshInboxMessages"

type Event struct {
	Topic   Topic
	Payload any
}

// Events is a small in-process publish/subscribe bus. Delivery never blocks
// the publisher: a subscriber whose buffer is full misses the event.
type Events struct {
	mu   sync.Mutex
	subs map[Topic]map[int]chan Event
	next int
}

const subscriberBuffer = 8

func NewEvents() *Events {
	return &Events{subs: make(map[Topic]map[int]chan Event)}
}

// Subscribe returns a channel receiving events of topic. cancel unsubscribes
// and closes the channel; it is safe to call more than once.
func (e *Events) Subscribe(topic Topic) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	e.mu.Lock()
	id := e.next
	e.next++
	if e.subs[topic] == nil {
		e.subs[topic] = make(map[int]chan Event)
	}
	e.subs[topic][id] = ch
	e.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs[topic], id)
			e.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (e *Events) Publish(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ch := range e.subs[ev.Topic] {
		select {
		case ch <- ev:
		default:
		}
	}
}
