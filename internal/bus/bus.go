package bus

import (
	"sync"
	"sync/atomic"

	"campuslink/internal/metrics"
)

// Topic names a payload-less change signal.
type Topic string

const (
	// DataChanged fires after any admin mutation of a store collection.
	DataChanged Topic = "data-change"
	// SessionChanged fires after a session flag is written.
	SessionChanged Topic = "registered-change"
)

// Bus is the publish/subscribe abstraction views depend on.
type Bus interface {
	Publish(t Topic)
	Subscribe(t Topic, fn func()) *Subscription
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	topic    Topic
	fn       func()
	released atomic.Bool
	release  func()
	once     sync.Once
}

// Release stops delivery to the handler. Safe to call more than once.
func (s *Subscription) Release() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.released.Store(true)
		if s.release != nil {
			s.release()
		}
	})
}

// Topic returns the topic the handler listens on.
func (s *Subscription) Topic() Topic { return s.topic }

// Local delivers signals synchronously inside the process, in subscription order.
type Local struct {
	mu   sync.Mutex
	subs map[Topic][]*Subscription
}

// NewLocal creates an empty in-process bus.
func NewLocal() *Local {
	return &Local{subs: make(map[Topic][]*Subscription)}
}

// Subscribe registers fn for t.
func (l *Local) Subscribe(t Topic, fn func()) *Subscription {
	s := &Subscription{topic: t, fn: fn}
	s.release = func() { l.remove(s) }
	l.mu.Lock()
	l.subs[t] = append(l.subs[t], s)
	l.mu.Unlock()
	return s
}

// Publish calls every live handler of t before returning.
func (l *Local) Publish(t Topic) {
	l.deliver(t, "local")
}

// Subscribers returns the number of live handlers for t.
func (l *Local) Subscribers(t Topic) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs[t])
}

func (l *Local) deliver(t Topic, origin string) {
	metrics.BusSignals.WithLabelValues(string(t), origin).Inc()
	l.mu.Lock()
	snapshot := append([]*Subscription(nil), l.subs[t]...)
	l.mu.Unlock()
	for _, s := range snapshot {
		if s.released.Load() {
			continue
		}
		s.fn()
	}
}

func (l *Local) remove(s *Subscription) {
	l.mu.Lock()
	defer l.mu.Unlock()
	list := l.subs[s.topic]
	for i, cur := range list {
		if cur == s {
			l.subs[s.topic] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(l.subs[s.topic]) == 0 {
		delete(l.subs, s.topic)
	}
}
