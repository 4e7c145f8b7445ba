package portal

import (
	"sync"

	"campuslink/internal/bus"
	"campuslink/internal/resource"
)

// synced holds the last good value of one resource while it is mounted.
// It satisfies Content so a Gate can drive it.
type synced[T any] struct {
	bus  bus.Bus
	opts resource.Options
	load resource.Loader[T]

	subMu sync.Mutex
	sub   *resource.Subscription[T]

	mu     sync.RWMutex
	value  T
	loaded bool
}

func newSynced[T any](b bus.Bus, opts resource.Options, load resource.Loader[T]) *synced[T] {
	return &synced[T]{bus: b, opts: opts, load: load}
}

func (s *synced[T]) Mount() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.sub != nil {
		return
	}
	s.sub = resource.Mount(s.bus, s.opts, s.load, s.set)
}

// Unmount stops syncing and drops the cached value.
func (s *synced[T]) Unmount() {
	s.subMu.Lock()
	sub := s.sub
	s.sub = nil
	s.subMu.Unlock()
	if sub == nil {
		return
	}
	sub.Unmount()

	s.mu.Lock()
	var zero T
	s.value, s.loaded = zero, false
	s.mu.Unlock()
}

// Refresh asks for a load now. It does nothing while unmounted.
func (s *synced[T]) Refresh() {
	s.subMu.Lock()
	sub := s.sub
	s.subMu.Unlock()
	if sub != nil {
		sub.Refresh()
	}
}

func (s *synced[T]) Mounted() bool {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return s.sub != nil
}

func (s *synced[T]) set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value, s.loaded = v, true
}

func (s *synced[T]) get() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.loaded
}
