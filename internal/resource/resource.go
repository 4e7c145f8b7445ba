// Package resource keeps a view's copy of remote data fresh: it loads once on
// mount, again on a fixed interval, and again whenever an invalidation topic
// fires on the bus.
package resource

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"campuslink/internal/bus"
	"campuslink/internal/metrics"
)

// DefaultInterval is the poll period used when Options.Interval is zero.
const DefaultInterval = 15 * time.Second

// Loader fetches the current value of a resource.
type Loader[T any] func(ctx context.Context) (T, error)

// Options configures a mounted resource.
type Options struct {
	// Key names the resource in logs and metrics.
	Key string
	// Interval between timed refreshes. Zero means DefaultInterval, negative
	// disables the timer.
	Interval time.Duration
	// Invalidate lists topics that trigger an immediate refresh.
	Invalidate []bus.Topic
	// Timeout bounds a single load. Zero means no extra bound.
	Timeout time.Duration
}

// Subscription is a mounted resource.
type Subscription[T any] struct {
	key     string
	load    Loader[T]
	apply   func(T)
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	subs   []*bus.Subscription

	// guard serialises apply calls with Unmount so nothing is applied once
	// Unmount has returned.
	guard     sync.Mutex
	cancelled atomic.Bool
}

// Mount starts keeping a resource fresh. apply receives every successful
// load, one call at a time. apply must not unmount its own subscription.
func Mount[T any](b bus.Bus, opts Options, load Loader[T], apply func(T)) *Subscription[T] {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Subscription[T]{
		key:     opts.Key,
		load:    load,
		apply:   apply,
		timeout: opts.Timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, t := range opts.Invalidate {
		s.subs = append(s.subs, b.Subscribe(t, s.Refresh))
	}

	s.Refresh()

	interval := opts.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	if interval > 0 {
		go s.tick(interval)
	}
	glog.V(2).Infof("resource %s: mounted interval=%s", s.key, interval)
	return s
}

// Key returns the resource key.
func (s *Subscription[T]) Key() string { return s.key }

// Mounted reports whether Unmount has not been called yet.
func (s *Subscription[T]) Mounted() bool { return !s.cancelled.Load() }

// Refresh starts a load now without waiting for it. Overlapping loads are
// not merged; each result is applied in arrival order.
func (s *Subscription[T]) Refresh() {
	if s.cancelled.Load() {
		return
	}
	go s.run()
}

// Unmount stops the timer, releases bus subscriptions and aborts in-flight
// loads. Results that arrive later are dropped. Safe to call more than once.
func (s *Subscription[T]) Unmount() {
	s.guard.Lock()
	if s.cancelled.Load() {
		s.guard.Unlock()
		return
	}
	s.cancelled.Store(true)
	s.guard.Unlock()

	s.cancel()
	for _, sub := range s.subs {
		sub.Release()
	}
	glog.V(2).Infof("resource %s: unmounted", s.key)
}

func (s *Subscription[T]) tick(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.Refresh()
		}
	}
}

func (s *Subscription[T]) run() {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	v, err := s.load(ctx)
	if err != nil {
		if s.cancelled.Load() {
			metrics.PollCycles.WithLabelValues(s.key, "discarded").Inc()
			return
		}
		// keep the last good value; background refreshes never surface errors
		glog.V(1).Infof("resource %s: refresh failed: %v", s.key, err)
		metrics.PollCycles.WithLabelValues(s.key, "error").Inc()
		return
	}

	s.guard.Lock()
	defer s.guard.Unlock()
	if s.cancelled.Load() {
		metrics.PollCycles.WithLabelValues(s.key, "discarded").Inc()
		return
	}
	s.apply(v)
	metrics.PollCycles.WithLabelValues(s.key, "ok").Inc()
}

// Pair holds the results of two loaders fetched in the same cycle.
type Pair[A, B any] struct {
	First  A
	Second B
}

// All2 runs both loaders concurrently and succeeds only if both do, so a
// cycle is applied whole or not at all.
func All2[A, B any](la Loader[A], lb Loader[B]) Loader[Pair[A, B]] {
	return func(ctx context.Context) (Pair[A, B], error) {
		var p Pair[A, B]
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			v, err := la(gctx)
			p.First = v
			return err
		})
		g.Go(func() error {
			v, err := lb(gctx)
			p.Second = v
			return err
		})
		if err := g.Wait(); err != nil {
			return Pair[A, B]{}, err
		}
		return p, nil
	}
}
