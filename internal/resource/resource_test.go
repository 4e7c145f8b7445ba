package resource

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuslink/internal/bus"
)

type recorder[T any] struct {
	mu  sync.Mutex
	got []T
}

func (r *recorder[T]) apply(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, v)
}

func (r *recorder[T]) values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.got...)
}

func TestMountLoadsImmediately(t *testing.T) {
	rec := &recorder[int]{}
	sub := Mount(bus.NewLocal(), Options{Key: "t", Interval: -1},
		func(context.Context) (int, error) { return 7, nil }, rec.apply)
	defer sub.Unmount()

	assert.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{7}, rec.values())
	assert.True(t, sub.Mounted())
	assert.Equal(t, "t", sub.Key())
}

func TestIntervalRefreshes(t *testing.T) {
	var n atomic.Int32
	rec := &recorder[int32]{}
	sub := Mount(bus.NewLocal(), Options{Key: "tick", Interval: 10 * time.Millisecond},
		func(context.Context) (int32, error) { return n.Add(1), nil }, rec.apply)
	defer sub.Unmount()

	assert.Eventually(t, func() bool { return len(rec.values()) >= 3 }, time.Second, 5*time.Millisecond)
}

func TestInvalidationRefreshesNow(t *testing.T) {
	b := bus.NewLocal()
	var n atomic.Int32
	rec := &recorder[int32]{}
	sub := Mount(b, Options{Key: "inv", Interval: -1, Invalidate: []bus.Topic{bus.DataChanged}},
		func(context.Context) (int32, error) { return n.Add(1), nil }, rec.apply)
	defer sub.Unmount()

	assert.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, 5*time.Millisecond)

	b.Publish(bus.SessionChanged)
	b.Publish(bus.DataChanged)
	assert.Eventually(t, func() bool { return len(rec.values()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(2), n.Load())
}

func TestFailedLoadKeepsLastValue(t *testing.T) {
	b := bus.NewLocal()
	var fail atomic.Bool
	var calls atomic.Int32
	rec := &recorder[string]{}
	sub := Mount(b, Options{Key: "err", Interval: -1, Invalidate: []bus.Topic{bus.DataChanged}},
		func(context.Context) (string, error) {
			calls.Add(1)
			if fail.Load() {
				return "", errors.New("store unreachable")
			}
			return "fresh", nil
		}, rec.apply)
	defer sub.Unmount()

	assert.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, 5*time.Millisecond)

	fail.Store(true)
	b.Publish(bus.DataChanged)
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []string{"fresh"}, rec.values())
}

func TestNoApplyAfterUnmount(t *testing.T) {
	b := bus.NewLocal()
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var applied atomic.Int32

	sub := Mount(b, Options{Key: "late", Interval: -1, Invalidate: []bus.Topic{bus.DataChanged}},
		func(context.Context) (int, error) {
			started <- struct{}{}
			<-release
			return 1, nil
		}, func(int) { applied.Add(1) })

	<-started
	sub.Unmount()
	close(release)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), applied.Load())
	assert.False(t, sub.Mounted())
	assert.Equal(t, 0, b.Subscribers(bus.DataChanged))

	// refresh and repeated unmount are no-ops
	sub.Refresh()
	sub.Unmount()
	b.Publish(bus.DataChanged)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), applied.Load())
}

func TestUnmountCancelsLoadContext(t *testing.T) {
	done := make(chan error, 1)
	sub := Mount(bus.NewLocal(), Options{Key: "ctx", Interval: -1},
		func(ctx context.Context) (int, error) {
			<-ctx.Done()
			done <- ctx.Err()
			return 0, ctx.Err()
		}, func(int) {})

	sub.Unmount()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("load context was not cancelled")
	}
}

func TestAll2(t *testing.T) {
	ok := func(v string) Loader[string] {
		return func(context.Context) (string, error) { return v, nil }
	}
	p, err := All2(ok("events"), ok("updates"))(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Pair[string, string]{First: "events", Second: "updates"}, p)

	boom := errors.New("updates down")
	p, err = All2(ok("events"), func(context.Context) (string, error) { return "partial", boom })(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Pair[string, string]{}, p)
}
