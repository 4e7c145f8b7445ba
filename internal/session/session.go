package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	"campuslink/internal/bus"
)

// Flag names a durable boolean that gates one area of the portal.
type Flag string

const (
	Registered  Flag = "registered"
	AdminAuthed Flag = "adminAuthed"
)

// State is the typed view of every session flag.
type State struct {
	Registered  bool `json:"registered"`
	AdminAuthed bool `json:"adminAuthed"`
}

// Get returns the value of f.
func (s State) Get(f Flag) bool {
	switch f {
	case Registered:
		return s.Registered
	case AdminAuthed:
		return s.AdminAuthed
	}
	return false
}

func (s *State) set(f Flag, v bool) error {
	switch f {
	case Registered:
		s.Registered = v
	case AdminAuthed:
		s.AdminAuthed = v
	default:
		return fmt.Errorf("session: unknown flag %q", f)
	}
	return nil
}

func decode(m map[string]string) State {
	return State{
		Registered:  m[string(Registered)] == "true",
		AdminAuthed: m[string(AdminAuthed)] == "true",
	}
}

// Storage persists the raw flag map. Put writes a single flag so processes
// sharing one storage never overwrite each other's flags.
type Storage interface {
	Load(ctx context.Context) (map[string]string, error)
	Put(ctx context.Context, f Flag, v bool) error
}

// reloadTimeout bounds the storage read done on every SessionChanged signal.
const reloadTimeout = 2 * time.Second

// Store keeps the session state in memory, writes it through to storage and
// announces every write on bus.SessionChanged. It reloads from storage on
// every SessionChanged it receives, including ones relayed from other
// processes, so readers see writes made elsewhere.
type Store struct {
	mu      sync.RWMutex
	state   State
	storage Storage
	bus     bus.Bus
	sub     *bus.Subscription
}

// Open loads the persisted state and starts following SessionChanged. Open
// before building anything else that subscribes to SessionChanged, so the
// reload runs first.
func Open(ctx context.Context, storage Storage, b bus.Bus) (*Store, error) {
	raw, err := storage.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	s := &Store{state: decode(raw), storage: storage, bus: b}
	s.sub = b.Subscribe(bus.SessionChanged, s.onChanged)
	return s, nil
}

// Reload replaces the in-memory state with what storage holds.
// The lock is held across the read so a reload never overwrites a newer Set.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := s.storage.Load(ctx)
	if err != nil {
		return fmt.Errorf("session: load: %w", err)
	}
	s.state = decode(raw)
	return nil
}

func (s *Store) onChanged() {
	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()
	if err := s.Reload(ctx); err != nil {
		glog.Warningf("session: keeping cached flags: %v", err)
	}
}

// Close stops following SessionChanged.
func (s *Store) Close() {
	s.sub.Release()
}

// Get returns the current value of f.
func (s *Store) Get(f Flag) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Get(f)
}

// State returns a snapshot of every flag.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Set writes f, persists the state and broadcasts the change. Subscribers run
// before Set returns.
func (s *Store) Set(ctx context.Context, f Flag, v bool) error {
	s.mu.Lock()
	next := s.state
	if err := next.set(f, v); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.storage.Put(ctx, f, v); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("session: save: %w", err)
	}
	s.state = next
	s.mu.Unlock()

	glog.Infof("session: %s=%v", f, v)
	s.bus.Publish(bus.SessionChanged)
	return nil
}

// Clear resets f, as done on logout.
func (s *Store) Clear(ctx context.Context, f Flag) error {
	return s.Set(ctx, f, false)
}
