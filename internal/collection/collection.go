// Package collection stores schemaless JSON records grouped into named
// collections. It backs the store server.
package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrUnknownCollection is returned for a collection that is not served.
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateID is returned when a create reuses an existing id.
	ErrDuplicateID = errors.New("duplicate id")
)

// Record is one JSON object. The "id" key is always a string once stored.
type Record map[string]any

// ID returns the record id or "".
func (r Record) ID() string {
	if v, ok := r["id"]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

// Backend persists records. Lists keep insertion order.
type Backend interface {
	List(ctx context.Context, coll string, filter map[string]string) ([]Record, error)
	Get(ctx context.Context, coll, id string) (Record, error)
	Create(ctx context.Context, coll string, rec Record) (Record, error)
	Replace(ctx context.Context, coll, id string, rec Record) (Record, error)
	Delete(ctx context.Context, coll, id string) error
}

// Matches reports whether every filter value equals the printed field value.
func Matches(rec Record, filter map[string]string) bool {
	for k, want := range filter {
		v, ok := rec[k]
		if !ok || v == nil || fmt.Sprint(v) != want {
			return false
		}
	}
	return true
}

// forCreate copies rec and assigns a fresh id when it has none.
func forCreate(rec Record) (Record, error) {
	out, err := clone(rec)
	if err != nil {
		return nil, err
	}
	if id := out.ID(); id != "" {
		out["id"] = id
	} else {
		out["id"] = uuid.NewString()
	}
	return out, nil
}

// forReplace copies rec and pins it to id.
func forReplace(id string, rec Record) (Record, error) {
	out, err := clone(rec)
	if err != nil {
		return nil, err
	}
	out["id"] = id
	return out, nil
}

// clone normalises rec through JSON so every backend hands back the same
// value types.
func clone(rec Record) (Record, error) {
	if rec == nil {
		return Record{}, nil
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return decode(b)
}

func decode(b []byte) (Record, error) {
	out := Record{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return out, nil
}

// Restricted only serves the named collections and reports
// ErrUnknownCollection for anything else.
type Restricted struct {
	Backend
	allowed map[string]struct{}
}

// Restrict wraps b. An empty names list allows every collection.
func Restrict(b Backend, names []string) *Restricted {
	r := &Restricted{Backend: b, allowed: map[string]struct{}{}}
	for _, n := range names {
		r.allowed[n] = struct{}{}
	}
	return r
}

// Allowed reports whether coll is served.
func (r *Restricted) Allowed(coll string) bool {
	if len(r.allowed) == 0 {
		return coll != ""
	}
	_, ok := r.allowed[coll]
	return ok
}

func (r *Restricted) check(coll string) error {
	if !r.Allowed(coll) {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, coll)
	}
	return nil
}

func (r *Restricted) List(ctx context.Context, coll string, filter map[string]string) ([]Record, error) {
	if err := r.check(coll); err != nil {
		return nil, err
	}
	return r.Backend.List(ctx, coll, filter)
}

func (r *Restricted) Get(ctx context.Context, coll, id string) (Record, error) {
	if err := r.check(coll); err != nil {
		return nil, err
	}
	return r.Backend.Get(ctx, coll, id)
}

func (r *Restricted) Create(ctx context.Context, coll string, rec Record) (Record, error) {
	if err := r.check(coll); err != nil {
		return nil, err
	}
	return r.Backend.Create(ctx, coll, rec)
}

func (r *Restricted) Replace(ctx context.Context, coll, id string, rec Record) (Record, error) {
	if err := r.check(coll); err != nil {
		return nil, err
	}
	return r.Backend.Replace(ctx, coll, id, rec)
}

func (r *Restricted) Delete(ctx context.Context, coll, id string) error {
	if err := r.check(coll); err != nil {
		return err
	}
	return r.Backend.Delete(ctx, coll, id)
}
