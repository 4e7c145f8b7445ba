// Package view holds the pure filter and sort step shared by every list in
// the portal.
package view

import (
	"sort"
	"strings"
)

// Query describes how a list is narrowed and ordered.
type Query[T any] struct {
	// Text is matched case-insensitively against every field in Fields.
	Text   string
	Fields []func(T) string

	// Category is compared exactly against CategoryOf. "" and "all" match everything.
	Category   string
	CategoryOf func(T) string

	// SortKey orders the result descending. Nil keeps input order.
	SortKey func(T) float64
}

// All disables the category filter.
const All = "all"

// Apply returns the matching items in a new slice; items is left untouched.
func Apply[T any](items []T, q Query[T]) []T {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !matchesCategory(it, q) || !matchesText(it, text, q.Fields) {
			continue
		}
		out = append(out, it)
	}
	if q.SortKey != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return q.SortKey(out[i]) > q.SortKey(out[j])
		})
	}
	return out
}

func matchesCategory[T any](it T, q Query[T]) bool {
	if q.Category == "" || q.Category == All || q.CategoryOf == nil {
		return true
	}
	return q.CategoryOf(it) == q.Category
}

func matchesText[T any](it T, text string, fields []func(T) string) bool {
	if text == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f(it)), text) {
			return true
		}
	}
	return false
}

// Page is a rendered list with its empty state made explicit.
type Page[T any] struct {
	Items     []T    `json:"items"`
	NoneFound bool   `json:"noneFound"`
	Message   string `json:"message,omitempty"`
}

// NewPage wraps items, setting empty as the message when nothing is left.
func NewPage[T any](items []T, empty string) Page[T] {
	if items == nil {
		items = []T{}
	}
	p := Page[T]{Items: items}
	if len(items) == 0 {
		p.NoneFound = true
		p.Message = empty
	}
	return p
}
