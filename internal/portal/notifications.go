package portal

import (
	"context"
	"sync"
	"time"

	"campuslink/internal/bus"
	"campuslink/internal/model"
	"campuslink/internal/remote"
	"campuslink/internal/resource"
	"campuslink/internal/view"
)

// Notifications is the public notification feed. Read and dismissed marks
// are kept in this process only and survive every poll.
type Notifications struct {
	*synced[[]model.Notification]

	mu        sync.Mutex
	read      map[string]bool
	dismissed map[string]bool
}

// NotificationsView is one render of the feed.
type NotificationsView struct {
	Loaded bool                          `json:"loaded"`
	Unread int                           `json:"unread"`
	Items  view.Page[model.Notification] `json:"items"`
}

// NewNotifications creates the feed. Call Mount to start polling.
func NewNotifications(c *remote.Client, b bus.Bus, interval time.Duration) *Notifications {
	load := func(ctx context.Context) ([]model.Notification, error) {
		return remote.ListOf[model.Notification](ctx, c, model.CollectionNotifications, nil)
	}
	opts := resource.Options{
		Key:        "notifications",
		Interval:   interval,
		Invalidate: []bus.Topic{bus.DataChanged},
	}
	return &Notifications{
		synced:    newSynced(b, opts, load),
		read:      map[string]bool{},
		dismissed: map[string]bool{},
	}
}

// visible returns the fetched notifications with the local overlay applied.
func (n *Notifications) visible() ([]model.Notification, bool) {
	items, loaded := n.get()
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.Notification, 0, len(items))
	for _, it := range items {
		if n.dismissed[it.ID] {
			continue
		}
		if n.read[it.ID] {
			it.Read = true
		}
		out = append(out, it)
	}
	return out, loaded
}

// Render returns the visible notifications and the unread count.
func (n *Notifications) Render() NotificationsView {
	items, loaded := n.visible()
	return NotificationsView{
		Loaded: loaded,
		Unread: unread(items),
		Items:  view.NewPage(items, "No notifications"),
	}
}

// UnreadCount is the number of visible notifications not yet read.
func (n *Notifications) UnreadCount() int {
	items, _ := n.visible()
	return unread(items)
}

func unread(items []model.Notification) int {
	c := 0
	for _, it := range items {
		if !it.Read {
			c++
		}
	}
	return c
}

// MarkRead marks one notification as read.
func (n *Notifications) MarkRead(id string) error {
	if !n.known(id) {
		return ErrNotFound
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.read[id] = true
	return nil
}

// MarkAllRead marks every currently fetched notification as read.
func (n *Notifications) MarkAllRead() {
	items, _ := n.get()
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, it := range items {
		n.read[it.ID] = true
	}
}

// Dismiss hides a notification for this session. The store is not touched.
func (n *Notifications) Dismiss(id string) error {
	if !n.known(id) {
		return ErrNotFound
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dismissed[id] = true
	return nil
}

func (n *Notifications) known(id string) bool {
	items, _ := n.get()
	for _, it := range items {
		if it.ID == id {
			return true
		}
	}
	return false
}
