package portal

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuslink/internal/bus"
	"campuslink/internal/collection"
	"campuslink/internal/model"
	"campuslink/internal/session"
)

func TestNotificationOverlaySurvivesPolls(t *testing.T) {
	e := newEnv(t)
	feed := e.app.Notifications
	assert.Eventually(t, func() bool { return feed.Render().Loaded }, 2*time.Second, 10*time.Millisecond)

	e.seed(t, model.CollectionNotifications,
		collection.Record{"id": "n1", "title": "Welcome", "message": "hi", "type": "info", "time": "just now", "read": false},
		collection.Record{"id": "n2", "title": "Exam", "message": "Room 4", "type": "warning", "time": "just now", "read": false},
		collection.Record{"id": "n3", "title": "Old", "message": "seen", "type": "success", "time": "yesterday", "read": true},
	)
	feed.Refresh()
	assert.Eventually(t, func() bool { return len(feed.Render().Items.Items) == 3 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, feed.UnreadCount())

	require.NoError(t, feed.MarkRead("n1"))
	assert.Equal(t, 1, feed.UnreadCount())
	require.NoError(t, feed.Dismiss("n2"))
	assert.Equal(t, 0, feed.UnreadCount())
	assert.ErrorIs(t, feed.MarkRead("missing"), ErrNotFound)
	assert.ErrorIs(t, feed.Dismiss("missing"), ErrNotFound)

	// a new notification arrives; local marks stay applied
	e.seed(t, model.CollectionNotifications,
		collection.Record{"id": "n4", "title": "Fest", "message": "Friday", "type": "info", "time": "just now", "read": false})
	e.app.Bus.Publish(bus.DataChanged)
	assert.Eventually(t, func() bool { return feed.UnreadCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	v := feed.Render()
	ids := []string{}
	for _, n := range v.Items.Items {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"n1", "n3", "n4"}, ids)
	assert.True(t, v.Items.Items[0].Read)
	assert.Equal(t, 1, v.Unread)

	feed.MarkAllRead()
	assert.Zero(t, feed.UnreadCount())

	// read marks are never written back
	stored, err := e.store.Get(context.Background(), model.CollectionNotifications, "n1")
	require.NoError(t, err)
	assert.Equal(t, false, stored["read"])
}

func TestNotificationsEmpty(t *testing.T) {
	e := newEnv(t)
	assert.Eventually(t, func() bool { return e.app.Notifications.Render().Loaded }, 2*time.Second, 10*time.Millisecond)
	v := e.app.Notifications.Render()
	assert.True(t, v.Items.NoneFound)
	assert.Equal(t, "No notifications", v.Items.Message)
}

func TestDiscussion(t *testing.T) {
	b := bus.NewLocal()
	ctx := context.Background()
	sess, err := session.Open(ctx, session.NewFileStorage(filepath.Join(t.TempDir(), "s.json")), b)
	require.NoError(t, err)
	d := NewDiscussion(sess)

	page := d.Render("", "", SortRecent)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "Best study techniques for finals", page.Items[0].Title)

	page = d.Render("", "all", SortReplies)
	assert.Equal(t, []int{15, 12, 8}, []int{page.Items[0].Replies, page.Items[1].Replies, page.Items[2].Replies})

	page = d.Render("jane", "", SortRecent)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "career", page.Items[0].Category)

	page = d.Render("finals", "career", SortRecent)
	assert.True(t, page.NoneFound)
	assert.Equal(t, "No discussions match your filters.", page.Message)

	_, err = d.Post(NewTopic{Title: "Hi", Category: "general", Content: "hello"})
	assert.ErrorIs(t, err, ErrLoginRequired)

	require.NoError(t, sess.Set(ctx, session.Registered, true))
	_, err = d.Post(NewTopic{Title: "Hi", Category: "sports", Content: ""})
	var v *ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, map[string]string{"category": "Choose a category", "content": "Content is required"}, v.Fields)

	topic, err := d.Post(NewTopic{Title: "Study group", Category: "academic", Content: "Anyone for calculus?"})
	require.NoError(t, err)
	assert.Equal(t, "You", topic.Author)
	assert.Equal(t, "Just now", topic.Time)
	assert.Zero(t, topic.Replies)

	page = d.Render("", "academic", SortRecent)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Study group", page.Items[0].Title)
}

type countingContent struct {
	mounts, unmounts int
}

func (c *countingContent) Mount()   { c.mounts++ }
func (c *countingContent) Unmount() { c.unmounts++ }

func TestGateFollowsConcurrentWrites(t *testing.T) {
	b := bus.NewLocal()
	ctx := context.Background()
	sess, err := session.Open(ctx, session.NewFileStorage(filepath.Join(t.TempDir(), "s.json")), b)
	require.NoError(t, err)

	content := &countingContent{}
	g := NewGate("race", session.Registered, "locked", sess, b, content)
	defer g.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(on bool) {
			defer wg.Done()
			assert.NoError(t, sess.Set(ctx, session.Registered, on))
		}(i%2 == 0)
	}
	wg.Wait()

	assert.Equal(t, sess.Get(session.Registered), g.Authorized())
	assert.LessOrEqual(t, content.mounts-content.unmounts, 1)
}

func TestGateTransitions(t *testing.T) {
	b := bus.NewLocal()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "s.json")
	sess, err := session.Open(ctx, session.NewFileStorage(path), b)
	require.NoError(t, err)

	content := &countingContent{}
	g := NewGate("test", session.AdminAuthed, "locked", sess, b, content)
	assert.False(t, g.Authorized())
	assert.Zero(t, content.mounts)

	require.NoError(t, sess.Set(ctx, session.Registered, true))
	assert.Zero(t, content.mounts)

	require.NoError(t, sess.Set(ctx, session.AdminAuthed, true))
	require.NoError(t, sess.Set(ctx, session.AdminAuthed, true))
	assert.True(t, g.Authorized())
	assert.Equal(t, 1, content.mounts)

	require.NoError(t, sess.Clear(ctx, session.AdminAuthed))
	assert.False(t, g.Authorized())
	assert.Equal(t, 1, content.unmounts)

	// a gate built on an already-authorized session starts unlocked
	require.NoError(t, sess.Set(ctx, session.AdminAuthed, true))
	reopened, err := session.Open(ctx, session.NewFileStorage(path), bus.NewLocal())
	require.NoError(t, err)
	other := &countingContent{}
	g2 := NewGate("test2", session.AdminAuthed, "locked", reopened, bus.NewLocal(), other)
	assert.True(t, g2.Authorized())
	assert.Equal(t, 1, other.mounts)

	g.Close()
	g2.Close()
	assert.Equal(t, 1, other.unmounts)
	require.NoError(t, sess.Clear(ctx, session.AdminAuthed))
	assert.Equal(t, 2, content.unmounts)
}
