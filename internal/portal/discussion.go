package portal

import (
	"sync"

	"github.com/google/uuid"

	"campuslink/internal/model"
	"campuslink/internal/session"
	"campuslink/internal/view"
)

// Discussion categories.
var Categories = []string{"academic", "career", "events", "general"}

// Sort orders for the forum.
const (
	SortRecent  = "recent"
	SortReplies = "replies"
)

func starterTopics() []model.Topic {
	return []model.Topic{
		{
			ID:       "1",
			Title:    "Best study techniques for finals",
			Category: "academic",
			Content:  "Hi everyone! I'm looking for effective study techniques that have worked for you during finals season...",
			Author:   "John Doe",
			Replies:  12,
			Time:     "2 hours ago",
		},
		{
			ID:       "2",
			Title:    "Internship opportunities in tech",
			Category: "career",
			Content:  "Does anyone know of good internship opportunities in the tech field for this summer?",
			Author:   "Jane Smith",
			Replies:  8,
			Time:     "4 hours ago",
		},
		{
			ID:       "3",
			Title:    "Campus events this weekend",
			Category: "events",
			Content:  "What events are happening on campus this weekend? Looking for something fun to do!",
			Author:   "Mike Johnson",
			Replies:  15,
			Time:     "6 hours ago",
		},
	}
}

// NewTopic is the forum post form.
type NewTopic struct {
	Title    string `json:"title" validate:"notblank"`
	Category string `json:"category" validate:"oneof=academic career events general"`
	Content  string `json:"content" validate:"notblank"`
}

var topicMessages = messages{
	"title.*":    "Title is required",
	"category.*": "Choose a category",
	"content.*":  "Content is required",
}

// Discussion is the in-process forum. Topics are never sent to the store.
type Discussion struct {
	session *session.Store

	mu     sync.RWMutex
	topics []model.Topic
}

// NewDiscussion starts with the starter topics.
func NewDiscussion(s *session.Store) *Discussion {
	return &Discussion{session: s, topics: starterTopics()}
}

// Post adds a topic at the top. Only registered students may post.
func (d *Discussion) Post(in NewTopic) (model.Topic, error) {
	if !d.session.Get(session.Registered) {
		return model.Topic{}, ErrLoginRequired
	}
	if err := check(in, topicMessages); err != nil {
		return model.Topic{}, err
	}
	t := model.Topic{
		ID:       uuid.NewString(),
		Title:    in.Title,
		Category: in.Category,
		Content:  in.Content,
		Author:   "You",
		Replies:  0,
		Time:     "Just now",
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.topics = append([]model.Topic{t}, d.topics...)
	return t, nil
}

// Render searches title, content and author, filters by category and sorts
// by recency (stored order) or reply count.
func (d *Discussion) Render(q, category, sortBy string) view.Page[model.Topic] {
	d.mu.RLock()
	topics := d.topics
	d.mu.RUnlock()

	query := view.Query[model.Topic]{
		Text: q,
		Fields: []func(model.Topic) string{
			func(t model.Topic) string { return t.Title },
			func(t model.Topic) string { return t.Content },
			func(t model.Topic) string { return t.Author },
		},
		Category:   category,
		CategoryOf: func(t model.Topic) string { return t.Category },
	}
	if sortBy == SortReplies {
		query.SortKey = func(t model.Topic) float64 { return float64(t.Replies) }
	}
	return view.NewPage(view.Apply(topics, query), "No discussions match your filters.")
}
