package portal

import (
	"context"
	"strings"
	"time"

	"github.com/golang/glog"

	"campuslink/internal/bus"
	"campuslink/internal/model"
	"campuslink/internal/remote"
	"campuslink/internal/resource"
	"campuslink/internal/session"
	"campuslink/internal/view"
)

// adminList manages one collection from the admin console. Every write
// publishes bus.DataChanged so all views refresh.
type adminList[T any] struct {
	*synced[[]T]

	client  *remote.Client
	bus     bus.Bus
	session *session.Store
	coll    string
	fields  []func(T) string
	empty   string
}

func newAdminList[T any](c *remote.Client, b bus.Bus, s *session.Store, coll, empty string, fields ...func(T) string) *adminList[T] {
	load := func(ctx context.Context) ([]T, error) {
		return remote.ListOf[T](ctx, c, coll, nil)
	}
	opts := resource.Options{
		Key:        "admin-" + coll,
		Interval:   -1,
		Invalidate: []bus.Topic{bus.DataChanged},
	}
	return &adminList[T]{
		synced:  newSynced(b, opts, load),
		client:  c,
		bus:     b,
		session: s,
		coll:    coll,
		fields:  fields,
		empty:   empty,
	}
}

// Render searches the cached list.
func (a *adminList[T]) Render(q string) view.Page[T] {
	items, _ := a.get()
	return view.NewPage(view.Apply(items, view.Query[T]{Text: q, Fields: a.fields}), a.empty)
}

func (a *adminList[T]) authorize() error {
	if !a.session.Get(session.AdminAuthed) {
		return ErrAdminRequired
	}
	return nil
}

// create checks the fresh collection for a duplicate before writing.
func (a *adminList[T]) create(ctx context.Context, in T, same func(T) bool, dupMsg string) (T, error) {
	var zero T
	existing, err := remote.ListOf[T](ctx, a.client, a.coll, nil)
	if err != nil {
		return zero, err
	}
	for _, e := range existing {
		if same(e) {
			return zero, &DuplicateError{Message: dupMsg}
		}
	}
	out, err := remote.CreateOf(ctx, a.client, a.coll, in)
	if err != nil {
		return zero, err
	}
	a.changed("create")
	return out, nil
}

func (a *adminList[T]) replace(ctx context.Context, id string, in T) (T, error) {
	out, err := remote.UpdateOf(ctx, a.client, a.coll, id, in)
	if err != nil {
		var zero T
		return zero, err
	}
	a.changed("update")
	return out, nil
}

// Delete removes a record.
func (a *adminList[T]) Delete(ctx context.Context, id string) error {
	if err := a.authorize(); err != nil {
		return err
	}
	if err := a.client.Delete(ctx, a.coll, id); err != nil {
		return err
	}
	a.changed("delete")
	return nil
}

func (a *adminList[T]) changed(op string) {
	glog.Infof("admin %s %s", op, a.coll)
	a.bus.Publish(bus.DataChanged)
}

func key(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// EventForm is the admin event form.
type EventForm struct {
	Title       string `json:"title" validate:"notblank"`
	Description string `json:"description" validate:"notblank"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

var eventMessages = messages{
	"title.*":       "Title is required",
	"description.*": "Description is required",
}

// AdminEvents manages events.
type AdminEvents struct {
	*adminList[model.Event]
}

// NewAdminEvents searches title, description, date and time.
func NewAdminEvents(c *remote.Client, b bus.Bus, s *session.Store) *AdminEvents {
	return &AdminEvents{newAdminList(c, b, s, model.CollectionEvents, "No events",
		func(e model.Event) string { return e.Title },
		func(e model.Event) string { return e.Description },
		func(e model.Event) string { return e.Date },
		func(e model.Event) string { return e.Time },
	)}
}

// Create rejects an event with the same title, description and date.
func (a *AdminEvents) Create(ctx context.Context, in EventForm) (model.Event, error) {
	if err := a.authorize(); err != nil {
		return model.Event{}, err
	}
	if err := checkForm(in, eventMessages, "Title and Description are required"); err != nil {
		return model.Event{}, err
	}
	ev := model.Event{Title: in.Title, Description: in.Description, Date: in.Date, Time: in.Time}
	return a.create(ctx, ev, func(e model.Event) bool {
		return key(e.Title) == key(in.Title) &&
			key(e.Description) == key(in.Description) &&
			key(e.Date) == key(in.Date)
	}, "Duplicate event detected (same title, description, and date).")
}

// Update replaces an event.
func (a *AdminEvents) Update(ctx context.Context, id string, in EventForm) (model.Event, error) {
	if err := a.authorize(); err != nil {
		return model.Event{}, err
	}
	if err := checkForm(in, eventMessages, "Title and Description are required"); err != nil {
		return model.Event{}, err
	}
	return a.replace(ctx, id, model.Event{ID: id, Title: in.Title, Description: in.Description, Date: in.Date, Time: in.Time})
}

// NotificationForm is the admin notification form.
type NotificationForm struct {
	Title   string `json:"title" validate:"notblank"`
	Message string `json:"message" validate:"notblank"`
	Type    string `json:"type" validate:"omitempty,oneof=info warning success"`
}

var notificationMessages = messages{
	"title.*":   "Title is required",
	"message.*": "Message is required",
	"type.*":    "Unknown type",
}

func (f NotificationForm) kind() string {
	if f.Type == "" {
		return model.TypeInfo
	}
	return f.Type
}

// AdminNotifications manages notifications.
type AdminNotifications struct {
	*adminList[model.Notification]
}

// NewAdminNotifications searches title, message and type.
func NewAdminNotifications(c *remote.Client, b bus.Bus, s *session.Store) *AdminNotifications {
	return &AdminNotifications{newAdminList(c, b, s, model.CollectionNotifications, "No notifications",
		func(n model.Notification) string { return n.Title },
		func(n model.Notification) string { return n.Message },
		func(n model.Notification) string { return n.Type },
	)}
}

// Create posts an unread notification stamped "just now".
func (a *AdminNotifications) Create(ctx context.Context, in NotificationForm) (model.Notification, error) {
	if err := a.authorize(); err != nil {
		return model.Notification{}, err
	}
	if err := checkForm(in, notificationMessages, "Title and Message are required"); err != nil {
		return model.Notification{}, err
	}
	n := model.Notification{Title: in.Title, Message: in.Message, Type: in.kind(), Time: "just now", Read: false}
	return a.create(ctx, n, func(e model.Notification) bool {
		return key(e.Title) == key(in.Title) && key(e.Message) == key(in.Message)
	}, "Duplicate notification detected (same title and message).")
}

// Update replaces a notification, keeping its time.
func (a *AdminNotifications) Update(ctx context.Context, id string, in NotificationForm) (model.Notification, error) {
	if err := a.authorize(); err != nil {
		return model.Notification{}, err
	}
	if err := checkForm(in, notificationMessages, "Title and Message are required"); err != nil {
		return model.Notification{}, err
	}
	n := model.Notification{ID: id, Title: in.Title, Message: in.Message, Type: in.kind(), Time: "just now"}
	items, _ := a.get()
	for _, cur := range items {
		if cur.ID == id {
			n.Time, n.Read = cur.Time, cur.Read
		}
	}
	return a.replace(ctx, id, n)
}

// UpdateForm is the admin announcement form.
type UpdateForm struct {
	Title       string `json:"title" validate:"notblank"`
	Description string `json:"description" validate:"notblank"`
	Type        string `json:"type" validate:"omitempty,oneof=info warning success"`
	Time        string `json:"time"`
}

var updateMessages = messages{
	"title.*":       "Title is required",
	"description.*": "Description is required",
	"type.*":        "Unknown type",
}

// AdminUpdates manages announcements.
type AdminUpdates struct {
	*adminList[model.Update]
	now func() time.Time
}

// NewAdminUpdates searches title and body.
func NewAdminUpdates(c *remote.Client, b bus.Bus, s *session.Store) *AdminUpdates {
	return &AdminUpdates{
		adminList: newAdminList(c, b, s, model.CollectionUpdates, "No updates",
			func(u model.Update) string { return u.Title },
			model.Update.Body,
		),
		now: time.Now,
	}
}

func (a *AdminUpdates) build(id string, in UpdateForm) model.Update {
	u := model.Update{ID: id, Title: in.Title, Description: in.Description, Type: in.Type, Time: in.Time}
	if u.Type == "" {
		u.Type = model.TypeInfo
	}
	if u.Time == "" {
		u.Time = a.now().UTC().Format(time.RFC3339)
	}
	return u
}

// Create rejects an update with the same title and description.
func (a *AdminUpdates) Create(ctx context.Context, in UpdateForm) (model.Update, error) {
	if err := a.authorize(); err != nil {
		return model.Update{}, err
	}
	if err := checkForm(in, updateMessages, "Title and Description are required"); err != nil {
		return model.Update{}, err
	}
	return a.create(ctx, a.build("", in), func(e model.Update) bool {
		return key(e.Title) == key(in.Title) && key(e.Body()) == key(in.Description)
	}, "Duplicate update detected (same title and description).")
}

// Update replaces an announcement.
func (a *AdminUpdates) Update(ctx context.Context, id string, in UpdateForm) (model.Update, error) {
	if err := a.authorize(); err != nil {
		return model.Update{}, err
	}
	if err := checkForm(in, updateMessages, "Title and Description are required"); err != nil {
		return model.Update{}, err
	}
	return a.replace(ctx, id, a.build(id, in))
}
