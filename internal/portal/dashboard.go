package portal

import (
	"context"
	"time"

	"campuslink/internal/bus"
	"campuslink/internal/model"
	"campuslink/internal/remote"
	"campuslink/internal/resource"
	"campuslink/internal/view"
)

type dashboardData = resource.Pair[[]model.Event, []model.Update]

// Dashboard shows events and updates to registered students.
type Dashboard struct {
	*synced[dashboardData]
}

// DashboardView is one render of the dashboard.
type DashboardView struct {
	Loaded  bool                    `json:"loaded"`
	Events  view.Page[model.Event]  `json:"events"`
	Updates view.Page[model.Update] `json:"updates"`
}

// NewDashboard fetches events and updates together so a render never mixes
// two poll cycles.
func NewDashboard(c *remote.Client, b bus.Bus, interval time.Duration) *Dashboard {
	load := resource.All2(
		func(ctx context.Context) ([]model.Event, error) {
			return remote.ListOf[model.Event](ctx, c, model.CollectionEvents, nil)
		},
		func(ctx context.Context) ([]model.Update, error) {
			return remote.ListOf[model.Update](ctx, c, model.CollectionUpdates, nil)
		},
	)
	opts := resource.Options{
		Key:        "dashboard",
		Interval:   interval,
		Invalidate: []bus.Topic{bus.DataChanged},
	}
	return &Dashboard{synced: newSynced(b, opts, load)}
}

// Render filters both lists by title and description.
func (d *Dashboard) Render(q string) DashboardView {
	data, loaded := d.get()
	events := view.Apply(data.First, view.Query[model.Event]{
		Text: q,
		Fields: []func(model.Event) string{
			func(e model.Event) string { return e.Title },
			func(e model.Event) string { return e.Description },
		},
	})
	updates := view.Apply(data.Second, view.Query[model.Update]{
		Text: q,
		Fields: []func(model.Update) string{
			func(u model.Update) string { return u.Title },
			model.Update.Body,
		},
	})
	return DashboardView{
		Loaded:  loaded,
		Events:  view.NewPage(events, "No events found."),
		Updates: view.NewPage(updates, "No updates found."),
	}
}
