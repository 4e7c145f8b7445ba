// Package portal implements the student portal views: the dashboard, the
// notification feed, the discussion forum, sign-up and the admin console.
package portal

import (
	"time"

	"campuslink/internal/bus"
	"campuslink/internal/remote"
	"campuslink/internal/session"
)

// Placeholders shown by locked areas.
const (
	DashboardPlaceholder = "Please login to view events and updates."
	AdminPlaceholder     = "Admin login required."
)

// Options tunes the portal.
type Options struct {
	PollInterval  time.Duration
	AdminUsername string
	AdminPassword string
}

// App holds every view of one portal process.
type App struct {
	Bus     bus.Bus
	Session *session.Store

	Accounts      *Accounts
	Dashboard     *Dashboard
	Notifications *Notifications
	Discussion    *Discussion

	AdminEvents        *AdminEvents
	AdminNotifications *AdminNotifications
	AdminUpdates       *AdminUpdates

	DashboardGate *Gate
	AdminGate     *Gate
}

// group mounts several views together.
type group []Content

func (g group) Mount() {
	for _, c := range g {
		c.Mount()
	}
}

func (g group) Unmount() {
	for _, c := range g {
		c.Unmount()
	}
}

// New builds the views and mounts whatever the current session allows.
// The notification feed is public and always mounted.
func New(c *remote.Client, s *session.Store, b bus.Bus, opts Options) *App {
	a := &App{
		Bus:                b,
		Session:            s,
		Accounts:           NewAccounts(c, s, opts.AdminUsername, opts.AdminPassword),
		Dashboard:          NewDashboard(c, b, opts.PollInterval),
		Notifications:      NewNotifications(c, b, opts.PollInterval),
		Discussion:         NewDiscussion(s),
		AdminEvents:        NewAdminEvents(c, b, s),
		AdminNotifications: NewAdminNotifications(c, b, s),
		AdminUpdates:       NewAdminUpdates(c, b, s),
	}
	a.Notifications.Mount()
	a.DashboardGate = NewGate("dashboard", session.Registered, DashboardPlaceholder, s, b, a.Dashboard)
	a.AdminGate = NewGate("admin", session.AdminAuthed, AdminPlaceholder, s, b,
		group{a.AdminEvents, a.AdminNotifications, a.AdminUpdates})
	return a
}

// Close stops every subscription.
func (a *App) Close() {
	a.DashboardGate.Close()
	a.AdminGate.Close()
	a.Notifications.Unmount()
}
