package portal

import (
	"sync"

	"github.com/golang/glog"

	"campuslink/internal/bus"
	"campuslink/internal/metrics"
	"campuslink/internal/session"
)

// Content is whatever a gate shows once unlocked. Mount starts its data
// subscriptions and Unmount stops them.
type Content interface {
	Mount()
	Unmount()
}

// Gate guards one protected area with a session flag. While the flag is
// false the area shows Placeholder and fetches nothing.
type Gate struct {
	name        string
	flag        session.Flag
	placeholder string
	session     *session.Store
	content     Content

	mu         sync.Mutex
	authorized bool
	sub        *bus.Subscription
}

// NewGate derives the initial state from the session and follows every
// SessionChanged signal afterwards.
func NewGate(name string, flag session.Flag, placeholder string, s *session.Store, b bus.Bus, content Content) *Gate {
	g := &Gate{
		name:        name,
		flag:        flag,
		placeholder: placeholder,
		session:     s,
		content:     content,
	}
	metrics.GateAuthorized.WithLabelValues(name).Set(0)
	g.sync()
	g.sub = b.Subscribe(bus.SessionChanged, g.sync)
	return g
}

// Authorized reports whether the area is unlocked.
func (g *Gate) Authorized() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authorized
}

// Placeholder is the fixed message shown while locked.
func (g *Gate) Placeholder() string { return g.placeholder }

// Name identifies the gate in logs and metrics.
func (g *Gate) Name() string { return g.name }

// Close unmounts the content and stops following the session.
func (g *Gate) Close() {
	g.sub.Release()
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.authorized {
		g.authorized = false
		g.content.Unmount()
		metrics.GateAuthorized.WithLabelValues(g.name).Set(0)
	}
}

func (g *Gate) sync() {
	g.mu.Lock()
	defer g.mu.Unlock()
	want := g.session.Get(g.flag)
	if want == g.authorized {
		return
	}
	g.authorized = want
	if want {
		g.content.Mount()
		metrics.GateAuthorized.WithLabelValues(g.name).Set(1)
		glog.Infof("gate %s: authorized", g.name)
		return
	}
	g.content.Unmount()
	metrics.GateAuthorized.WithLabelValues(g.name).Set(0)
	glog.Infof("gate %s: locked", g.name)
}
