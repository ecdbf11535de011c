// Package dashboard holds the per-session dashboard: the app state, the
// session guard, the view router and the client, settings and booking
// panels. Handlers forward browser events here and render the result.
package dashboard

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BruksfildServices01/schedmate/internal/audit"
	"github.com/BruksfildServices01/schedmate/internal/domain/booking"
	"github.com/BruksfildServices01/schedmate/internal/domain/view"
	"github.com/BruksfildServices01/schedmate/internal/remote"
	"github.com/BruksfildServices01/schedmate/internal/timezone"
)

// Auditor receives one event per successful mutation.
type Auditor interface {
	Dispatch(ev audit.Event)
}

// LogoStore persists an uploaded logo and returns its public URL.
type LogoStore interface {
	StoreLogo(ctx context.Context, ownerID uint, r io.Reader) (string, error)
}

type Options struct {
	Catalog  booking.Catalog
	Timezone string
	Logos    LogoStore
	Audit    Auditor
	Log      *zap.Logger
	Now      func() time.Time
}

type Controller struct {
	app   *AppState
	store remote.Store

	Clients  *ClientPanel
	Settings *SettingsPanel
	Bookings *BookingPanel

	catalog booking.Catalog
	log     *zap.Logger
	now     func() time.Time
}

type noopAuditor struct{}

func (noopAuditor) Dispatch(audit.Event) {}

func NewController(store remote.Store, opts Options) *Controller {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Audit == nil {
		opts.Audit = noopAuditor{}
	}
	if opts.Timezone == "" {
		opts.Timezone = timezone.DefaultTimezone
	}
	if len(opts.Catalog.Services) == 0 {
		opts.Catalog = booking.DefaultCatalog()
	}

	app := NewAppState()
	c := &Controller{
		app:     app,
		store:   store,
		catalog: opts.Catalog,
		log:     opts.Log,
		now:     opts.Now,
	}

	c.Clients = &ClientPanel{
		app:     app,
		clients: store.Clients,
		audit:   opts.Audit,
		log:     opts.Log.Named("clients"),
	}
	c.Settings = &SettingsPanel{
		app:      app,
		profiles: store.Profiles,
		logos:    opts.Logos,
		audit:    opts.Audit,
		log:      opts.Log.Named("settings"),
		now:      opts.Now,
	}
	c.Bookings = &BookingPanel{
		app:      app,
		bookings: store.Bookings,
		catalog:  opts.Catalog,
		tz:       opts.Timezone,
		audit:    opts.Audit,
		log:      opts.Log.Named("bookings"),
		now:      opts.Now,
	}

	// Client mutations refresh the client list and the booking picker.
	app.Subscribe(TopicClientsChanged, func(ctx context.Context, _ State) {
		_ = c.Bookings.List(ctx)
	})

	return c
}

func (c *Controller) State() State {
	return c.app.Snapshot()
}

func (c *Controller) Catalog() booking.Catalog {
	return c.catalog
}

// Render builds the page view model from the current state.
func (c *Controller) Render() Page {
	return Render(c.app.Snapshot(), c.catalog, c.now())
}

// ===============================
// Session guard
// ===============================

// Start checks the session behind token. Without one it returns
// remote.ErrNoSession and touches nothing else. With one it records the
// identity, picks the view from fragment and runs the initial loads.
func (c *Controller) Start(ctx context.Context, token, fragment string) error {
	session, err := c.store.Auth.GetSession(ctx, token)
	if err != nil {
		if !errors.Is(err, remote.ErrNoSession) {
			c.log.Error("session lookup failed", zap.Error(err))
		}
		return remote.ErrNoSession
	}

	c.app.Update(ctx, TopicSession, func(s *State) {
		s.Identity = &Identity{
			SessionID: session.ID,
			UserID:    session.UserID,
			Email:     session.Email,
			ExpiresAt: session.ExpiresAt,
		}
		s.View = view.FromFragment(fragment)
		s.Fragment = strings.TrimPrefix(fragment, "#")
	})

	c.log.Info("dashboard started",
		zap.Uint("owner_id", session.UserID),
		zap.String("view", string(view.FromFragment(fragment))),
	)

	return c.load(ctx)
}

// Reload is a full dashboard load for a session that already has a
// controller: the view comes from fragment again, open modals close and
// the initial loads run again.
func (c *Controller) Reload(ctx context.Context, fragment string) error {
	if _, ok := c.app.Snapshot().OwnerID(); !ok {
		return errNoIdentity
	}

	c.app.Update(ctx, TopicView, func(s *State) {
		s.View = view.FromFragment(fragment)
		s.Fragment = strings.TrimPrefix(fragment, "#")
		s.ClientForm = ClientForm{}
		s.BookingForm = BookingForm{}
		s.ClientsError = nil
		s.Settings.Error = nil
	})

	return c.load(ctx)
}

// load runs the initial loads concurrently. Failures are logged by the
// panels and leave the previous data in place.
func (c *Controller) load(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { _ = c.Clients.List(ctx); return nil })
	g.Go(func() error { _ = c.Settings.Load(ctx); return nil })
	g.Go(func() error { _ = c.Bookings.List(ctx); return nil })
	return g.Wait()
}

// Expired reports whether the recorded session is past its expiry.
func (c *Controller) Expired(now time.Time) bool {
	s := c.app.Snapshot()
	return s.Identity == nil || !now.Before(s.Identity.ExpiresAt)
}

// ===============================
// UI events
// ===============================

type EventType string

const (
	EventNav          EventType = "nav"
	EventFragment     EventType = "fragment"
	EventOpenClient   EventType = "client.open"
	EventCloseClient  EventType = "client.close"
	EventOpenBooking  EventType = "booking.open"
	EventCloseBooking EventType = "booking.close"
)

type Event struct {
	Type     EventType `json:"type"`
	View     string    `json:"view,omitempty"`
	Fragment string    `json:"fragment,omitempty"`
	ID       uint      `json:"id,omitempty"`
}

var ErrUnknownEvent = errors.New("dashboard: unknown event")

// Dispatch applies a UI event that does not write to the remote store.
// The returned string is the fragment the browser must write, if any.
func (c *Controller) Dispatch(ctx context.Context, ev Event) (string, error) {
	switch ev.Type {
	case EventNav:
		return c.navigate(ctx, view.Event{Kind: view.NavClick, View: view.View(ev.View)}), nil
	case EventFragment:
		return c.navigate(ctx, view.Event{Kind: view.FragmentChange, Fragment: ev.Fragment}), nil
	case EventOpenClient:
		return "", c.Clients.Open(ctx, ev.ID)
	case EventCloseClient:
		c.Clients.Close(ctx)
		return "", nil
	case EventOpenBooking:
		return "", c.Bookings.Open(ctx, ev.ID)
	case EventCloseBooking:
		c.Bookings.Close(ctx)
		return "", nil
	default:
		return "", ErrUnknownEvent
	}
}

func (c *Controller) navigate(ctx context.Context, ev view.Event) string {
	var write string
	c.app.Update(ctx, TopicView, func(s *State) {
		res := view.Transition(s.View, s.Fragment, ev)
		s.View = res.View
		switch {
		case res.WriteFragment != "":
			s.Fragment = res.WriteFragment
		case ev.Kind == view.FragmentChange:
			s.Fragment = strings.TrimPrefix(ev.Fragment, "#")
		}
		write = res.WriteFragment
	})
	return write
}
