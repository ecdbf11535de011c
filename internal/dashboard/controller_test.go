package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/schedmate/internal/domain/view"
	"github.com/BruksfildServices01/schedmate/internal/remote"
)

func TestStartWithoutSessionLoadsNothing(t *testing.T) {
	h := newHarness(t)
	ctrl := h.controller()

	err := ctrl.Start(context.Background(), "no-such-token", "#clients")
	assert.ErrorIs(t, err, remote.ErrNoSession)

	s := ctrl.State()
	assert.Nil(t, s.Identity)
	assert.False(t, s.ClientsLoaded)
	assert.False(t, s.BookingsLoaded)
	assert.False(t, s.Settings.Loaded)
	assert.Zero(t, h.clients.selectCount())
	assert.Zero(t, h.bookings.selectCount())
}

func TestStartRunsInitialLoads(t *testing.T) {
	h := newHarness(t)
	h.seedClient(t, 1, "Jane", "jane@x.test", "")
	h.seedBooking(t, 1, "Jane", "Deep clean", today, "09:00")

	ctrl := h.started(t, ownerToken, "#clients")
	s := ctrl.State()

	require.NotNil(t, s.Identity)
	assert.Equal(t, uint(1), s.Identity.UserID)
	assert.Equal(t, view.Clients, s.View)
	assert.Len(t, s.Clients, 1)
	assert.Len(t, s.Bookings, 1)
	assert.Equal(t, today, s.BookingsDate)
	assert.True(t, s.Settings.Loaded)
}

func TestStartKeepsGoingWhenOneLoadFails(t *testing.T) {
	h := newHarness(t)
	h.seedBooking(t, 1, "Jane", "", today, "09:00")
	h.clients.failSelect(errBoom)

	ctrl := h.started(t, ownerToken, "")
	s := ctrl.State()

	assert.False(t, s.ClientsLoaded)
	assert.True(t, s.BookingsLoaded)
	assert.Len(t, s.Bookings, 1)
	assert.Equal(t, view.Today, s.View)
}

func TestDispatchNavigation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	ctrl := h.started(t, ownerToken, "")

	write, err := ctrl.Dispatch(ctx, Event{Type: EventNav, View: "settings"})
	require.NoError(t, err)
	assert.Equal(t, "settings", write)
	assert.Equal(t, view.Settings, ctrl.State().View)

	write, err = ctrl.Dispatch(ctx, Event{Type: EventNav, View: "settings"})
	require.NoError(t, err)
	assert.Empty(t, write, "same fragment is not rewritten")

	write, err = ctrl.Dispatch(ctx, Event{Type: EventFragment, Fragment: "#clients"})
	require.NoError(t, err)
	assert.Empty(t, write, "fragment changes never rewrite")
	assert.Equal(t, view.Clients, ctrl.State().View)
	assert.Equal(t, "clients", ctrl.State().Fragment)

	_, err = ctrl.Dispatch(ctx, Event{Type: EventFragment, Fragment: "#bogus"})
	require.NoError(t, err)
	assert.Equal(t, view.Today, ctrl.State().View)

	_, err = ctrl.Dispatch(ctx, Event{Type: "explode"})
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestRenderShowsExactlyOnePanel(t *testing.T) {
	h := newHarness(t)
	ctrl := h.started(t, ownerToken, "#settings")

	page := ctrl.Render()
	assert.Equal(t, "Workspace settings", page.Title)
	assert.Equal(t, "owner@sparkle.test", page.UserEmail)

	visible, selected := 0, 0
	for _, p := range page.Panels {
		if p.Visible {
			visible++
			assert.Equal(t, view.Settings, p.View)
		}
	}
	for _, n := range page.Nav {
		if n.Selected {
			selected++
		}
	}
	assert.Equal(t, 1, visible)
	assert.Equal(t, 1, selected)
}

func TestAppStateNotifiesSubscribers(t *testing.T) {
	app := NewAppState()

	var got []view.View
	app.Subscribe(TopicView, func(_ context.Context, s State) {
		got = append(got, s.View)
	})

	app.Update(context.Background(), TopicView, func(s *State) { s.View = view.Clients })
	app.Update(context.Background(), TopicClients, func(s *State) { s.View = view.Settings })
	app.Publish(context.Background(), TopicView)

	assert.Equal(t, []view.View{view.Clients, view.Settings}, got)
}

func TestReloadTakesViewFromFragment(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	ctrl := h.started(t, ownerToken, "#settings")
	require.Equal(t, view.Settings, ctrl.State().View)

	require.NoError(t, ctrl.Reload(ctx, "#clients"))
	assert.Equal(t, view.Clients, ctrl.State().View)
	assert.Equal(t, "clients", ctrl.State().Fragment)

	require.NoError(t, ctrl.Reload(ctx, ""))
	assert.Equal(t, view.Today, ctrl.State().View)
}

func TestReloadWithoutSession(t *testing.T) {
	h := newHarness(t)
	err := h.controller().Reload(context.Background(), "")

	merr, ok := AsMutationError(err)
	require.True(t, ok)
	assert.Equal(t, KindUnauthenticated, merr.Kind)
}
