package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/BruksfildServices01/schedmate/internal/domain/view"
	"github.com/BruksfildServices01/schedmate/internal/models"
)

type Identity struct {
	SessionID string
	UserID    uint
	Email     string
	ExpiresAt time.Time
}

type ClientForm struct {
	Open  bool
	ID    uint
	Name  string
	Email string
	Phone string
	Notes string
	Error *MutationError
}

type BookingForm struct {
	Open          bool
	ID            uint
	PickedClient  string
	ClientName    string
	Service       string
	CustomService string
	Date          string
	Time          string
	Notes         string
	Error         *MutationError
}

type SettingsForm struct {
	Loaded       bool
	BusinessName string
	ContactEmail string
	StartTime    string
	EndTime      string
	LogoURL      string

	Saving  bool
	SavedAt time.Time
	Error   *MutationError
}

// State is everything the dashboard renders from. Slices are replaced on
// reload and never modified in place, so a shallow copy is a snapshot.
type State struct {
	Identity *Identity

	View     view.View
	Fragment string

	Clients       []models.Client
	ClientsLoaded bool
	ClientsError  *MutationError

	Bookings       []models.Booking
	BookingsLoaded bool
	BookingsDate   string

	Settings    SettingsForm
	ClientForm  ClientForm
	BookingForm BookingForm
}

func (s State) OwnerID() (uint, bool) {
	if s.Identity == nil {
		return 0, false
	}
	return s.Identity.UserID, true
}

type Topic string

const (
	TopicSession  Topic = "session"
	TopicView     Topic = "view"
	TopicClients  Topic = "clients"
	TopicBookings Topic = "bookings"
	TopicSettings Topic = "settings"

	// TopicClientsChanged fires after a client mutation succeeded.
	TopicClientsChanged Topic = "clients.changed"
)

type Listener func(ctx context.Context, s State)

// AppState owns State and notifies listeners per topic. Listeners run on
// the caller's goroutine after the lock is released.
type AppState struct {
	mu        sync.Mutex
	state     State
	listeners map[Topic][]Listener
}

func NewAppState() *AppState {
	return &AppState{
		state:     State{View: view.Default},
		listeners: make(map[Topic][]Listener),
	}
}

func (a *AppState) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *AppState) Subscribe(topic Topic, l Listener) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners[topic] = append(a.listeners[topic], l)
}

// Update applies fn under the lock and then notifies topic listeners.
func (a *AppState) Update(ctx context.Context, topic Topic, fn func(s *State)) {
	a.mu.Lock()
	fn(&a.state)
	snap := a.state
	listeners := append([]Listener(nil), a.listeners[topic]...)
	a.mu.Unlock()

	for _, l := range listeners {
		l(ctx, snap)
	}
}

func (a *AppState) Publish(ctx context.Context, topic Topic) {
	a.Update(ctx, topic, func(*State) {})
}
