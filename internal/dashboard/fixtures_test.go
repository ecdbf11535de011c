package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/schedmate/internal/audit"
	"github.com/BruksfildServices01/schedmate/internal/domain/booking"
	"github.com/BruksfildServices01/schedmate/internal/infra/repository"
	"github.com/BruksfildServices01/schedmate/internal/models"
	"github.com/BruksfildServices01/schedmate/internal/remote"
	"github.com/BruksfildServices01/schedmate/internal/testutil"
)

var (
	fixedNow = time.Date(2026, 5, 14, 10, 30, 0, 0, time.UTC)
	today    = "2026-05-14"

	errBoom = errors.New("remote unavailable")
)

const (
	ownerToken = "token-owner"
	otherToken = "token-other"
)

// --------------------------------------------------
// Fakes
// --------------------------------------------------

type fakeAuth struct {
	mu       sync.Mutex
	sessions map[string]*remote.Session
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{sessions: map[string]*remote.Session{
		ownerToken: {ID: "s-1", UserID: 1, Email: "owner@sparkle.test", ExpiresAt: fixedNow.Add(time.Hour)},
		otherToken: {ID: "s-2", UserID: 2, Email: "other@shine.test", ExpiresAt: fixedNow.Add(time.Hour)},
	}}
}

func (a *fakeAuth) GetSession(_ context.Context, token string) (*remote.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s, ok := a.sessions[token]; ok {
		return s, nil
	}
	return nil, remote.ErrNoSession
}

func (a *fakeAuth) revoke(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, token)
}

func (a *fakeAuth) SignIn(context.Context, string, string) (*remote.Session, error) {
	return nil, errors.New("not used")
}

func (a *fakeAuth) SignUp(context.Context, string, string) (*remote.Session, error) {
	return nil, errors.New("not used")
}

func (a *fakeAuth) SignOut(_ context.Context, token string) error {
	a.revoke(token)
	return nil
}

func (a *fakeAuth) SendPasswordReset(context.Context, string, string) error { return nil }

func (a *fakeAuth) ResetPassword(context.Context, string, string) error { return nil }

// faultyCollection wraps a real collection and fails on demand.
type faultyCollection[T any] struct {
	remote.Collection[T]

	mu        sync.Mutex
	selectErr error
	writeErr  error
	selects   int
}

func (f *faultyCollection[T]) failSelect(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectErr = err
}

func (f *faultyCollection[T]) failWrites(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeErr = err
}

func (f *faultyCollection[T]) selectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selects
}

func (f *faultyCollection[T]) Select(ctx context.Context, q remote.Query) ([]T, error) {
	f.mu.Lock()
	f.selects++
	err := f.selectErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Collection.Select(ctx, q)
}

func (f *faultyCollection[T]) Single(ctx context.Context, q remote.Query) (*T, error) {
	f.mu.Lock()
	err := f.selectErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Collection.Single(ctx, q)
}

func (f *faultyCollection[T]) writeFailure() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeErr
}

func (f *faultyCollection[T]) Insert(ctx context.Context, rec *T) error {
	if err := f.writeFailure(); err != nil {
		return err
	}
	return f.Collection.Insert(ctx, rec)
}

func (f *faultyCollection[T]) Update(ctx context.Context, filter remote.Filter, fields map[string]any) (int64, error) {
	if err := f.writeFailure(); err != nil {
		return 0, err
	}
	return f.Collection.Update(ctx, filter, fields)
}

func (f *faultyCollection[T]) Delete(ctx context.Context, filter remote.Filter) (int64, error) {
	if err := f.writeFailure(); err != nil {
		return 0, err
	}
	return f.Collection.Delete(ctx, filter)
}

func (f *faultyCollection[T]) Upsert(ctx context.Context, rec *T, key string) error {
	if err := f.writeFailure(); err != nil {
		return err
	}
	return f.Collection.Upsert(ctx, rec, key)
}

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAuditor) Dispatch(ev audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingAuditor) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Action)
	}
	return out
}

// --------------------------------------------------
// Harness
// --------------------------------------------------

type harness struct {
	db       *gorm.DB
	auth     *fakeAuth
	store    remote.Store
	clients  *faultyCollection[models.Client]
	profiles *faultyCollection[models.BusinessProfile]
	bookings *faultyCollection[models.Booking]
	audit    *recordingAuditor
	now      time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := testutil.NewDB(t)
	h := &harness{
		db:       db,
		auth:     newFakeAuth(),
		clients:  &faultyCollection[models.Client]{Collection: repository.NewGormCollection[models.Client](db)},
		profiles: &faultyCollection[models.BusinessProfile]{Collection: repository.NewGormCollection[models.BusinessProfile](db)},
		bookings: &faultyCollection[models.Booking]{Collection: repository.NewGormCollection[models.Booking](db)},
		audit:    &recordingAuditor{},
		now:      fixedNow,
	}
	h.store = remote.Store{
		Auth:     h.auth,
		Clients:  h.clients,
		Profiles: h.profiles,
		Bookings: h.bookings,
	}
	return h
}

func (h *harness) controller() *Controller {
	return NewController(h.store, Options{
		Catalog:  booking.DefaultCatalog(),
		Timezone: "UTC",
		Audit:    h.audit,
		Log:      zap.NewNop(),
		Now:      func() time.Time { return h.now },
	})
}

// started returns a controller that passed the session guard for token.
func (h *harness) started(t *testing.T, token, fragment string) *Controller {
	t.Helper()
	ctrl := h.controller()
	require.NoError(t, ctrl.Start(context.Background(), token, fragment))
	return ctrl
}

func (h *harness) seedClient(t *testing.T, owner uint, name, email, phone string) models.Client {
	t.Helper()
	rec := models.Client{OwnerID: owner, Name: name, Email: email, Phone: phone}
	require.NoError(t, h.db.Create(&rec).Error)
	return rec
}

func (h *harness) seedBooking(t *testing.T, owner uint, client, service, date, clock string) models.Booking {
	t.Helper()
	rec := models.Booking{OwnerID: owner, ClientName: client, Service: service, Date: date, Time: clock}
	require.NoError(t, h.db.Create(&rec).Error)
	return rec
}
