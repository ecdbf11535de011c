package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/schedmate/internal/remote"
)

// Registry keeps one Controller per session token.
type Registry struct {
	mu          sync.Mutex
	controllers map[string]*Controller

	auth    remote.Auth
	factory func() *Controller
	log     *zap.Logger
	now     func() time.Time
}

func NewRegistry(auth remote.Auth, factory func() *Controller, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		controllers: make(map[string]*Controller),
		auth:        auth,
		factory:     factory,
		log:         log,
		now:         time.Now,
	}
}

// Resolve returns the controller for token, starting a new one when the
// session has none yet. A revoked or expired session drops its
// controller and returns remote.ErrNoSession. fragment only matters for
// new controllers.
func (r *Registry) Resolve(ctx context.Context, token, fragment string) (*Controller, error) {
	ctrl, _, err := r.resolve(ctx, token, fragment)
	return ctrl, err
}

// Load is Resolve for a full dashboard load: a controller that already
// existed is reloaded from fragment instead of being reused as it was.
func (r *Registry) Load(ctx context.Context, token, fragment string) (*Controller, error) {
	ctrl, started, err := r.resolve(ctx, token, fragment)
	if err != nil {
		return nil, err
	}
	if !started {
		if err := ctrl.Reload(ctx, fragment); err != nil {
			return nil, err
		}
	}
	return ctrl, nil
}

// resolve reports whether the returned controller was started by this call.
func (r *Registry) resolve(ctx context.Context, token, fragment string) (*Controller, bool, error) {
	if token == "" {
		return nil, false, remote.ErrNoSession
	}

	r.mu.Lock()
	r.sweepLocked()
	ctrl, ok := r.controllers[token]
	r.mu.Unlock()

	if ok {
		if _, err := r.auth.GetSession(ctx, token); err != nil {
			if errors.Is(err, remote.ErrNoSession) {
				r.Drop(token)
				return nil, false, remote.ErrNoSession
			}
			return nil, false, err
		}
		return ctrl, false, nil
	}

	ctrl = r.factory()
	if err := ctrl.Start(ctx, token, fragment); err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.controllers[token]; ok {
		return existing, false, nil
	}
	r.controllers[token] = ctrl
	return ctrl, true, nil
}

func (r *Registry) Drop(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.controllers, token)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

func (r *Registry) sweepLocked() {
	now := r.now()
	for token, ctrl := range r.controllers {
		if ctrl.Expired(now) {
			delete(r.controllers, token)
			r.log.Debug("dropped expired dashboard session")
		}
	}
}
