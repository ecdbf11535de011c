package dashboard

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/schedmate/internal/audit"
	"github.com/BruksfildServices01/schedmate/internal/models"
	"github.com/BruksfildServices01/schedmate/internal/remote"
)

type ClientInput struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

func (in ClientInput) trimmed() ClientInput {
	return ClientInput{
		ID:    in.ID,
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Phone: strings.TrimSpace(in.Phone),
		Notes: strings.TrimSpace(in.Notes),
	}
}

type ClientPanel struct {
	app     *AppState
	clients remote.Collection[models.Client]
	audit   Auditor
	log     *zap.Logger
}

// List reloads the owner's clients, newest first. On failure the previous
// list stays on screen.
func (p *ClientPanel) List(ctx context.Context) error {
	owner, ok := p.app.Snapshot().OwnerID()
	if !ok {
		return errNoIdentity
	}

	rows, err := p.clients.Select(ctx, remote.Query{
		Filter: remote.Owned(owner),
		Order: []remote.Order{
			{Column: "created_at", Desc: true},
			{Column: "id", Desc: true},
		},
	})
	if err != nil {
		p.log.Error("load clients failed", zap.Uint("owner_id", owner), zap.Error(err))
		return err
	}

	if rows == nil {
		rows = []models.Client{}
	}

	p.app.Update(ctx, TopicClients, func(s *State) {
		s.Clients = rows
		s.ClientsLoaded = true
	})
	return nil
}

// Open shows the client modal: empty for id 0, pre-filled otherwise.
func (p *ClientPanel) Open(ctx context.Context, id uint) error {
	form := ClientForm{Open: true}

	if id != 0 {
		found := false
		for _, c := range p.app.Snapshot().Clients {
			if c.ID == id {
				form = ClientForm{
					Open:  true,
					ID:    c.ID,
					Name:  c.Name,
					Email: c.Email,
					Phone: c.Phone,
					Notes: c.Notes,
				}
				found = true
				break
			}
		}
		if !found {
			return notFound("Client not found.")
		}
	}

	p.app.Update(ctx, TopicClients, func(s *State) {
		s.ClientForm = form
	})
	return nil
}

func (p *ClientPanel) Close(ctx context.Context) {
	p.app.Update(ctx, TopicClients, func(s *State) {
		s.ClientForm = ClientForm{}
	})
}

// Save creates the client when in.ID is 0 and updates it otherwise. On
// failure the modal stays open with the submitted values and the error.
func (p *ClientPanel) Save(ctx context.Context, in ClientInput) (*models.Client, error) {
	owner, ok := p.app.Snapshot().OwnerID()
	if !ok {
		return nil, errNoIdentity
	}

	// A blank name is allowed; the booking picker labels it "(No name)".
	in = in.trimmed()

	rec := models.Client{
		ID:      in.ID,
		OwnerID: owner,
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Notes:   in.Notes,
	}

	action := "client_created"
	if in.ID == 0 {
		if err := p.clients.Insert(ctx, &rec); err != nil {
			p.log.Error("create client failed", zap.Uint("owner_id", owner), zap.Error(err))
			return nil, p.fail(ctx, in, remoteFailure("Could not save client. Please try again.", err))
		}
	} else {
		action = "client_updated"
		n, err := p.clients.Update(ctx, remote.Owned(owner).Eq("id", in.ID), map[string]any{
			"name":  rec.Name,
			"email": rec.Email,
			"phone": rec.Phone,
			"notes": rec.Notes,
		})
		if err != nil {
			p.log.Error("update client failed", zap.Uint("client_id", in.ID), zap.Error(err))
			return nil, p.fail(ctx, in, remoteFailure("Could not save client. Please try again.", err))
		}
		if n == 0 {
			return nil, p.fail(ctx, in, notFound("Client not found."))
		}
	}

	p.app.Update(ctx, TopicClients, func(s *State) {
		s.ClientForm = ClientForm{}
		s.ClientsError = nil
	})

	id := rec.ID
	p.audit.Dispatch(audit.Event{
		OwnerID:  owner,
		Action:   action,
		Entity:   remote.CollectionClients,
		EntityID: &id,
		Metadata: map[string]any{"name": rec.Name},
	})

	p.changed(ctx)
	return &rec, nil
}

// Delete removes one client. Nothing happens unless confirmed is true.
func (p *ClientPanel) Delete(ctx context.Context, id uint, confirmed bool) error {
	owner, ok := p.app.Snapshot().OwnerID()
	if !ok {
		return errNoIdentity
	}
	if !confirmed {
		return &MutationError{Kind: KindConfirmation, Message: "Delete this client?"}
	}

	n, err := p.clients.Delete(ctx, remote.Owned(owner).Eq("id", id))
	if err != nil {
		p.log.Error("delete client failed", zap.Uint("client_id", id), zap.Error(err))
		return p.listError(ctx, remoteFailure("Could not delete client. Please try again.", err))
	}
	if n == 0 {
		return p.listError(ctx, notFound("Client not found."))
	}

	p.app.Update(ctx, TopicClients, func(s *State) {
		s.ClientsError = nil
	})

	p.audit.Dispatch(audit.Event{
		OwnerID:  owner,
		Action:   "client_deleted",
		Entity:   remote.CollectionClients,
		EntityID: &id,
	})

	p.changed(ctx)
	return nil
}

func (p *ClientPanel) changed(ctx context.Context) {
	if err := p.List(ctx); err != nil && !errors.Is(err, errNoIdentity) {
		p.log.Warn("client list is stale after mutation", zap.Error(err))
	}
	p.app.Publish(ctx, TopicClientsChanged)
}

func (p *ClientPanel) fail(ctx context.Context, in ClientInput, merr *MutationError) *MutationError {
	p.app.Update(ctx, TopicClients, func(s *State) {
		s.ClientForm = ClientForm{
			Open:  true,
			ID:    in.ID,
			Name:  in.Name,
			Email: in.Email,
			Phone: in.Phone,
			Notes: in.Notes,
			Error: merr,
		}
	})
	return merr
}

func (p *ClientPanel) listError(ctx context.Context, merr *MutationError) *MutationError {
	p.app.Update(ctx, TopicClients, func(s *State) {
		s.ClientsError = merr
	})
	return merr
}
