package dashboard

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/schedmate/internal/audit"
	"github.com/BruksfildServices01/schedmate/internal/domain/booking"
	"github.com/BruksfildServices01/schedmate/internal/models"
	"github.com/BruksfildServices01/schedmate/internal/remote"
	"github.com/BruksfildServices01/schedmate/internal/timezone"
)

type BookingInput struct {
	ID            uint   `json:"id"`
	PickedClient  string `json:"picked_client"`
	ClientName    string `json:"client_name"`
	Service       string `json:"service"`
	CustomService string `json:"custom_service"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Notes         string `json:"notes"`
}

type BookingPanel struct {
	app      *AppState
	bookings remote.Collection[models.Booking]
	catalog  booking.Catalog
	tz       string
	audit    Auditor
	log      *zap.Logger
	now      func() time.Time
}

func (p *BookingPanel) Today() string {
	return timezone.Today(p.tz, p.now())
}

// List reloads today's bookings ordered by time. On failure the previous
// list stays on screen.
func (p *BookingPanel) List(ctx context.Context) error {
	owner, ok := p.app.Snapshot().OwnerID()
	if !ok {
		return errNoIdentity
	}

	today := p.Today()
	rows, err := p.bookings.Select(ctx, remote.Query{
		Filter: remote.Owned(owner).Eq("date", today),
		Order:  []remote.Order{{Column: "time"}, {Column: "id"}},
	})
	if err != nil {
		p.log.Error("load bookings failed", zap.Uint("owner_id", owner), zap.Error(err))
		return err
	}

	if rows == nil {
		rows = []models.Booking{}
	}

	p.app.Update(ctx, TopicBookings, func(s *State) {
		s.Bookings = rows
		s.BookingsLoaded = true
		s.BookingsDate = today
	})
	return nil
}

// Open shows the booking modal. For id 0 the date defaults to today and
// the first catalog service is selected; otherwise the stored booking is
// loaded.
func (p *BookingPanel) Open(ctx context.Context, id uint) error {
	owner, ok := p.app.Snapshot().OwnerID()
	if !ok {
		return errNoIdentity
	}

	if id == 0 {
		service, _ := p.catalog.Split("")
		form := BookingForm{Open: true, Service: service, Date: p.Today()}
		p.app.Update(ctx, TopicBookings, func(s *State) {
			s.BookingForm = form
		})
		return nil
	}

	rec, err := p.bookings.Single(ctx, remote.Query{Filter: remote.Owned(owner).Eq("id", id)})
	if err != nil {
		if errors.Is(err, remote.ErrNoRows) {
			return notFound("Booking not found.")
		}
		p.log.Error("load booking failed", zap.Uint("booking_id", id), zap.Error(err))
		return remoteFailure("Could not load booking. Please try again.", err)
	}

	service, custom := p.catalog.Split(rec.Service)
	form := BookingForm{
		Open:          true,
		ID:            rec.ID,
		PickedClient:  rec.ClientName,
		ClientName:    rec.ClientName,
		Service:       service,
		CustomService: custom,
		Date:          rec.Date,
		Time:          rec.Time,
		Notes:         rec.Notes,
	}
	p.app.Update(ctx, TopicBookings, func(s *State) {
		s.BookingForm = form
	})
	return nil
}

func (p *BookingPanel) Close(ctx context.Context) {
	p.app.Update(ctx, TopicBookings, func(s *State) {
		s.BookingForm = BookingForm{}
	})
}

// Save creates the booking when in.ID is 0 and updates it otherwise.
// The client name is resolved from the typed name and the picker.
func (p *BookingPanel) Save(ctx context.Context, in BookingInput) (*models.Booking, error) {
	owner, ok := p.app.Snapshot().OwnerID()
	if !ok {
		return nil, errNoIdentity
	}

	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.Notes = strings.TrimSpace(in.Notes)
	if in.Date == "" && in.ID == 0 {
		in.Date = p.Today()
	}

	switch {
	case in.Date == "":
		return nil, p.fail(ctx, in, invalid("Date is required."))
	case !timezone.IsValidDate(in.Date):
		return nil, p.fail(ctx, in, invalid("Date must look like 2026-01-31."))
	case in.Time != "" && !timezone.IsValidClock(in.Time):
		return nil, p.fail(ctx, in, invalid("Time must look like 09:30."))
	}

	rec := models.Booking{
		ID:         in.ID,
		OwnerID:    owner,
		ClientName: booking.ResolveClientName(in.ClientName, in.PickedClient),
		Service:    p.catalog.Resolve(in.Service, in.CustomService),
		Date:       in.Date,
		Time:       in.Time,
		Notes:      in.Notes,
	}

	action := "booking_created"
	if in.ID == 0 {
		if err := p.bookings.Insert(ctx, &rec); err != nil {
			p.log.Error("create booking failed", zap.Uint("owner_id", owner), zap.Error(err))
			return nil, p.fail(ctx, in, remoteFailure("Could not save booking. Please try again.", err))
		}
	} else {
		action = "booking_updated"
		n, err := p.bookings.Update(ctx, remote.Owned(owner).Eq("id", in.ID), map[string]any{
			"client_name": rec.ClientName,
			"service":     rec.Service,
			"date":        rec.Date,
			"time":        rec.Time,
			"notes":       rec.Notes,
		})
		if err != nil {
			p.log.Error("update booking failed", zap.Uint("booking_id", in.ID), zap.Error(err))
			return nil, p.fail(ctx, in, remoteFailure("Could not save booking. Please try again.", err))
		}
		if n == 0 {
			return nil, p.fail(ctx, in, notFound("Booking not found."))
		}
	}

	p.app.Update(ctx, TopicBookings, func(s *State) {
		s.BookingForm = BookingForm{}
	})

	id := rec.ID
	p.audit.Dispatch(audit.Event{
		OwnerID:  owner,
		Action:   action,
		Entity:   remote.CollectionBookings,
		EntityID: &id,
		Metadata: map[string]any{"date": rec.Date, "time": rec.Time},
	})

	if err := p.List(ctx); err != nil {
		p.log.Warn("booking list is stale after mutation", zap.Error(err))
	}
	return &rec, nil
}

func (p *BookingPanel) fail(ctx context.Context, in BookingInput, merr *MutationError) *MutationError {
	p.app.Update(ctx, TopicBookings, func(s *State) {
		s.BookingForm = BookingForm{
			Open:          true,
			ID:            in.ID,
			PickedClient:  in.PickedClient,
			ClientName:    in.ClientName,
			Service:       in.Service,
			CustomService: in.CustomService,
			Date:          in.Date,
			Time:          in.Time,
			Notes:         in.Notes,
			Error:         merr,
		}
	})
	return merr
}
