package dashboard

import (
	"fmt"
	"time"

	"github.com/BruksfildServices01/schedmate/internal/domain/booking"
	"github.com/BruksfildServices01/schedmate/internal/domain/view"
)

// SummaryLimit caps the client summary on the Today view.
const SummaryLimit = 5

// Render functions are pure: the same State, catalog and clock always
// produce the same Page.

type Page struct {
	UserEmail string    `json:"user_email"`
	View      view.View `json:"view"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`

	Nav    []NavItem   `json:"nav"`
	Panels []PanelView `json:"panels"`

	Today    TodayView    `json:"today"`
	Clients  ClientsView  `json:"clients"`
	Settings SettingsView `json:"settings"`

	ClientModal  ClientModalView  `json:"client_modal"`
	BookingModal BookingModalView `json:"booking_modal"`
}

type NavItem struct {
	View     view.View `json:"view"`
	Label    string    `json:"label"`
	Href     string    `json:"href"`
	Selected bool      `json:"selected"`
}

type PanelView struct {
	View    view.View `json:"view"`
	Visible bool      `json:"visible"`
}

type BookingLine struct {
	ID      uint   `json:"id"`
	Time    string `json:"time"`
	Client  string `json:"client"`
	Service string `json:"service"`
	Label   string `json:"label"`
}

type TodayView struct {
	Date          string        `json:"date"`
	Bookings      []BookingLine `json:"bookings"`
	BookingsEmpty bool          `json:"bookings_empty"`
	ClientSummary []string      `json:"client_summary"`
	ClientsEmpty  bool          `json:"clients_empty"`
}

type ClientRow struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

type ClientsView struct {
	Rows  []ClientRow `json:"rows"`
	Empty bool        `json:"empty"`
	Error *FormError  `json:"error,omitempty"`
}

type SettingsView struct {
	BusinessName string     `json:"business_name"`
	ContactEmail string     `json:"contact_email"`
	StartTime    string     `json:"start_time"`
	EndTime      string     `json:"end_time"`
	LogoURL      string     `json:"logo_url,omitempty"`
	SaveDisabled bool       `json:"save_disabled"`
	SavedVisible bool       `json:"saved_visible"`
	Error        *FormError `json:"error,omitempty"`
}

type FormError struct {
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
}

type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

type ClientModalView struct {
	Open  bool       `json:"open"`
	Title string     `json:"title"`
	ID    uint       `json:"id,omitempty"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Phone string     `json:"phone"`
	Notes string     `json:"notes"`
	Error *FormError `json:"error,omitempty"`
}

type BookingModalView struct {
	Open              bool       `json:"open"`
	Title             string     `json:"title"`
	ID                uint       `json:"id,omitempty"`
	ClientOptions     []Option   `json:"client_options"`
	ClientName        string     `json:"client_name"`
	ServiceOptions    []Option   `json:"service_options"`
	ShowCustomService bool       `json:"show_custom_service"`
	CustomService     string     `json:"custom_service"`
	Date              string     `json:"date"`
	Time              string     `json:"time"`
	Notes             string     `json:"notes"`
	Error             *FormError `json:"error,omitempty"`
}

func Render(s State, catalog booking.Catalog, now time.Time) Page {
	cfg, ok := view.Lookup(s.View)
	if !ok {
		cfg, _ = view.Lookup(view.Default)
	}

	p := Page{
		View:         cfg.View,
		Title:        cfg.Title,
		Subtitle:     cfg.Subtitle,
		Nav:          RenderNav(cfg.View),
		Panels:       RenderPanels(cfg.View),
		Today:        RenderToday(s),
		Clients:      RenderClients(s),
		Settings:     RenderSettings(s, now),
		ClientModal:  RenderClientModal(s),
		BookingModal: RenderBookingModal(s, catalog),
	}
	if s.Identity != nil {
		p.UserEmail = s.Identity.Email
	}
	return p
}

func RenderNav(active view.View) []NavItem {
	out := make([]NavItem, 0, len(view.All))
	for _, cfg := range view.All {
		out = append(out, NavItem{
			View:     cfg.View,
			Label:    cfg.Label,
			Href:     "#" + cfg.Fragment(),
			Selected: cfg.View == active,
		})
	}
	return out
}

// RenderPanels marks exactly one panel visible.
func RenderPanels(active view.View) []PanelView {
	out := make([]PanelView, 0, len(view.All))
	for _, cfg := range view.All {
		out = append(out, PanelView{View: cfg.View, Visible: cfg.View == active})
	}
	return out
}

func RenderToday(s State) TodayView {
	out := TodayView{
		Date:          s.BookingsDate,
		Bookings:      make([]BookingLine, 0, len(s.Bookings)),
		ClientSummary: make([]string, 0, SummaryLimit),
	}

	for _, b := range s.Bookings {
		clock := booking.DisplayTime(b.Time)
		client := booking.DisplayClient(b.ClientName)
		service := booking.DisplayService(b.Service)
		out.Bookings = append(out.Bookings, BookingLine{
			ID:      b.ID,
			Time:    clock,
			Client:  client,
			Service: service,
			Label:   fmt.Sprintf("%s — %s (%s)", clock, client, service),
		})
	}
	out.BookingsEmpty = len(out.Bookings) == 0

	for i, c := range s.Clients {
		if i == SummaryLimit {
			break
		}
		out.ClientSummary = append(out.ClientSummary, fmt.Sprintf("%s — %s", c.Name, contactOf(c.Email, c.Phone)))
	}
	out.ClientsEmpty = len(s.Clients) == 0

	return out
}

func contactOf(email, phone string) string {
	if email != "" {
		return email
	}
	return phone
}

func RenderClients(s State) ClientsView {
	out := ClientsView{
		Rows:  make([]ClientRow, 0, len(s.Clients)),
		Error: formError(s.ClientsError),
	}
	for _, c := range s.Clients {
		out.Rows = append(out.Rows, ClientRow{
			ID:    c.ID,
			Name:  c.Name,
			Email: c.Email,
			Phone: c.Phone,
			Notes: c.Notes,
		})
	}
	out.Empty = len(out.Rows) == 0
	return out
}

func RenderSettings(s State, now time.Time) SettingsView {
	f := s.Settings
	return SettingsView{
		BusinessName: f.BusinessName,
		ContactEmail: f.ContactEmail,
		StartTime:    f.StartTime,
		EndTime:      f.EndTime,
		LogoURL:      f.LogoURL,
		SaveDisabled: f.Saving,
		SavedVisible: !f.SavedAt.IsZero() && now.Sub(f.SavedAt) < SavedStatusFor,
		Error:        formError(f.Error),
	}
}

func RenderClientModal(s State) ClientModalView {
	f := s.ClientForm
	if !f.Open {
		return ClientModalView{}
	}

	title := "New client"
	if f.ID != 0 {
		title = "Edit client"
	}
	return ClientModalView{
		Open:  true,
		Title: title,
		ID:    f.ID,
		Name:  f.Name,
		Email: f.Email,
		Phone: f.Phone,
		Notes: f.Notes,
		Error: formError(f.Error),
	}
}

// RenderBookingModal lists the picker placeholder first, then one option
// per loaded client.
func RenderBookingModal(s State, catalog booking.Catalog) BookingModalView {
	f := s.BookingForm
	if !f.Open {
		return BookingModalView{}
	}

	title := "Add booking"
	if f.ID != 0 {
		title = "Edit booking"
	}

	clients := make([]Option, 0, len(s.Clients)+1)
	clients = append(clients, Option{
		Value:    "",
		Label:    booking.PickerPlaceholder,
		Selected: f.PickedClient == "",
	})
	for _, c := range s.Clients {
		label := c.Name
		if label == "" {
			label = booking.UnnamedClientLabel
		}
		clients = append(clients, Option{
			Value:    c.Name,
			Label:    label,
			Selected: f.PickedClient != "" && f.PickedClient == c.Name,
		})
	}

	services := make([]Option, 0, len(catalog.Services))
	for _, svc := range catalog.Services {
		services = append(services, Option{Value: svc, Label: svc, Selected: svc == f.Service})
	}

	return BookingModalView{
		Open:              true,
		Title:             title,
		ID:                f.ID,
		ClientOptions:     clients,
		ClientName:        f.ClientName,
		ServiceOptions:    services,
		ShowCustomService: f.Service == booking.OtherService,
		CustomService:     f.CustomService,
		Date:              f.Date,
		Time:              f.Time,
		Notes:             f.Notes,
		Error:             formError(f.Error),
	}
}

func formError(merr *MutationError) *FormError {
	if merr == nil {
		return nil
	}
	return &FormError{
		Kind:      merr.Kind,
		Message:   merr.Message,
		Retryable: merr.Retryable(),
	}
}
