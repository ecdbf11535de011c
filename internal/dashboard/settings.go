package dashboard

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/schedmate/internal/audit"
	"github.com/BruksfildServices01/schedmate/internal/httperr"
	"github.com/BruksfildServices01/schedmate/internal/models"
	"github.com/BruksfildServices01/schedmate/internal/remote"
	"github.com/BruksfildServices01/schedmate/internal/timezone"
	"github.com/BruksfildServices01/schedmate/internal/validators"
)

const (
	DefaultStartTime = "08:00"
	DefaultEndTime   = "18:00"

	// SavedStatusFor is how long the "saved" status stays visible.
	SavedStatusFor = 2 * time.Second

	LogoRulesMessage = "The logo must be a PNG, JPEG or WebP image up to 5 MB."
)

var errSaveInProgress = &MutationError{Kind: KindValidation, Message: "A save is already in progress."}

type SettingsInput struct {
	BusinessName string `json:"business_name"`
	ContactEmail string `json:"contact_email"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
}

type SettingsPanel struct {
	app      *AppState
	profiles remote.Collection[models.BusinessProfile]
	logos    LogoStore
	audit    Auditor
	log      *zap.Logger
	now      func() time.Time
}

// Load reads the owner's profile. No row means first-time setup and
// yields defaults; other errors are logged and leave the form as it was.
func (p *SettingsPanel) Load(ctx context.Context) error {
	snap := p.app.Snapshot()
	owner, ok := snap.OwnerID()
	if !ok {
		return errNoIdentity
	}

	email := snap.Identity.Email
	rec, err := p.profiles.Single(ctx, remote.Query{Filter: remote.Owned(owner)})
	switch {
	case errors.Is(err, remote.ErrNoRows):
		p.app.Update(ctx, TopicSettings, func(s *State) {
			s.Settings = SettingsForm{
				Loaded:       true,
				ContactEmail: email,
				StartTime:    DefaultStartTime,
				EndTime:      DefaultEndTime,
			}
		})
		return nil
	case err != nil:
		p.log.Error("load settings failed", zap.Uint("owner_id", owner), zap.Error(err))
		return err
	}

	p.app.Update(ctx, TopicSettings, func(s *State) {
		s.Settings = formFromProfile(rec, email)
	})
	return nil
}

// Save upserts the profile on owner_id. Saving is true for the duration
// of the request; SavedAt is set on success.
func (p *SettingsPanel) Save(ctx context.Context, in SettingsInput) (*models.BusinessProfile, error) {
	snap := p.app.Snapshot()
	owner, ok := snap.OwnerID()
	if !ok {
		return nil, errNoIdentity
	}

	in = SettingsInput{
		BusinessName: strings.TrimSpace(in.BusinessName),
		ContactEmail: strings.TrimSpace(in.ContactEmail),
		StartTime:    strings.TrimSpace(in.StartTime),
		EndTime:      strings.TrimSpace(in.EndTime),
	}
	if merr := validateSettings(in); merr != nil {
		return nil, p.fail(ctx, in, merr, false)
	}

	// Check and set in one update so concurrent saves cannot both start.
	var busy bool
	var logoURL string
	p.app.Update(ctx, TopicSettings, func(s *State) {
		if s.Settings.Saving {
			busy = true
			return
		}
		s.Settings.Saving = true
		s.Settings.Error = nil
		s.Settings.SavedAt = time.Time{}
		logoURL = s.Settings.LogoURL
	})
	if busy {
		return nil, errSaveInProgress
	}

	rec := models.BusinessProfile{
		OwnerID:      owner,
		BusinessName: in.BusinessName,
		ContactEmail: in.ContactEmail,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		LogoURL:      logoURL,
	}

	if err := p.profiles.Upsert(ctx, &rec, remote.ColumnOwnerID); err != nil {
		p.log.Error("save settings failed", zap.Uint("owner_id", owner), zap.Error(err))
		return nil, p.fail(ctx, in, remoteFailure("Could not save settings. Please try again.", err), true)
	}

	savedAt := p.now()
	p.app.Update(ctx, TopicSettings, func(s *State) {
		s.Settings = formFromProfile(&rec, snap.Identity.Email)
		s.Settings.SavedAt = savedAt
	})

	id := rec.ID
	p.audit.Dispatch(audit.Event{
		OwnerID:  owner,
		Action:   "settings_updated",
		Entity:   remote.CollectionBusinessProfiles,
		EntityID: &id,
		Metadata: map[string]any{"business_name": rec.BusinessName},
	})

	return &rec, nil
}

// LogosEnabled reports whether logo uploads are configured.
func (p *SettingsPanel) LogosEnabled() bool {
	return p.logos != nil
}

// UploadLogo stores the image and records its URL on the profile,
// creating the profile with defaults when it does not exist yet.
func (p *SettingsPanel) UploadLogo(ctx context.Context, r io.Reader) (string, error) {
	snap := p.app.Snapshot()
	owner, ok := snap.OwnerID()
	if !ok {
		return "", errNoIdentity
	}
	if p.logos == nil {
		return "", &MutationError{Kind: KindUnavailable, Message: "Logo uploads are not configured."}
	}

	url, err := p.logos.StoreLogo(ctx, owner, r)
	if err != nil {
		var be httperr.BusinessError
		if errors.As(err, &be) {
			return "", p.surface(ctx, invalid(LogoRulesMessage))
		}
		p.log.Error("store logo failed", zap.Uint("owner_id", owner), zap.Error(err))
		return "", p.surface(ctx, remoteFailure("Could not upload logo. Please try again.", err))
	}

	n, err := p.profiles.Update(ctx, remote.Owned(owner), map[string]any{"logo_url": url})
	if err == nil && n == 0 {
		rec := models.BusinessProfile{
			OwnerID:      owner,
			ContactEmail: snap.Identity.Email,
			StartTime:    DefaultStartTime,
			EndTime:      DefaultEndTime,
			LogoURL:      url,
		}
		err = p.profiles.Upsert(ctx, &rec, remote.ColumnOwnerID)
	}
	if err != nil {
		p.log.Error("save logo url failed", zap.Uint("owner_id", owner), zap.Error(err))
		return "", p.surface(ctx, remoteFailure("Could not save logo. Please try again.", err))
	}

	p.app.Update(ctx, TopicSettings, func(s *State) {
		s.Settings.LogoURL = url
		s.Settings.Error = nil
	})

	p.audit.Dispatch(audit.Event{
		OwnerID:  owner,
		Action:   "logo_uploaded",
		Entity:   remote.CollectionBusinessProfiles,
		Metadata: map[string]any{"url": url},
	})

	return url, nil
}

func validateSettings(in SettingsInput) *MutationError {
	if in.ContactEmail != "" && !validators.IsEmailSyntaxValid(in.ContactEmail) {
		return invalid("Contact email is not valid.")
	}
	if in.StartTime != "" && !timezone.IsValidClock(in.StartTime) {
		return invalid("Start time must look like 08:00.")
	}
	if in.EndTime != "" && !timezone.IsValidClock(in.EndTime) {
		return invalid("End time must look like 18:00.")
	}
	return nil
}

// formFromProfile fills blank contact email and hours the same way a
// first-time setup does.
func formFromProfile(rec *models.BusinessProfile, sessionEmail string) SettingsForm {
	return SettingsForm{
		Loaded:       true,
		BusinessName: rec.BusinessName,
		ContactEmail: orDefault(rec.ContactEmail, sessionEmail),
		StartTime:    orDefault(rec.StartTime, DefaultStartTime),
		EndTime:      orDefault(rec.EndTime, DefaultEndTime),
		LogoURL:      rec.LogoURL,
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// fail keeps the submitted values on the form. release clears Saving and
// is only set by the save that set it.
func (p *SettingsPanel) fail(ctx context.Context, in SettingsInput, merr *MutationError, release bool) *MutationError {
	p.app.Update(ctx, TopicSettings, func(s *State) {
		s.Settings.BusinessName = in.BusinessName
		s.Settings.ContactEmail = in.ContactEmail
		s.Settings.StartTime = in.StartTime
		s.Settings.EndTime = in.EndTime
		if release {
			s.Settings.Saving = false
		}
		s.Settings.Error = merr
	})
	return merr
}

func (p *SettingsPanel) surface(ctx context.Context, merr *MutationError) *MutationError {
	p.app.Update(ctx, TopicSettings, func(s *State) {
		s.Settings.Error = merr
	})
	return merr
}
