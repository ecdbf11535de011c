package dashboard

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/schedmate/internal/httperr"
	"github.com/BruksfildServices01/schedmate/internal/models"
	"github.com/BruksfildServices01/schedmate/internal/remote"
)

type fakeLogos struct {
	url   string
	err   error
	bytes int
}

func (f *fakeLogos) StoreLogo(_ context.Context, ownerID uint, r io.Reader) (string, error) {
	b, _ := io.ReadAll(r)
	f.bytes = len(b)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func TestSettingsFirstTimeDefaults(t *testing.T) {
	h := newHarness(t)
	ctrl := h.started(t, ownerToken, "#settings")

	f := ctrl.State().Settings
	assert.True(t, f.Loaded)
	assert.Empty(t, f.BusinessName)
	assert.Equal(t, "owner@sparkle.test", f.ContactEmail)
	assert.Equal(t, "08:00", f.StartTime)
	assert.Equal(t, "18:00", f.EndTime)
}

func TestSettingsLoadsStoredProfile(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.db.Create(&models.BusinessProfile{
		OwnerID:      1,
		BusinessName: "Sparkle Cleaning",
		ContactEmail: "hello@sparkle.test",
		StartTime:    "07:00",
		EndTime:      "15:00",
	}).Error)

	f := h.started(t, ownerToken, "").State().Settings
	assert.Equal(t, "Sparkle Cleaning", f.BusinessName)
	assert.Equal(t, "07:00", f.StartTime)
}

func TestSettingsStoredBlanksFallBackToDefaults(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.db.Create(&models.BusinessProfile{
		OwnerID:      1,
		BusinessName: "Sparkle Cleaning",
	}).Error)

	f := h.started(t, ownerToken, "").State().Settings
	assert.Equal(t, "Sparkle Cleaning", f.BusinessName)
	assert.Equal(t, "owner@sparkle.test", f.ContactEmail)
	assert.Equal(t, DefaultStartTime, f.StartTime)
	assert.Equal(t, DefaultEndTime, f.EndTime)
}

// gatedProfiles holds Upsert until release is closed.
type gatedProfiles struct {
	remote.Collection[models.BusinessProfile]
	entered chan struct{}
	release chan struct{}
}

func (g *gatedProfiles) Upsert(ctx context.Context, rec *models.BusinessProfile, key string) error {
	close(g.entered)
	<-g.release
	return g.Collection.Upsert(ctx, rec, key)
}

func TestSettingsConcurrentSaveIsRejected(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	gate := &gatedProfiles{
		Collection: h.profiles,
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	h.store.Profiles = gate
	ctrl := h.started(t, ownerToken, "#settings")

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Settings.Save(ctx, SettingsInput{BusinessName: "First"})
		done <- err
	}()
	<-gate.entered
	assert.True(t, ctrl.State().Settings.Saving)

	_, err := ctrl.Settings.Save(ctx, SettingsInput{BusinessName: "Second"})
	merr, ok := AsMutationError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, merr.Kind)

	_, err = ctrl.Settings.Save(ctx, SettingsInput{StartTime: "nine"})
	require.Error(t, err)
	assert.True(t, ctrl.State().Settings.Saving, "an invalid save leaves the running one alone")

	close(gate.release)
	require.NoError(t, <-done)

	f := ctrl.State().Settings
	assert.False(t, f.Saving)
	assert.Nil(t, f.Error)
	assert.Equal(t, "First", f.BusinessName)
}

func TestSettingsSaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	ctrl := h.started(t, ownerToken, "#settings")

	in := SettingsInput{
		BusinessName: " Sparkle Cleaning ",
		ContactEmail: "hello@sparkle.test",
		StartTime:    "09:00",
		EndTime:      "17:00",
	}
	for i := 0; i < 2; i++ {
		rec, err := ctrl.Settings.Save(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "Sparkle Cleaning", rec.BusinessName)
	}

	var count int64
	require.NoError(t, h.db.Model(&models.BusinessProfile{}).Where("owner_id = ?", 1).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	f := ctrl.State().Settings
	assert.False(t, f.Saving)
	assert.Equal(t, "09:00", f.StartTime)
	assert.Equal(t, fixedNow, f.SavedAt)
	assert.Equal(t, []string{"settings_updated", "settings_updated"}, h.audit.actions())
}

func TestSettingsSavedStatusExpires(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	ctrl := h.started(t, ownerToken, "#settings")

	_, err := ctrl.Settings.Save(ctx, SettingsInput{BusinessName: "Sparkle"})
	require.NoError(t, err)

	assert.True(t, ctrl.Render().Settings.SavedVisible)

	h.now = fixedNow.Add(1900 * time.Millisecond)
	assert.True(t, ctrl.Render().Settings.SavedVisible)

	h.now = fixedNow.Add(SavedStatusFor)
	assert.False(t, ctrl.Render().Settings.SavedVisible)
}

func TestSettingsSaveDisabledWhileSaving(t *testing.T) {
	s := State{Settings: SettingsForm{Saving: true}}
	assert.True(t, RenderSettings(s, fixedNow).SaveDisabled)

	s.Settings.Saving = false
	assert.False(t, RenderSettings(s, fixedNow).SaveDisabled)
}

func TestSettingsSaveFailureIsSurfaced(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	ctrl := h.started(t, ownerToken, "#settings")
	h.profiles.failWrites(errBoom)

	_, err := ctrl.Settings.Save(ctx, SettingsInput{BusinessName: "Sparkle"})
	merr, ok := AsMutationError(err)
	require.True(t, ok)
	assert.Equal(t, KindRemote, merr.Kind)

	v := ctrl.Render().Settings
	assert.False(t, v.SaveDisabled, "save is re-enabled after a failure")
	assert.False(t, v.SavedVisible)
	assert.Equal(t, "Sparkle", v.BusinessName)
	require.NotNil(t, v.Error)
	assert.True(t, v.Error.Retryable)
}

func TestSettingsValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	ctrl := h.started(t, ownerToken, "#settings")

	for _, in := range []SettingsInput{
		{ContactEmail: "not-an-email"},
		{StartTime: "8am"},
		{EndTime: "25:99"},
	} {
		_, err := ctrl.Settings.Save(ctx, in)
		merr, ok := AsMutationError(err)
		require.True(t, ok)
		assert.Equal(t, KindValidation, merr.Kind)
	}
}

func TestSettingsKeepsLogoAcrossSaves(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	logos := &fakeLogos{url: "https://cdn.test/logos/1.webp"}

	ctrl := NewController(h.store, Options{Logos: logos, Now: func() time.Time { return fixedNow }})
	require.NoError(t, ctrl.Start(ctx, ownerToken, ""))
	require.True(t, ctrl.Settings.LogosEnabled())

	url, err := ctrl.Settings.UploadLogo(ctx, strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, logos.url, url)
	assert.Equal(t, len("image-bytes"), logos.bytes)

	_, err = ctrl.Settings.Save(ctx, SettingsInput{BusinessName: "Sparkle"})
	require.NoError(t, err)

	var stored models.BusinessProfile
	require.NoError(t, h.db.Where("owner_id = ?", 1).First(&stored).Error)
	assert.Equal(t, logos.url, stored.LogoURL)
	assert.Equal(t, "Sparkle", stored.BusinessName)
}

func TestUploadLogoWithoutStorage(t *testing.T) {
	h := newHarness(t)
	ctrl := h.started(t, ownerToken, "")

	_, err := ctrl.Settings.UploadLogo(context.Background(), strings.NewReader("x"))
	merr, ok := AsMutationError(err)
	require.True(t, ok)
	assert.Equal(t, KindUnavailable, merr.Kind)
}

func TestUploadLogoStorageFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	ctrl := NewController(h.store, Options{Logos: &fakeLogos{err: errors.New("s3 down")}})
	require.NoError(t, ctrl.Start(ctx, ownerToken, ""))

	_, err := ctrl.Settings.UploadLogo(ctx, strings.NewReader("x"))
	merr, ok := AsMutationError(err)
	require.True(t, ok)
	assert.Equal(t, KindRemote, merr.Kind)
	assert.NotNil(t, ctrl.State().Settings.Error)
}

func TestUploadLogoRejectsBadImage(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	ctrl := NewController(h.store, Options{Logos: &fakeLogos{err: httperr.ErrBusiness("invalid_image")}})
	require.NoError(t, ctrl.Start(ctx, ownerToken, ""))

	_, err := ctrl.Settings.UploadLogo(ctx, strings.NewReader("not an image"))
	merr, ok := AsMutationError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, merr.Kind)
}
