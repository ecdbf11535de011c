package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/schedmate/internal/httperr"
	"github.com/BruksfildServices01/schedmate/internal/httpresp"
)

const (
	ThemeCookie    = "schedmate_theme"
	TutorialCookie = "schedmate_tutorial_dismissed"

	ThemeLight = "light"
	ThemeDark  = "dark"

	preferenceMaxAge = 365 * 24 * 60 * 60
)

type Preferences struct {
	Theme             string `json:"theme"`
	TutorialDismissed bool   `json:"tutorial_dismissed"`
}

// ReadPreferences falls back to the light theme and an undismissed
// tutorial when cookies are missing or malformed.
func ReadPreferences(c *gin.Context) Preferences {
	p := Preferences{Theme: ThemeLight}

	if theme, err := c.Cookie(ThemeCookie); err == nil && (theme == ThemeLight || theme == ThemeDark) {
		p.Theme = theme
	}
	if v, err := c.Cookie(TutorialCookie); err == nil {
		p.TutorialDismissed, _ = strconv.ParseBool(v)
	}
	return p
}

type PreferencesHandler struct{}

func NewPreferencesHandler() *PreferencesHandler {
	return &PreferencesHandler{}
}

type UpdatePreferencesRequest struct {
	Theme             *string `json:"theme"`
	TutorialDismissed *bool   `json:"tutorial_dismissed"`
}

func (h *PreferencesHandler) Update(c *gin.Context) {
	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	prefs := ReadPreferences(c)
	c.SetSameSite(http.SameSiteLaxMode)

	if req.Theme != nil {
		if *req.Theme != ThemeLight && *req.Theme != ThemeDark {
			httperr.BadRequest(c, "invalid_theme", "Theme must be light or dark.")
			return
		}
		prefs.Theme = *req.Theme
		c.SetCookie(ThemeCookie, prefs.Theme, preferenceMaxAge, "/", "", false, false)
	}

	if req.TutorialDismissed != nil {
		prefs.TutorialDismissed = *req.TutorialDismissed
		c.SetCookie(TutorialCookie, strconv.FormatBool(prefs.TutorialDismissed), preferenceMaxAge, "/", "", false, false)
	}

	httpresp.OK(c, prefs)
}
