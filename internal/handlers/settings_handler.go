package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/schedmate/internal/dashboard"
	"github.com/BruksfildServices01/schedmate/internal/httperr"
	"github.com/BruksfildServices01/schedmate/internal/httpresp"
	"github.com/BruksfildServices01/schedmate/internal/media"
	"github.com/BruksfildServices01/schedmate/internal/middleware"
)

type SettingsHandler struct {
	now func() time.Time
}

func NewSettingsHandler() *SettingsHandler {
	return &SettingsHandler{now: time.Now}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	ctrl := middleware.Controller(c)
	_ = ctrl.Settings.Load(c.Request.Context())

	httpresp.OK(c, dashboard.RenderSettings(ctrl.State(), h.now()))
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var req dashboard.SettingsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	ctrl := middleware.Controller(c)
	if _, err := ctrl.Settings.Save(c.Request.Context(), req); err != nil {
		writeMutationError(c, err)
		return
	}

	httpresp.OK(c, dashboard.RenderSettings(ctrl.State(), h.now()))
}

// UploadLogo takes a multipart "logo" file.
func (h *SettingsHandler) UploadLogo(c *gin.Context) {
	ctrl := middleware.Controller(c)
	if !ctrl.Settings.LogosEnabled() {
		httperr.Write(c, http.StatusServiceUnavailable, "logos_disabled", "Logo uploads are not configured.")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, media.MaxLogoBytes+1<<20)

	fh, err := c.FormFile("logo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httperr.Write(c, http.StatusRequestEntityTooLarge, "logo_too_large", dashboard.LogoRulesMessage)
			return
		}
		httperr.BadRequest(c, "missing_logo", "Choose an image to upload.")
		return
	}

	f, err := fh.Open()
	if err != nil {
		httperr.BadRequest(c, "invalid_logo", "Could not read the uploaded file.")
		return
	}
	defer f.Close()

	url, err := ctrl.Settings.UploadLogo(c.Request.Context(), f)
	if err != nil {
		writeMutationError(c, err)
		return
	}

	httpresp.OK(c, gin.H{"logo_url": url})
}
