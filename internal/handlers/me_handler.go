package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/schedmate/internal/dashboard"
	"github.com/BruksfildServices01/schedmate/internal/httperr"
	"github.com/BruksfildServices01/schedmate/internal/httpresp"
	"github.com/BruksfildServices01/schedmate/internal/middleware"
)

type MeHandler struct{}

func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

type meResponse struct {
	User        meUser                 `json:"user"`
	Business    dashboard.SettingsView `json:"business"`
	Preferences Preferences            `json:"preferences"`
}

type meUser struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"session_expires_at"`
}

func (h *MeHandler) GetMe(c *gin.Context) {
	s := middleware.Controller(c).State()
	if s.Identity == nil {
		httperr.Unauthorized(c, "not_authenticated", "Please log in to continue.")
		return
	}

	httpresp.OK(c, meResponse{
		User: meUser{
			ID:        s.Identity.UserID,
			Email:     s.Identity.Email,
			ExpiresAt: s.Identity.ExpiresAt,
		},
		Business:    dashboard.RenderSettings(s, time.Now()),
		Preferences: ReadPreferences(c),
	})
}
