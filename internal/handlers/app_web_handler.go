package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/schedmate/internal/middleware"
)

type AppWebHandler struct{}

func NewAppWebHandler() *AppWebHandler {
	return &AppWebHandler{}
}

func (h *AppWebHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "base", gin.H{
		"Page":  "login",
		"Prefs": ReadPreferences(c),
	})
}

func (h *AppWebHandler) SignupPage(c *gin.Context) {
	c.HTML(http.StatusOK, "base", gin.H{
		"Page":  "signup",
		"Prefs": ReadPreferences(c),
	})
}

// ResetPage asks for an email, or for a new password when the link's
// token is present.
func (h *AppWebHandler) ResetPage(c *gin.Context) {
	c.HTML(http.StatusOK, "base", gin.H{
		"Page":  "reset",
		"Token": c.Query("token"),
		"Prefs": ReadPreferences(c),
	})
}

func (h *AppWebHandler) Dashboard(c *gin.Context) {
	c.HTML(http.StatusOK, "base", gin.H{
		"Page":  "dashboard",
		"View":  middleware.Controller(c).Render(),
		"Prefs": ReadPreferences(c),
	})
}

// DashboardBody re-renders only the dashboard markup for in-page updates.
func (h *AppWebHandler) DashboardBody(c *gin.Context) {
	c.HTML(http.StatusOK, "dashboard-body", gin.H{
		"View":  middleware.Controller(c).Render(),
		"Prefs": ReadPreferences(c),
	})
}
