package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/schedmate/internal/dashboard"
	"github.com/BruksfildServices01/schedmate/internal/httperr"
	"github.com/BruksfildServices01/schedmate/internal/remote"
)

const (
	SessionCookie = "schedmate_session"
	LoginPath     = "/web/app/login"

	ContextController = "dashboard"
	ContextOwnerID    = "ownerID"
	ContextToken      = "sessionToken"
)

// SessionToken reads the session cookie, falling back to a Bearer header.
func SessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

type resolveFunc func(ctx context.Context, token, fragment string) (*dashboard.Controller, error)

func denyJSON(c *gin.Context) {
	c.Abort()
	httperr.Unauthorized(c, "not_authenticated", "Please log in to continue.")
}

func denyPage(c *gin.Context) {
	c.Redirect(http.StatusFound, LoginPath)
	c.Abort()
}

// SessionGuard answers 401 JSON when the request has no live session.
func SessionGuard(reg *dashboard.Registry) gin.HandlerFunc {
	return guard(reg.Resolve, denyJSON)
}

// PageGuard redirects to the login page when the request has no live
// session.
func PageGuard(reg *dashboard.Registry) gin.HandlerFunc {
	return guard(reg.Resolve, denyPage)
}

// SessionLoadGuard is SessionGuard for full dashboard loads: the view is
// taken from ?fragment= and the initial loads run again.
func SessionLoadGuard(reg *dashboard.Registry) gin.HandlerFunc {
	return guard(reg.Load, denyJSON)
}

// PageLoadGuard is PageGuard for full dashboard loads.
func PageLoadGuard(reg *dashboard.Registry) gin.HandlerFunc {
	return guard(reg.Load, denyPage)
}

func guard(resolve resolveFunc, deny gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)

		ctrl, err := resolve(c.Request.Context(), token, c.Query("fragment"))
		if err != nil {
			if !errors.Is(err, remote.ErrNoSession) {
				_ = c.Error(err)
			}
			deny(c)
			return
		}

		owner, _ := ctrl.State().OwnerID()
		c.Set(ContextController, ctrl)
		c.Set(ContextOwnerID, owner)
		c.Set(ContextToken, token)

		c.Next()
	}
}

func Controller(c *gin.Context) *dashboard.Controller {
	ctrl, _ := c.MustGet(ContextController).(*dashboard.Controller)
	return ctrl
}

func OwnerID(c *gin.Context) uint {
	return c.GetUint(ContextOwnerID)
}
