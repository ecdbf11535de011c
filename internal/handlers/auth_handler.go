package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/schedmate/internal/config"
	"github.com/BruksfildServices01/schedmate/internal/dashboard"
	"github.com/BruksfildServices01/schedmate/internal/httperr"
	"github.com/BruksfildServices01/schedmate/internal/httpresp"
	"github.com/BruksfildServices01/schedmate/internal/middleware"
	"github.com/BruksfildServices01/schedmate/internal/models"
	"github.com/BruksfildServices01/schedmate/internal/remote"
	"github.com/BruksfildServices01/schedmate/internal/validators"
)

const ResetSentMessage = "If that email exists, we've sent a reset link."

type AuthHandler struct {
	store    remote.Store
	registry *dashboard.Registry
	config   *config.Config
	log      *zap.Logger
}

func NewAuthHandler(store remote.Store, reg *dashboard.Registry, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{store: store, registry: reg, config: cfg, log: log}
}

// --------- Requests ---------

type SignUpRequest struct {
	BusinessName string `json:"business_name"`
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ResetRequest struct {
	Email string `json:"email" binding:"required"`
}

type ResetConfirmRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	User      sessionUser `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Redirect  string      `json:"redirect"`
}

type sessionUser struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// --------- Handlers ---------

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Email and password are required.")
		return
	}

	email := validators.NormalizeEmail(req.Email)
	if !validators.IsEmailSyntaxValid(email) {
		httperr.BadRequest(c, "invalid_email", "Enter a valid email address.")
		return
	}
	if h.config.CheckEmailDomain && !validators.IsEmailDomainValid(email) {
		httperr.BadRequest(c, "invalid_email_domain", "The email domain does not look valid.")
		return
	}

	ctx := c.Request.Context()
	session, err := h.store.Auth.SignUp(ctx, email, req.Password)
	switch {
	case errors.Is(err, remote.ErrEmailTaken):
		httperr.Conflict(c, "email_taken", "An account with this email already exists.")
		return
	case errors.Is(err, remote.ErrWeakPassword):
		httperr.BadRequest(c, "weak_password", "Password must be at least 6 characters.")
		return
	case err != nil:
		h.log.Error("sign up failed", zap.Error(err))
		httperr.Internal(c, "signup_failed", "Could not create your account. Please try again.")
		return
	}

	profile := models.BusinessProfile{
		OwnerID:      session.UserID,
		BusinessName: strings.TrimSpace(req.BusinessName),
		ContactEmail: session.Email,
		StartTime:    dashboard.DefaultStartTime,
		EndTime:      dashboard.DefaultEndTime,
	}
	if err := h.store.Profiles.Upsert(ctx, &profile, remote.ColumnOwnerID); err != nil {
		// The account exists; settings fall back to first-time defaults.
		h.log.Error("create business profile failed", zap.Uint("owner_id", session.UserID), zap.Error(err))
	}

	h.setSessionCookie(c, session)
	c.JSON(http.StatusCreated, newSessionResponse(session))
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Email and password are required.")
		return
	}

	session, err := h.store.Auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, remote.ErrInvalidCredentials) {
			httperr.Unauthorized(c, "invalid_credentials", "Invalid email or password.")
			return
		}
		h.log.Error("sign in failed", zap.Error(err))
		httperr.Internal(c, "signin_failed", "Could not sign you in. Please try again.")
		return
	}

	h.setSessionCookie(c, session)
	httpresp.OK(c, newSessionResponse(session))
}

// SignOut revokes the current token and forgets its dashboard state.
func (h *AuthHandler) SignOut(c *gin.Context) {
	token := middleware.SessionToken(c)
	if token != "" {
		if err := h.store.Auth.SignOut(c.Request.Context(), token); err != nil {
			h.log.Error("sign out failed", zap.Error(err))
			httperr.Internal(c, "signout_failed", "Could not sign you out. Please try again.")
			return
		}
		h.registry.Drop(token)
	}

	h.clearSessionCookie(c)
	httpresp.OK(c, gin.H{"redirect": "/"})
}

func (h *AuthHandler) SendReset(c *gin.Context) {
	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Enter your email address.")
		return
	}

	redirect := strings.TrimRight(h.config.PublicBaseURL, "/") + "/web/app/reset"
	if err := h.store.Auth.SendPasswordReset(c.Request.Context(), req.Email, redirect); err != nil {
		h.log.Error("send password reset failed", zap.Error(err))
		httperr.Internal(c, "reset_failed", "Could not send the reset link. Please try again.")
		return
	}

	httpresp.OK(c, gin.H{"message": ResetSentMessage})
}

func (h *AuthHandler) ConfirmReset(c *gin.Context) {
	var req ResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Token and new password are required.")
		return
	}

	err := h.store.Auth.ResetPassword(c.Request.Context(), req.Token, req.Password)
	switch {
	case errors.Is(err, remote.ErrWeakPassword):
		httperr.BadRequest(c, "weak_password", "Password must be at least 6 characters.")
		return
	case errors.Is(err, remote.ErrInvalidResetToken):
		httperr.BadRequest(c, "invalid_reset_token", "This reset link is invalid or has expired.")
		return
	case err != nil:
		h.log.Error("reset password failed", zap.Error(err))
		httperr.Internal(c, "reset_failed", "Could not reset your password. Please try again.")
		return
	}

	httpresp.OK(c, gin.H{"redirect": middleware.LoginPath})
}

// --------- Cookies ---------

func (h *AuthHandler) setSessionCookie(c *gin.Context, s *remote.Session) {
	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, s.Token, maxAge, "/", "", h.secureCookies(), true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookies(), true)
}

func (h *AuthHandler) secureCookies() bool {
	return strings.HasPrefix(h.config.PublicBaseURL, "https://")
}

func newSessionResponse(s *remote.Session) sessionResponse {
	return sessionResponse{
		User:      sessionUser{ID: s.UserID, Email: s.Email},
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		Redirect:  "/web/app/dashboard",
	}
}
