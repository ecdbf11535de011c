package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/schedmate/internal/audit"
	"github.com/BruksfildServices01/schedmate/internal/config"
	"github.com/BruksfildServices01/schedmate/internal/dashboard"
	"github.com/BruksfildServices01/schedmate/internal/domain/booking"
	"github.com/BruksfildServices01/schedmate/internal/handlers"
	"github.com/BruksfildServices01/schedmate/internal/infra/auth"
	"github.com/BruksfildServices01/schedmate/internal/infra/repository"
	"github.com/BruksfildServices01/schedmate/internal/logging"
	"github.com/BruksfildServices01/schedmate/internal/media"
	"github.com/BruksfildServices01/schedmate/internal/middleware"
	"github.com/BruksfildServices01/schedmate/internal/remote"
	"github.com/BruksfildServices01/schedmate/web"
)

// Infra holds the connections opened in main. Mailer and Logos are
// optional overrides; by default reset links are logged and logos go to
// S3 when a bucket is configured.
type Infra struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Mailer auth.Mailer
	Logos  dashboard.LogoStore
}

type Deps struct {
	DB       *gorm.DB
	Store    remote.Store
	Registry *dashboard.Registry
	Config   *config.Config
	Log      *zap.Logger
}

type App struct {
	Engine   *gin.Engine
	Registry *dashboard.Registry
	Audit    *audit.Dispatcher
}

// Close drains pending audit events.
func (a *App) Close() {
	a.Audit.Close()
}

// Build wires the singletons and returns the HTTP engine.
func Build(cfg *config.Config, infra Infra, log *zap.Logger) (*App, error) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	catalog, err := booking.LoadCatalog(cfg.ServiceCatalogFile)
	if err != nil {
		return nil, err
	}

	mailer := infra.Mailer
	if mailer == nil {
		mailer = auth.NewLogMailer(log.Named("mail"))
	}

	authService := auth.NewService(infra.DB, infra.Redis, mailer, log.Named("auth"), auth.Options{
		Secret:   cfg.JWTSecret,
		TTL:      cfg.SessionTTL,
		ResetTTL: cfg.ResetTTL,
	})
	store := repository.NewStore(infra.DB, authService)

	auditDispatcher := audit.NewDispatcher(audit.New(infra.DB), log.Named("audit"))

	logos := infra.Logos
	if logos == nil && cfg.LogosEnabled() {
		logos = media.NewLogoService(media.NewS3Store(cfg.S3), log.Named("media"))
	}

	// ======================================================
	// DASHBOARD SESSIONS
	// ======================================================
	registry := dashboard.NewRegistry(authService, func() *dashboard.Controller {
		return dashboard.NewController(store, dashboard.Options{
			Catalog:  catalog,
			Timezone: cfg.Timezone,
			Logos:    logos,
			Audit:    auditDispatcher,
			Log:      log.Named("dashboard"),
		})
	}, log.Named("sessions"))

	engine, err := NewEngine(Deps{
		DB:       infra.DB,
		Store:    store,
		Registry: registry,
		Config:   cfg,
		Log:      log,
	})
	if err != nil {
		auditDispatcher.Close()
		return nil, err
	}

	return &App{Engine: engine, Registry: registry, Audit: auditDispatcher}, nil
}

// NewEngine builds the gin engine with recovery, request logging, the
// embedded templates and static assets, and every route.
func NewEngine(d Deps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger(d.Log))

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(web.Static()))

	RegisterRoutes(r, d)
	return r, nil
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.CORSMiddleware(d.Config.CORSOrigins...))

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(d.Store, d.Registry, d.Config, d.Log)
	meHandler := handlers.NewMeHandler()
	dashboardHandler := handlers.NewDashboardHandler()
	clientHandler := handlers.NewClientHandler()
	bookingHandler := handlers.NewBookingHandler()
	settingsHandler := handlers.NewSettingsHandler()
	preferencesHandler := handlers.NewPreferencesHandler()
	auditLogsHandler := handlers.NewAuditLogsHandler(d.DB)
	appWebHandler := handlers.NewAppWebHandler()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, middleware.LoginPath)
	})

	// ======================================================
	// WEB (HTML)
	// ======================================================
	webApp := r.Group("/web/app")
	{
		webApp.GET("/login", appWebHandler.LoginPage)
		webApp.GET("/signup", appWebHandler.SignupPage)
		webApp.GET("/reset", appWebHandler.ResetPage)

		// A full page load re-runs the initial loads; the body endpoint
		// only re-renders after in-page events.
		webApp.GET("/dashboard", middleware.PageLoadGuard(d.Registry), appWebHandler.Dashboard)
		webApp.GET("/dashboard/body", middleware.PageGuard(d.Registry), appWebHandler.DashboardBody)
	}

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/signup", authHandler.SignUp)
		api.POST("/auth/signin", authHandler.SignIn)
		api.POST("/auth/signout", authHandler.SignOut)
		api.POST("/auth/reset", authHandler.SendReset)
		api.POST("/auth/reset/confirm", authHandler.ConfirmReset)

		// ------------------------------
		// SESSION REQUIRED
		// ------------------------------
		api.GET("/dashboard", middleware.SessionLoadGuard(d.Registry), dashboardHandler.Get)

		secured := api.Group("/")
		secured.Use(middleware.SessionGuard(d.Registry))
		{
			secured.POST("/dashboard/events", dashboardHandler.Event)

			secured.GET("/me", meHandler.GetMe)

			secured.GET("/me/clients", clientHandler.List)
			secured.POST("/me/clients", clientHandler.Create)
			secured.PUT("/me/clients/:id", clientHandler.Update)
			secured.DELETE("/me/clients/:id", clientHandler.Delete)

			secured.GET("/me/bookings", bookingHandler.ListToday)
			secured.POST("/me/bookings", bookingHandler.Create)
			secured.PUT("/me/bookings/:id", bookingHandler.Update)

			secured.GET("/me/settings", settingsHandler.Get)
			secured.PUT("/me/settings", settingsHandler.Update)
			secured.POST("/me/settings/logo", settingsHandler.UploadLogo)

			secured.PUT("/me/preferences", preferencesHandler.Update)

			secured.GET("/me/audit-logs", auditLogsHandler.List)
		}
	}
}
