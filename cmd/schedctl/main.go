// Command schedctl runs maintenance tasks against the SchedMate database.
package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/schedmate/internal/config"
	"github.com/BruksfildServices01/schedmate/internal/dashboard"
	dbpkg "github.com/BruksfildServices01/schedmate/internal/db"
	"github.com/BruksfildServices01/schedmate/internal/infra/auth"
	"github.com/BruksfildServices01/schedmate/internal/logging"
	"github.com/BruksfildServices01/schedmate/internal/models"
	"github.com/BruksfildServices01/schedmate/internal/remote"
)

type globals struct {
	cfg *config.Config
	db  *gorm.DB
	log *zap.Logger
}

type MigrateCmd struct{}

func (m *MigrateCmd) Run(g *globals) error {
	if err := dbpkg.Migrate(g.db); err != nil {
		return err
	}
	g.log.Info("migrations applied")
	return nil
}

type CreateUserCmd struct {
	Email        string `required:"" help:"Login email."`
	Password     string `required:"" help:"Initial password (min 6 characters)."`
	BusinessName string `name:"business-name" help:"Creates the business profile with this name."`
}

func (c *CreateUserCmd) Run(g *globals) error {
	ctx := context.Background()

	svc := auth.NewService(g.db, nil, auth.NewLogMailer(g.log), g.log, auth.Options{
		Secret:   g.cfg.JWTSecret,
		TTL:      g.cfg.SessionTTL,
		ResetTTL: g.cfg.ResetTTL,
	})

	user, err := svc.CreateUser(ctx, c.Email, c.Password)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	if c.BusinessName != "" {
		profile := models.BusinessProfile{
			OwnerID:      user.ID,
			BusinessName: c.BusinessName,
			ContactEmail: user.Email,
			StartTime:    dashboard.DefaultStartTime,
			EndTime:      dashboard.DefaultEndTime,
		}
		if err := g.db.WithContext(ctx).Create(&profile).Error; err != nil {
			return fmt.Errorf("create %s: %w", remote.CollectionBusinessProfiles, err)
		}
	}

	g.log.Info("user created", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
	return nil
}

var cli struct {
	Migrate    MigrateCmd    `cmd:"" help:"Create or update database tables."`
	CreateUser CreateUserCmd `cmd:"" name:"create-user" help:"Create a login without going through sign-up."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("schedctl"),
		kong.Description("SchedMate maintenance commands. Reads the same environment as the API."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load()
	kctx.FatalIfErrorf(err)

	log, err := logging.New(cfg.LogLevel)
	kctx.FatalIfErrorf(err)
	defer func() { _ = log.Sync() }()

	db, err := dbpkg.Open(cfg)
	kctx.FatalIfErrorf(err)

	kctx.FatalIfErrorf(kctx.Run(&globals{cfg: cfg, db: db, log: log}))
}
