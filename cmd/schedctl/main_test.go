package main

import (
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/schedmate/internal/config"
	"github.com/BruksfildServices01/schedmate/internal/models"
	"github.com/BruksfildServices01/schedmate/internal/testutil"
)

func TestParseCreateUser(t *testing.T) {
	var args struct {
		Migrate    MigrateCmd    `cmd:""`
		CreateUser CreateUserCmd `cmd:"" name:"create-user"`
	}
	parser, err := kong.New(&args)
	require.NoError(t, err)

	kctx, err := parser.Parse([]string{"create-user", "--email", "a@b.test", "--password", "secret123", "--business-name", "Sparkle"})
	require.NoError(t, err)
	assert.Equal(t, "create-user", kctx.Command())
	assert.Equal(t, "Sparkle", args.CreateUser.BusinessName)

	_, err = parser.Parse([]string{"create-user", "--email", "a@b.test"})
	assert.Error(t, err, "password is required")
}

func TestCreateUserWithProfile(t *testing.T) {
	db := testutil.NewDB(t)
	g := &globals{cfg: &config.Config{JWTSecret: "x"}, db: db, log: zap.NewNop()}

	require.NoError(t, (&MigrateCmd{}).Run(g))

	cmd := &CreateUserCmd{Email: " Owner@Sparkle.test", Password: "secret123", BusinessName: "Sparkle"}
	require.NoError(t, cmd.Run(g))

	var user models.User
	require.NoError(t, db.Where("email = ?", "owner@sparkle.test").First(&user).Error)

	var profile models.BusinessProfile
	require.NoError(t, db.Where("owner_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "Sparkle", profile.BusinessName)
	assert.Equal(t, "08:00", profile.StartTime)

	assert.Error(t, cmd.Run(g), "duplicate email")
}
