package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/repositories/memory"
	appServices "github.com/yigit/catequesis/internal/app/services"
	"github.com/yigit/catequesis/internal/config"
	"github.com/yigit/catequesis/internal/pkg/auth"
)

func TestCreateDefaultData(t *testing.T) {
	auth.BcryptCost = bcrypt.MinCost
	ctx := context.Background()
	repos := memory.NewRepositories(memory.NewDB())
	svc := appServices.NewServices(repos, zerolog.Nop())

	cfg := &config.Config{}
	require.NoError(t, CreateDefaultData(ctx, cfg, svc.Auth, zerolog.Nop()))
	admins, err := repos.Users.ListByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Empty(t, admins)

	cfg.Seed.AdminUsername = "admin"
	cfg.Seed.AdminPassword = "primera"
	require.NoError(t, CreateDefaultData(ctx, cfg, svc.Auth, zerolog.Nop()))

	cfg.Seed.AdminPassword = "segunda"
	require.NoError(t, CreateDefaultData(ctx, cfg, svc.Auth, zerolog.Nop()))

	admins, err = repos.Users.ListByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "Administrador", admins[0].FullName)

	_, err = svc.Auth.Login(ctx, "admin", "segunda")
	assert.NoError(t, err)
	_, err = svc.Auth.Login(ctx, "admin", "primera")
	assert.Error(t, err)
}

func TestCreateDefaultDataRequiresPassword(t *testing.T) {
	repos := memory.NewRepositories(memory.NewDB())
	svc := appServices.NewServices(repos, zerolog.Nop())

	cfg := &config.Config{}
	cfg.Seed.AdminUsername = "admin"
	assert.Error(t, CreateDefaultData(context.Background(), cfg, svc.Auth, zerolog.Nop()))
}
