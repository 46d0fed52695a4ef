package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	appModels "github.com/yigit/catequesis/internal/app/models"
	appServices "github.com/yigit/catequesis/internal/app/services"
	"github.com/yigit/catequesis/internal/config"
)

// CreateDefaultData upserts the administrator named in the seed configuration.
// Nothing is written when no administrator is configured.
func CreateDefaultData(ctx context.Context, cfg *config.Config, authService *appServices.AuthService, lgr zerolog.Logger) error {
	username := cfg.Seed.AdminUsername
	if username == "" {
		lgr.Info().Msg("No seed administrator configured, skipping default data")
		return nil
	}
	if cfg.Seed.AdminPassword == "" {
		return errors.New("seed administrator requires a password")
	}

	fullName := cfg.Seed.AdminFullName
	if fullName == "" {
		fullName = "Administrador"
	}

	created, _, err := authService.UpsertUser(ctx, appServices.UpsertUserInput{
		Username: username,
		Password: cfg.Seed.AdminPassword,
		Role:     appModels.RoleAdmin,
		FullName: fullName,
	})
	if err != nil {
		lgr.Error().Err(err).Str("username", username).Msg("Error upserting seed administrator")
		return fmt.Errorf("failed to seed administrator: %w", err)
	}

	if created {
		lgr.Info().Str("username", username).Msg("Default admin user created successfully")
	} else {
		lgr.Info().Str("username", username).Msg("Default admin user already existed, credentials refreshed")
	}
	return nil
}
