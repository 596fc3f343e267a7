package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// AdminCreator creates the admin account when it does not exist yet
type AdminCreator interface {
	EnsureAdmin(ctx context.Context, name, email, password string) (bool, error)
}

// DefaultAdminName is the display name of the seeded admin account
const DefaultAdminName = "Administrator"

// CreateDefaultData creates the initial admin account if one is configured.
// Running it again is a no-op.
func CreateDefaultData(ctx context.Context, admins AdminCreator, adminEmail, adminPassword string, lgr zerolog.Logger) error {
	if adminEmail == "" || adminPassword == "" {
		lgr.Info().Msg("No seed admin configured, skipping default data")
		return nil
	}

	created, err := admins.EnsureAdmin(ctx, DefaultAdminName, adminEmail, adminPassword)
	if err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	if created {
		lgr.Info().Str("email", adminEmail).Msg("Seed admin account created")
	} else {
		lgr.Debug().Str("email", adminEmail).Msg("Seed admin account already exists")
	}
	return nil
}
