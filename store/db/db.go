package db

import (
	"github.com/pkg/errors"

	"github.com/Avaneesh16/Travel-Genie/internal/profile"
	"github.com/Avaneesh16/Travel-Genie/store"
	"github.com/Avaneesh16/Travel-Genie/store/db/postgres"
	"github.com/Avaneesh16/Travel-Genie/store/db/sqlite"
)

// ============================================================================
// DATABASE SUPPORT POLICY
// ============================================================================
// SQLite is the default; PostgreSQL serves multi-instance deployments.
// Both drivers implement the full store.Driver interface.
// ============================================================================

// NewDBDriver creates new db driver based on profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.New("unknown db driver: only 'postgres' and 'sqlite' are supported")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
