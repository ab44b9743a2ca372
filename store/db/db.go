package db

import (
	"github.com/pkg/errors"

	"github.com/memwallet/memwallet/internal/profile"
	"github.com/memwallet/memwallet/store"
	"github.com/memwallet/memwallet/store/db/postgres"
	"github.com/memwallet/memwallet/store/db/sqlite"
)

// NewDBDriver creates a new db driver based on profile.
//
// SQLite is the default wallet backend and covers every feature except
// vector search. PostgreSQL adds pgvector-backed semantic search and is
// the recommended backend for production deployments.
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
