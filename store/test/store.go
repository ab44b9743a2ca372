package teststore

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/memwallet/memwallet/internal/profile"
	"github.com/memwallet/memwallet/store"
	"github.com/memwallet/memwallet/store/db"
)

// testSecretKey keeps the encryption path active in tests.
const testSecretKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

// NewTestingStore returns a migrated store backed by a throwaway
// database. Set DRIVER=postgres and DSN to run the suite against
// PostgreSQL; the default is a SQLite file under t.TempDir().
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	testProfile := getTestingProfile(t)
	dbDriver, err := db.NewDBDriver(testProfile)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}
	st, err := store.New(dbDriver, testProfile)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func getTestingProfile(t *testing.T) *profile.Profile {
	dir := t.TempDir()
	mode := "dev"
	driver := getDriverFromEnv()
	dsn := os.Getenv("DSN")
	if driver == "sqlite" {
		dsn = fmt.Sprintf("%s/memwallet_%s.db", dir, mode)
	}
	return &profile.Profile{
		Mode:      mode,
		Driver:    driver,
		DSN:       dsn,
		Persona:   "Personal",
		SecretKey: testSecretKey,
	}
}

func getDriverFromEnv() string {
	driver := os.Getenv("DRIVER")
	if driver == "" {
		driver = "sqlite"
	}
	return driver
}
