package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"

	"github.com/pkg/errors"

	"github.com/memwallet/memwallet/internal/version"
)

// The migration layout follows store/migration/{driver}/{minor}/NN__description.sql,
// with LATEST.sql holding the full current schema for fresh installations.
// The applied schema version is tracked in system_setting.

//go:embed migration
var migrationFS embed.FS

const (
	// MigrateFileNameSplit separates the patch number from the description
	// in a migration file name, e.g. "1__create_card.sql".
	MigrateFileNameSplit = "__"
	// LatestSchemaFileName holds the full schema for new installations.
	LatestSchemaFileName = "LATEST.sql"

	settingSchemaVersion = "schema_version"
)

// Migrate brings the database schema up to the current version.
// Fresh databases get the full schema in one shot; existing ones apply
// incremental files newer than their recorded version.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check database state")
	}

	currentSchemaVersion := version.GetSchemaVersion(version.GetCurrentVersion(s.profile.Mode))

	if !initialized {
		if err := s.applyLatestSchema(ctx); err != nil {
			return errors.Wrap(err, "failed to apply latest schema")
		}
		if err := s.setSchemaVersion(ctx, currentSchemaVersion); err != nil {
			return errors.Wrap(err, "failed to record schema version")
		}
		slog.Info("database initialized", slog.String("schema_version", currentSchemaVersion))
		return nil
	}

	storedVersion, err := s.getSchemaVersion(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read schema version")
	}
	if storedVersion == "" {
		// Pre-versioning installation; assume current layout.
		return s.setSchemaVersion(ctx, currentSchemaVersion)
	}
	if version.IsVersionGreaterThan(storedVersion, currentSchemaVersion) {
		return errors.Errorf("database schema %s is newer than server schema %s", storedVersion, currentSchemaVersion)
	}
	if storedVersion == currentSchemaVersion {
		return nil
	}

	files, err := s.collectMigrationsAfter(storedVersion)
	if err != nil {
		return err
	}
	for _, file := range files {
		buf, err := migrationFS.ReadFile(file)
		if err != nil {
			return errors.Wrapf(err, "failed to read migration %s", file)
		}
		if _, err := s.driver.GetDB().ExecContext(ctx, string(buf)); err != nil {
			return errors.Wrapf(err, "failed to apply migration %s", file)
		}
		slog.Info("applied migration", slog.String("file", file))
	}
	return s.setSchemaVersion(ctx, currentSchemaVersion)
}

func (s *Store) applyLatestSchema(ctx context.Context) error {
	schemaPath := path.Join("migration", s.profile.Driver, LatestSchemaFileName)
	buf, err := migrationFS.ReadFile(schemaPath)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", schemaPath)
	}
	if _, err := s.driver.GetDB().ExecContext(ctx, string(buf)); err != nil {
		return errors.Wrapf(err, "failed to execute %s", schemaPath)
	}
	return nil
}

// collectMigrationsAfter returns migration files for versions newer than
// the stored version, sorted by version directory then file name.
func (s *Store) collectMigrationsAfter(storedVersion string) ([]string, error) {
	root := path.Join("migration", s.profile.Driver)
	var files []string
	err := fs.WalkDir(migrationFS, root, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() == LatestSchemaFileName {
			return nil
		}
		dirVersion := path.Base(path.Dir(filePath)) + ".0"
		if version.IsVersionGreaterThan(dirVersion, storedVersion) {
			files = append(files, filePath)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to walk migrations")
	}
	sort.Strings(files)
	return files, nil
}

func (s *Store) getSchemaVersion(ctx context.Context) (string, error) {
	query := fmt.Sprintf("SELECT value FROM system_setting WHERE name = %s", s.placeholder(1))
	var value string
	err := s.driver.GetDB().QueryRowContext(ctx, query, settingSchemaVersion).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (s *Store) setSchemaVersion(ctx context.Context, schemaVersion string) error {
	stmt := fmt.Sprintf(
		"INSERT INTO system_setting (name, value) VALUES (%s, %s) ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value",
		s.placeholder(1), s.placeholder(2),
	)
	_, err := s.driver.GetDB().ExecContext(ctx, stmt, settingSchemaVersion, schemaVersion)
	return err
}

func (s *Store) placeholder(n int) string {
	if s.profile.Driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}
