package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"

	// Reads migrations from db/migrations on disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// ErrDirtySchema means an earlier migration failed halfway. golang-migrate
// refuses to continue until the version is forced by hand.
var ErrDirtySchema = errors.New("schema is dirty")

// RunMigrations brings users and poster_history up to the newest version in
// migrationsPath and returns that version. Already being current is fine.
func RunMigrations(db *sql.DB, migrationsPath string) (uint, error) {
	driver, err := mysql.WithInstance(db, &mysql.Config{})
	if err != nil {
		return 0, fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "mysql", driver)
	if err != nil {
		return 0, fmt.Errorf("creating migrator: %w", err)
	}
	m.Log = migrateLogger{}

	if _, err := checkVersion(m.Version()); err != nil {
		return 0, err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("running migrations: %w", err)
	}
	return checkVersion(m.Version())
}

// checkVersion turns migrate's (version, dirty, err) triple into a version.
// A fresh database has no version yet and reports 0.
func checkVersion(version uint, dirty bool, err error) (uint, error) {
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("reading schema version: %w", err)
	case dirty:
		return version, fmt.Errorf("version %d: %w", version, ErrDirtySchema)
	}
	return version, nil
}

// migrateLogger routes golang-migrate's progress lines into slog.
type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...any) {
	slog.Debug("migrate", slog.String("msg", fmt.Sprintf(format, v...)))
}

func (migrateLogger) Verbose() bool { return false }
