// Package database opens the poster API's MariaDB pool and the front end's
// Redis client, and applies schema migrations. Both wait for their service
// to come up, since compose starts every container at once.
package database

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the "mysql" driver.
	_ "github.com/go-sql-driver/mysql"

	"github.com/keyxmakerx/posterdesk/internal/config"
)

// NewMariaDB opens a pool sized from cfg and returns once a ping succeeds.
func NewMariaDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening mariadb connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := pingUntilReady(ctx, "mariadb", startupBackoff, db.PingContext); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
