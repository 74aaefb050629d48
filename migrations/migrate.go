// Package migrations embeds the SQL migrations and applies them with goose.
//
// Files follow goose's `NNNNN_name.sql` convention and must stay portable
// across the MySQL and Postgres dialects.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var FS embed.FS

// Up applies every pending migration.  dialect is goose.DialectPostgres or
// goose.DialectMySQL.
func Up(ctx context.Context, db *sql.DB, dialect goose.Dialect) ([]*goose.MigrationResult, error) {
	if db == nil {
		return nil, errors.New("migration error: db is nil")
	}

	p, err := goose.NewProvider(dialect, db, FS)
	if err != nil {
		return nil, fmt.Errorf("migration error creating provider: %w", err)
	}

	results, err := p.Up(ctx)
	if err != nil {
		return results, fmt.Errorf("migration error: %w", err)
	}
	return results, nil
}
