package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/inventario/internal/apperr"
	"github.com/yanizio/inventario/internal/config"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "pgx"), mock
}

func testConfig(retries int) config.Database {
	return config.Database{
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
		ConnectTimeout:  time.Second,
		ConnectRetries:  retries,
		RetryBackoff:    time.Millisecond,
	}
}

func TestDriverName(t *testing.T) {
	cases := map[string]string{
		"postgres":   "pgx",
		"PostgreSQL": "pgx",
		"pgx":        "pgx",
		"mysql":      "mysql",
		"MariaDB":    "mysql",
	}
	for in, want := range cases {
		got, err := DriverName(in)
		if err != nil || got != want {
			t.Fatalf("DriverName(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := DriverName("oracle"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.Database{Driver: "sqlite", DSN: "file::memory:"})
	if !apperr.Is(err, apperr.KindDatabase) {
		t.Fatalf("expected database error, got %v", err)
	}
}

func TestPrepare_RetriesPing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectPing()

	if err := prepare(context.Background(), db, testConfig(2)); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
	if got := db.Stats().MaxOpenConnections; got != 4 {
		t.Fatalf("max open conns = %d, want 4", got)
	}
}

func TestPrepare_GivesUpAfterRetries(t *testing.T) {
	db, mock := newMock(t)
	for i := 0; i < 2; i++ {
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	}

	err := prepare(context.Background(), db, testConfig(1))
	if !apperr.Is(err, apperr.KindDatabase) {
		t.Fatalf("expected database error, got %v", err)
	}
	if err.Error() != "connection refused" {
		t.Fatalf("cause message rewritten: %q", err.Error())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPrepare_CancelledContext(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig(3)
	cfg.RetryBackoff = time.Hour
	err := prepare(ctx, db, cfg)
	if !apperr.Is(err, apperr.KindDatabase) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled database error, got %v", err)
	}
}

func TestPrepare_MigrationFailure(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectPing()

	cfg := testConfig(0)
	cfg.Migrate = true

	// goose's first query has no expectation, so the migration fails.
	err := prepare(context.Background(), db, cfg)
	if !apperr.Is(err, apperr.KindMigration) {
		t.Fatalf("expected migration error, got %v", err)
	}
}

func TestPing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectPing().WillReturnError(errors.New("gone"))

	if err := Ping(context.Background(), db); !apperr.Is(err, apperr.KindDatabase) {
		t.Fatalf("expected database error, got %v", err)
	}

	mock.ExpectPing()
	if err := Ping(context.Background(), db); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
