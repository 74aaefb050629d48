package migrations

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
)

func TestFS_HasBaseline(t *testing.T) {
	files, err := fs.Glob(FS, "*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 || files[0] != "00001_baseline.sql" {
		t.Fatalf("expected baseline migration first, got %v", files)
	}
}

func TestUp_DBError(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	// No expectations: the first statement goose issues fails.
	_, err = Up(context.Background(), db, goose.DialectPostgres)
	if err == nil {
		t.Fatal("expected error from Up, got nil")
	}
	if !strings.Contains(err.Error(), "migration error") {
		t.Errorf("expected wrapped migration error, got: %v", err)
	}
}

func TestUp_NilDB(t *testing.T) {
	_, err := Up(context.Background(), nil, goose.DialectMySQL)
	if err == nil {
		t.Fatal("expected error when db is nil, got nil")
	}
	if !strings.Contains(err.Error(), "db is nil") {
		t.Errorf("expected 'db is nil' error, got: %v", err)
	}
}
