package db

import (
	"testing"

	"github.com/toeiclab/toeic-backend/internal/platform/logger"
)

func TestPostgresDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "u", Password: "p", Name: "toeic"}
	if got, want := cfg.PostgresDSN(), "postgres://u:p@db:5432/toeic?sslmode=disable"; got != want {
		t.Fatalf("PostgresDSN=%q want %q", got, want)
	}
	cfg.DSN = "postgres://override"
	if got := cfg.PostgresDSN(); got != "postgres://override" {
		t.Fatalf("PostgresDSN=%q", got)
	}
}

func TestNewServiceSQLiteMigrates(t *testing.T) {
	svc, err := NewService(Config{Driver: DriverSQLite, SQLitePath: ":memory:"}, logger.Nop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	if svc.Driver() != DriverSQLite {
		t.Fatalf("driver=%q", svc.Driver())
	}
	if err := svc.AutoMigrateAll(); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	for _, table := range []string{"item", "attempt", "learner_profile"} {
		if !svc.DB().Migrator().HasTable(table) {
			t.Fatalf("missing table %q", table)
		}
	}
}

func TestNewServiceRejectsUnknownDriver(t *testing.T) {
	if _, err := NewService(Config{Driver: "oracle"}, logger.Nop()); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
