package database

import (
	"strings"
	"testing"
	"time"
)

func TestPostgresConfigDSN(t *testing.T) {
	cfg := &PostgresConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "payments",
		Password: "s3cret",
		Database: "payments_db",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	for _, want := range []string{
		"host=db.internal",
		"port=5433",
		"user=payments",
		"password=s3cret",
		"dbname=payments_db",
		"sslmode=require",
	} {
		if !strings.Contains(dsn, want) {
			t.Errorf("DSN missing %q: %s", want, dsn)
		}
	}
}

func TestDefaultPostgresConfig(t *testing.T) {
	cfg := DefaultPostgresConfig()

	if cfg.Password != "" {
		t.Error("default config must not embed a password")
	}
	if cfg.MaxRetries < 1 {
		t.Errorf("MaxRetries = %d, want at least one retry", cfg.MaxRetries)
	}
	if cfg.ConnectTimeout <= 0 || cfg.ConnectTimeout > time.Minute {
		t.Errorf("ConnectTimeout = %v, want a bounded dial timeout", cfg.ConnectTimeout)
	}
	if cfg.MinConns > cfg.MaxConns {
		t.Errorf("MinConns %d exceeds MaxConns %d", cfg.MinConns, cfg.MaxConns)
	}
}
