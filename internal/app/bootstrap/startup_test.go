package bootstrap

import (
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/twfhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:            "mongodb://localhost:27017",
		MongoDatabase:       "twfhub",
		SessionKey:          strings.Repeat("k", 40),
		TrackReadPosts:      true,
		OldPostDays:         14,
		ReadCleanupInterval: time.Hour,
		AuditLogTwf:         "all",
		AuditLogAuth:        "db",
	}
}

func TestValidateApp(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", func(*AppConfig) {}, ""},
		{"short session key", func(c *AppConfig) { c.SessionKey = "short" }, "session_key"},
		{"negative old_post_days", func(c *AppConfig) { c.OldPostDays = -1 }, "old_post_days"},
		{"zero old_post_days allowed", func(c *AppConfig) { c.OldPostDays = 0 }, ""},
		{"bad csrf key length", func(c *AppConfig) { c.CSRFKey = "abc" }, "csrf_key"},
		{"good csrf key", func(c *AppConfig) { c.CSRFKey = strings.Repeat("c", 32) }, ""},
		{"missing database", func(c *AppConfig) { c.MongoDatabase = "" }, "mongo_database"},
		{"negative interval", func(c *AppConfig) { c.ReadCleanupInterval = -time.Second }, "read_cleanup_interval"},
		{"unknown audit mode", func(c *AppConfig) { c.AuditLogTwf = "everything" }, "audit_log_twf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := validateApp(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCSRFKey(t *testing.T) {
	cfg := validConfig()
	if got := cfg.csrfKey(); len(got) != 32 || string(got) != cfg.SessionKey[:32] {
		t.Errorf("derived key = %q", got)
	}

	cfg.CSRFKey = strings.Repeat("x", 32)
	if got := string(cfg.csrfKey()); got != cfg.CSRFKey {
		t.Errorf("explicit key not used, got %q", got)
	}
}

func TestCleanupEnabled(t *testing.T) {
	cfg := validConfig()
	if !cleanupEnabled(cfg) {
		t.Error("expected cleanup enabled")
	}

	off := cfg
	off.OldPostDays = 0
	if cleanupEnabled(off) {
		t.Error("no cutoff should disable cleanup")
	}

	off = cfg
	off.TrackReadPosts = false
	if cleanupEnabled(off) {
		t.Error("tracking off should disable cleanup")
	}

	off = cfg
	off.ReadCleanupInterval = 0
	if cleanupEnabled(off) {
		t.Error("zero interval should disable cleanup")
	}
}

func TestEnsureSchema_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	if err := EnsureSchema(ctx, nil, validConfig(), deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	// Running twice must be harmless.
	if err := EnsureSchema(ctx, nil, validConfig(), deps, testLogger()); err != nil {
		t.Fatalf("second EnsureSchema failed: %v", err)
	}

	cur, err := db.Collection("read_marks").Indexes().List(ctx)
	if err != nil {
		t.Fatalf("list indexes: %v", err)
	}
	var idx []bson.M
	if err := cur.All(ctx, &idx); err != nil {
		t.Fatalf("decode indexes: %v", err)
	}
	if len(idx) < 2 {
		t.Errorf("expected read mark indexes beyond _id, got %d", len(idx))
	}
}

func TestStartupAndShutdown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cfg := validConfig()
	deps := DBDeps{MongoDatabase: db}

	if err := Startup(ctx, nil, cfg, deps, testLogger()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}
	s := currentServices(cfg, deps, testLogger())
	if s.stack == nil || s.events == nil {
		t.Fatal("services not built")
	}
	if s.cleanup == nil {
		t.Fatal("cleanup worker not started")
	}

	// No client in deps, so only the worker is torn down.
	if err := Shutdown(ctx, nil, cfg, deps, testLogger()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	svcMu.Lock()
	defer svcMu.Unlock()
	if svc != nil {
		t.Error("services should be cleared on shutdown")
	}
}
