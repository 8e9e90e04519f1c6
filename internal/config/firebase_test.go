package config

import (
	"context"
	"testing"
	"time"

	"porchlight/internal/utils/logger"
)

func TestInitFirebaseSkipsWithoutCredentials(t *testing.T) {
	resetFirebase()
	t.Cleanup(resetFirebase)

	cfg := &Config{}
	log := logger.New("test")

	if err := InitFirebase(context.Background(), cfg, log); err != nil {
		t.Fatalf("InitFirebase() without credentials error = %v, want nil", err)
	}

	if FirebaseEnabled() {
		t.Error("FirebaseEnabled() = true, want false when credentials are absent")
	}
	if FirebaseAuth() != nil {
		t.Error("FirebaseAuth() should be nil when credentials are absent")
	}
	if FirestoreClient() != nil {
		t.Error("FirestoreClient() should be nil when credentials are absent")
	}
	if sdkInits != 0 {
		t.Errorf("sdkInits = %d, want 0", sdkInits)
	}
}

func TestInitFirebaseIsCallOnce(t *testing.T) {
	resetFirebase()
	t.Cleanup(resetFirebase)

	cfg := &Config{}
	log := logger.New("test")

	for i := 0; i < 3; i++ {
		if err := InitFirebase(context.Background(), cfg, log); err != nil {
			t.Fatalf("InitFirebase() call %d error = %v", i+1, err)
		}
	}

	if sdkInits != 0 {
		t.Errorf("sdkInits = %d, want 0 after repeated skipped inits", sdkInits)
	}
}

func TestInitFirebaseBadCredentials(t *testing.T) {
	resetFirebase()
	t.Cleanup(resetFirebase)

	cfg := &Config{
		Firebase: FirebaseConfig{CredentialsJSON: "%%% not base64 %%%"},
	}
	log := logger.New("test")

	err := InitFirebase(context.Background(), cfg, log)
	if err == nil {
		t.Fatal("InitFirebase() with malformed credentials should fail")
	}

	// The latch holds the error; later calls return it without re-running init
	if err2 := InitFirebase(context.Background(), cfg, log); err2 != err {
		t.Errorf("second InitFirebase() error = %v, want the cached %v", err2, err)
	}
	if FirebaseEnabled() {
		t.Error("FirebaseEnabled() = true after failed init")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Session.CookieName != "porchlight_session" {
		t.Errorf("default cookie name = %q", cfg.Session.CookieName)
	}
	if cfg.Session.TTL != 14*24*time.Hour {
		t.Errorf("default session TTL = %v", cfg.Session.TTL)
	}
	if cfg.GoFormz.BaseURL != "https://api.goformz.com/v2" {
		t.Errorf("default GoFormz base URL = %q", cfg.GoFormz.BaseURL)
	}
	if cfg.Worker.Concurrency != 10 {
		t.Errorf("default worker concurrency = %d", cfg.Worker.Concurrency)
	}
}
