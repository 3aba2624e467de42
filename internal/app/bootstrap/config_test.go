package bootstrap

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:         "mongodb://localhost:27017",
		MongoDatabase:    "community_hub_test",
		SessionKey:       strings.Repeat("k", 32),
		SessionName:      "communityhub-session",
		LoginMaxAttempts: 5,
		LoginWindow:      15 * time.Minute,
		UploadsDir:       "./uploads/gallery",
	}
}

func TestValidateConfig_OK(t *testing.T) {
	coreCfg := &config.CoreConfig{Env: "dev"}
	if err := ValidateConfig(coreCfg, validAppConfig(), testLogger()); err != nil {
		t.Fatalf("ValidateConfig failed: %v", err)
	}
}

func TestValidateConfig_BadMongoURI(t *testing.T) {
	coreCfg := &config.CoreConfig{Env: "dev"}
	appCfg := validAppConfig()
	appCfg.MongoURI = "not-a-mongo-uri"

	if err := ValidateConfig(coreCfg, appCfg, testLogger()); err == nil {
		t.Fatal("expected error for invalid Mongo URI")
	}
}

func TestValidateConfig_ProdRejectsShortSessionKey(t *testing.T) {
	coreCfg := &config.CoreConfig{Env: "prod"}
	appCfg := validAppConfig()
	appCfg.SessionKey = "short"

	if err := ValidateConfig(coreCfg, appCfg, testLogger()); err == nil {
		t.Fatal("expected error for short session key in prod")
	}
}

func TestValidateConfig_ProdRejectsDevDefaultKey(t *testing.T) {
	coreCfg := &config.CoreConfig{Env: "prod"}
	appCfg := validAppConfig()
	appCfg.SessionKey = "dev-only-change-me-please-0123456789ABCDEF"

	if err := ValidateConfig(coreCfg, appCfg, testLogger()); err == nil {
		t.Fatal("expected error for development default session key in prod")
	}
}

func TestValidateConfig_DevAllowsDefaultKey(t *testing.T) {
	coreCfg := &config.CoreConfig{Env: "dev"}
	appCfg := validAppConfig()
	appCfg.SessionKey = "dev-only-change-me-please-0123456789ABCDEF"

	if err := ValidateConfig(coreCfg, appCfg, testLogger()); err != nil {
		t.Fatalf("ValidateConfig failed in dev with default key: %v", err)
	}
}

func TestValidateConfig_GoogleCredentialsMustPair(t *testing.T) {
	coreCfg := &config.CoreConfig{Env: "dev"}

	appCfg := validAppConfig()
	appCfg.GoogleClientID = "client-id"
	if err := ValidateConfig(coreCfg, appCfg, testLogger()); err == nil {
		t.Fatal("expected error for client ID without secret")
	}

	appCfg.GoogleClientSecret = "client-secret"
	if err := ValidateConfig(coreCfg, appCfg, testLogger()); err != nil {
		t.Fatalf("ValidateConfig failed with both credentials: %v", err)
	}
}

func TestValidateConfig_RateLimitBounds(t *testing.T) {
	coreCfg := &config.CoreConfig{Env: "dev"}

	appCfg := validAppConfig()
	appCfg.LoginMaxAttempts = 0
	if err := ValidateConfig(coreCfg, appCfg, testLogger()); err == nil {
		t.Fatal("expected error for zero login_max_attempts")
	}

	appCfg = validAppConfig()
	appCfg.LoginWindow = 0
	if err := ValidateConfig(coreCfg, appCfg, testLogger()); err == nil {
		t.Fatal("expected error for zero login_window")
	}
}

func TestStartup_CreatesUploadsDir(t *testing.T) {
	coreCfg := &config.CoreConfig{Env: "dev"}
	appCfg := validAppConfig()
	appCfg.UploadsDir = filepath.Join(t.TempDir(), "uploads", "gallery")

	if err := Startup(t.Context(), coreCfg, appCfg, DBDeps{}, testLogger()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}

	// Running again against the existing directory must be a no-op.
	if err := Startup(t.Context(), coreCfg, appCfg, DBDeps{}, testLogger()); err != nil {
		t.Fatalf("Startup failed on existing directory: %v", err)
	}
}
