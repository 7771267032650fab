package config

import (
	"os"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port == "" || cfg.Data.File == "" || cfg.Admin.User == "" {
		t.Fatalf("unexpected empty config values: %+v", cfg)
	}
	if cfg.Data.StoreBackend != "file" {
		t.Fatalf("default store backend = %q, want file", cfg.Data.StoreBackend)
	}
	if cfg.Data.MaxUploadMiB != 300 {
		t.Fatalf("default upload cap = %d, want 300", cfg.Data.MaxUploadMiB)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	os.Setenv("ADMIN_PASS", "s3cret")
	os.Setenv("STORE_BACKEND", "mongo")
	os.Setenv("MONGODB_URI", "mongodb://localhost:27017/bulletin_test")
	defer func() {
		os.Unsetenv("ADMIN_PASS")
		os.Unsetenv("STORE_BACKEND")
		os.Unsetenv("MONGODB_URI")
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Admin.Password != "s3cret" {
		t.Fatalf("admin password not overridden: %+v", cfg.Admin)
	}
	if cfg.Data.StoreBackend != "mongo" || cfg.MongoDB.URI == "" {
		t.Fatalf("mongo backend config not picked up: %+v", cfg)
	}
}
