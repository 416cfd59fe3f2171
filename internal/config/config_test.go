package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Path: "data/test.db",
		},
		Policy: PolicyConfig{
			ManagerDiscountCeiling: 20,
		},
		Identity: IdentityConfig{
			Users: []UserConfig{
				{ID: "u-rep", Role: "REP", DiscountCap: 10},
				{ID: "u-manager", Role: "MANAGER", DiscountCap: 20},
				{ID: "u-admin", Role: "ADMIN", DiscountCap: 100},
			},
			ManagerApprover: "u-manager",
			AdminApprover:   "u-admin",
		},
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"empty database path", func(c *Config) { c.Database.Path = "" }},
		{"zero ceiling", func(c *Config) { c.Policy.ManagerDiscountCeiling = 0 }},
		{"ceiling above 100", func(c *Config) { c.Policy.ManagerDiscountCeiling = 150 }},
		{"empty roster", func(c *Config) { c.Identity.Users = nil }},
		{"missing manager approver", func(c *Config) { c.Identity.ManagerApprover = "" }},
		{"missing admin approver", func(c *Config) { c.Identity.AdminApprover = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	content := `
server:
  host: "127.0.0.1"
  port: 9090

database:
  path: "data/test.db"

policy:
  manager_discount_ceiling: 25.0

identity:
  users:
    - id: "u-rep"
      role: "REP"
      discount_cap: 10.0
    - id: "u-manager"
      role: "MANAGER"
      discount_cap: 20.0
    - id: "u-admin"
      role: "ADMIN"
      discount_cap: 100.0
  manager_approver: "u-manager"
  admin_approver: "u-admin"
`

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Policy.ManagerDiscountCeiling != 25 {
		t.Errorf("ManagerDiscountCeiling = %v, want 25", cfg.Policy.ManagerDiscountCeiling)
	}
	if len(cfg.Identity.Users) != 3 {
		t.Errorf("roster size = %d, want 3", len(cfg.Identity.Users))
	}

	// Defaults fill what the file omits
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %v, want default 30s", cfg.Server.ReadTimeout)
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("Logger.Level = %q, want default info", cfg.Logger.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() should fail for a missing config file")
	}
}
