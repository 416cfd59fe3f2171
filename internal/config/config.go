package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Identity IdentityConfig `mapstructure:"identity"`
	Notifier NotifierConfig `mapstructure:"notifier"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds sqlite configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// PolicyConfig holds the discount policy ceilings. These apply to new
// submissions only; open requests keep their snapshot thresholds.
type PolicyConfig struct {
	ManagerDiscountCeiling float64 `mapstructure:"manager_discount_ceiling"`
}

// IdentityConfig holds the user roster and default approver assignment
type IdentityConfig struct {
	Users           []UserConfig `mapstructure:"users"`
	ManagerApprover string       `mapstructure:"manager_approver"`
	AdminApprover   string       `mapstructure:"admin_approver"`
}

// UserConfig is one roster entry
type UserConfig struct {
	ID          string  `mapstructure:"id"`
	Role        string  `mapstructure:"role"`
	DiscountCap float64 `mapstructure:"discount_cap"`
}

// NotifierConfig configures the optional outbound webhook sink
type NotifierConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("APPROVAL")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("database.path", "data/approvals.db")
	viper.SetDefault("database.migrations_dir", "migrations")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", time.Hour)

	viper.SetDefault("policy.manager_discount_ceiling", 20.0)

	viper.SetDefault("notifier.timeout", 10*time.Second)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "console")
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be within (0, 65535], got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Policy.ManagerDiscountCeiling <= 0 || c.Policy.ManagerDiscountCeiling > 100 {
		return fmt.Errorf("manager discount ceiling must be within (0, 100], got %.2f", c.Policy.ManagerDiscountCeiling)
	}
	if len(c.Identity.Users) == 0 {
		return fmt.Errorf("identity roster is empty")
	}
	if c.Identity.ManagerApprover == "" {
		return fmt.Errorf("identity manager_approver is required")
	}
	if c.Identity.AdminApprover == "" {
		return fmt.Errorf("identity admin_approver is required")
	}
	return nil
}
