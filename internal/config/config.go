// Package config loads erdkit settings from erdkit.config.{json,yaml},
// .env files and ERDKIT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tordrt/erdkit/internal/formatter"
	"github.com/tordrt/erdkit/internal/schema"
)

// ConfigName is the base name of the config file searched in the working directory
const ConfigName = "erdkit.config"

type Config struct {
	Database Database `json:"database" mapstructure:"database"`
	Output   Output   `json:"output" mapstructure:"output"`
	Parse    Parse    `json:"parse" mapstructure:"parse"`
	IDs      string   `json:"ids" mapstructure:"ids"`
	DDL      DDL      `json:"ddl" mapstructure:"ddl"`
}

type Database struct {
	URLEnv string `json:"url_env" mapstructure:"url_env"`
	Schema string `json:"schema" mapstructure:"schema"`
}

type Output struct {
	Format string `json:"format" mapstructure:"format"`
	Dir    string `json:"dir,omitempty" mapstructure:"dir"`
}

type Parse struct {
	Strict bool `json:"strict" mapstructure:"strict"` // warnings become errors
}

type DDL struct {
	DeferForeignKeys bool `json:"defer_foreign_keys" mapstructure:"defer_foreign_keys"`
	EscapeLiterals   bool `json:"escape_literals" mapstructure:"escape_literals"`
}

// SetDefaults registers the default for every key. Keys must be known to
// viper for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.url_env", "DATABASE_URL")
	v.SetDefault("database.schema", "public")
	v.SetDefault("output.format", formatter.FormatMermaid)
	v.SetDefault("output.dir", "")
	v.SetDefault("parse.strict", false)
	v.SetDefault("ids", "sequence")
	v.SetDefault("ddl.defer_foreign_keys", false)
	v.SetDefault("ddl.escape_literals", false)
}

// Init loads .env files and reads the config file into v. cfgFile overrides
// the search for erdkit.config in the working directory; a missing default
// file is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	SetDefaults(v)

	v.SetEnvPrefix("ERDKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(ConfigName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load unmarshals and validates the settings held by v
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown output formats and id schemes
func (c *Config) Validate() error {
	known := false
	for _, f := range formatter.Formats {
		if c.Output.Format == f {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("invalid output.format: %s (must be one of %s)", c.Output.Format, strings.Join(formatter.Formats, ", "))
	}

	if _, err := schema.NewIDGenerator(c.IDs); err != nil {
		return fmt.Errorf("invalid ids: %w", err)
	}
	return nil
}

// IDGenerator returns the generator selected by the ids key
func (c *Config) IDGenerator() schema.IDGenerator {
	ids, err := schema.NewIDGenerator(c.IDs)
	if err != nil {
		return schema.SequentialIDs{}
	}
	return ids
}

// GetDatabaseURL reads the connection URL from the environment variable
// named by database.url_env.
func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}
