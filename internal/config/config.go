// Package config provides Viper-based configuration loading for the resolution core and its tools.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings for the event journal.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Events is the level combat events are logged at; empty disables event logging.
	Events string `mapstructure:"events"`
}

// NaturalRollsConfig selects, per roll family, whether a natural 20 always
// succeeds and a natural 1 always fails.
type NaturalRollsConfig struct {
	Attack     bool `mapstructure:"attack"`
	Save       bool `mapstructure:"save"`
	SkillCheck bool `mapstructure:"skill_check"`
}

// FallbackConfig configures the component fallback rule.
type FallbackConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Penalty is applied to the fallback roll; positive values are negated.
	Penalty int `mapstructure:"penalty"`
}

// RulesConfig holds the resolution rules that vary by table.
type RulesConfig struct {
	NaturalRolls NaturalRollsConfig `mapstructure:"natural_rolls"`
	Fallback     FallbackConfig     `mapstructure:"fallback"`
	// StrictInvariants makes invariant violations panic instead of logging.
	StrictInvariants bool `mapstructure:"strict_invariants"`
	// ScriptInstructionLimit bounds each Lua hook call; 0 uses the sandbox default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
	// Scripted lists the Lua hooks registered as special rules, in order.
	Scripted []string `mapstructure:"scripted"`
}

// ContentConfig locates authored content.
type ContentConfig struct {
	VehiclesDir      string `mapstructure:"vehicles_dir"`
	CrewDir          string `mapstructure:"crew_dir"`
	EffectsDir       string `mapstructure:"effects_dir"`
	RuleScriptsDir   string `mapstructure:"rule_scripts_dir"`
	EffectScriptsDir string `mapstructure:"effect_scripts_dir"`
}

// JournalConfig controls persisting the event feed.
type JournalConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Timeout bounds each insert.
	Timeout time.Duration `mapstructure:"timeout"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Content  ContentConfig  `mapstructure:"content"`
	Journal  JournalConfig  `mapstructure:"journal"`
	Database DatabaseConfig `mapstructure:"database"`
}

// Validate checks all configuration invariants. Database settings are only
// checked when the journal is enabled.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRules(c.Rules); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Journal.Enabled {
		if c.Journal.Timeout <= 0 {
			errs = append(errs, "journal.timeout must be positive")
		}
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRules(r RulesConfig) error {
	var errs []string
	if r.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("rules.script_instruction_limit must be >= 0, got %d", r.ScriptInstructionLimit))
	}
	seen := make(map[string]bool)
	for _, hook := range r.Scripted {
		if hook == "" {
			errs = append(errs, "rules.scripted must not contain empty hook names")
			continue
		}
		if seen[hook] {
			errs = append(errs, fmt.Sprintf("rules.scripted lists %q twice", hook))
		}
		seen[hook] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	if c.VehiclesDir == "" || c.CrewDir == "" || c.EffectsDir == "" {
		return errors.New("content.vehicles_dir, content.crew_dir and content.effects_dir must not be empty")
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.Events != "" && !validLevels[l.Events] {
		return fmt.Errorf("logging.events must be empty or one of [debug, info, warn, error], got %q", l.Events)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with ROADWAR_ prefix
	v.SetEnvPrefix("ROADWAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.events", "info")

	v.SetDefault("rules.natural_rolls.attack", true)
	v.SetDefault("rules.natural_rolls.save", true)
	v.SetDefault("rules.natural_rolls.skill_check", true)
	v.SetDefault("rules.fallback.enabled", true)
	v.SetDefault("rules.fallback.penalty", -5)
	v.SetDefault("rules.strict_invariants", false)
	v.SetDefault("rules.script_instruction_limit", 0)

	v.SetDefault("content.vehicles_dir", "content/vehicles")
	v.SetDefault("content.crew_dir", "content/crew")
	v.SetDefault("content.effects_dir", "content/effects")
	v.SetDefault("content.rule_scripts_dir", "content/scripts/rules")
	v.SetDefault("content.effect_scripts_dir", "content/scripts/effects")

	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.timeout", "2s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "roadwar")
	v.SetDefault("database.password", "roadwar")
	v.SetDefault("database.name", "roadwar")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")
}
