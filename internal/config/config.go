// Package config provides Viper-based configuration loading for the combat simulator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
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
}

// CombatConfig holds the tuning constants used by action scoring, execution,
// and reaction playback.
type CombatConfig struct {
	// IntentMatchBonus is added when a candidate matches the requested intent.
	IntentMatchBonus float64 `mapstructure:"intent_match_bonus"`
	// IntentMismatchPenalty is added (normally negative) on intent mismatch.
	IntentMismatchPenalty float64 `mapstructure:"intent_mismatch_penalty"`
	// DistanceWeight scales the distance term into [-DistanceWeight, +DistanceWeight].
	DistanceWeight float64 `mapstructure:"distance_weight"`
	// FacingBonus is added for forward entries when the actor faces the other party.
	FacingBonus float64 `mapstructure:"facing_bonus"`
	// FacingThreshold is the minimum forward dot product counted as facing.
	FacingThreshold float64 `mapstructure:"facing_threshold"`
	// Jitter is the half-width of the uniform random score perturbation.
	Jitter float64 `mapstructure:"jitter"`
	// ComboBlendCeiling caps blend times while a combo window is open.
	ComboBlendCeiling time.Duration `mapstructure:"combo_blend_ceiling"`
	// TargetRange is the search radius for the closest target.
	TargetRange float64 `mapstructure:"target_range"`
	// ReactionBlendOut is the blend used to stop a clip before a hit reaction.
	ReactionBlendOut time.Duration `mapstructure:"reaction_blend_out"`
	// InputDeadzone is the movement input magnitude below which direction is Omni.
	InputDeadzone float64 `mapstructure:"input_deadzone"`
	// DirectionThreshold is the dot product needed to resolve a cardinal direction.
	DirectionThreshold float64 `mapstructure:"direction_threshold"`
	// RunningSpeed is the speed above which a combatant counts as running.
	RunningSpeed float64 `mapstructure:"running_speed"`
}

// ContentConfig holds the locations of designer-authored tables.
type ContentConfig struct {
	// Dir is the root content directory holding sets/, reactions/ and ai/.
	Dir string `mapstructure:"dir"`
	// Watch enables hot reload of content files.
	Watch bool `mapstructure:"watch"`
	// Debounce suppresses repeated change events for the same file.
	Debounce time.Duration `mapstructure:"debounce"`
}

// ScriptingConfig holds Lua scorer and AI precondition settings.
type ScriptingConfig struct {
	// ScriptDir holds the *.lua files loaded into the shared VM.
	ScriptDir string `mapstructure:"script_dir"`
	// InstructionLimit bounds opcodes per VM; 0 uses the default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// SimulationConfig holds settings for the in-process duel simulation.
type SimulationConfig struct {
	// TickInterval is the wall-clock period between world ticks.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// Seed seeds the jitter source; 0 selects the crypto source.
	Seed int64 `mapstructure:"seed"`
}

// Config is the top-level application configuration.
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Combat     CombatConfig     `mapstructure:"combat"`
	Content    ContentConfig    `mapstructure:"content"`
	Scripting  ScriptingConfig  `mapstructure:"scripting"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}
	if c.Simulation.TickInterval <= 0 {
		errs = append(errs, "simulation.tick_interval must be positive")
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

func validateCombat(c CombatConfig) error {
	var errs []string
	if c.DistanceWeight < 0 {
		errs = append(errs, "combat.distance_weight must not be negative")
	}
	if c.FacingThreshold < -1 || c.FacingThreshold > 1 {
		errs = append(errs, fmt.Sprintf("combat.facing_threshold must be in [-1, 1], got %g", c.FacingThreshold))
	}
	if c.Jitter < 0 {
		errs = append(errs, "combat.jitter must not be negative")
	}
	if c.ComboBlendCeiling < 0 {
		errs = append(errs, "combat.combo_blend_ceiling must not be negative")
	}
	if c.TargetRange <= 0 {
		errs = append(errs, "combat.target_range must be positive")
	}
	if c.ReactionBlendOut < 0 {
		errs = append(errs, "combat.reaction_blend_out must not be negative")
	}
	if c.InputDeadzone < 0 {
		errs = append(errs, "combat.input_deadzone must not be negative")
	}
	if c.DirectionThreshold <= 0 || c.DirectionThreshold > 1 {
		errs = append(errs, fmt.Sprintf("combat.direction_threshold must be in (0, 1], got %g", c.DirectionThreshold))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	if c.Dir == "" {
		return fmt.Errorf("content.dir must not be empty")
	}
	if c.Debounce < 0 {
		return fmt.Errorf("content.debounce must not be negative")
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
	return nil
}

// DefaultCombat returns the combat tuning used when no configuration file
// overrides it.
//
// Postcondition: The returned value passes validateCombat.
func DefaultCombat() CombatConfig {
	return CombatConfig{
		IntentMatchBonus:      50,
		IntentMismatchPenalty: -25,
		DistanceWeight:        25,
		FacingBonus:           10,
		FacingThreshold:       0.25,
		Jitter:                5,
		ComboBlendCeiling:     50 * time.Millisecond,
		TargetRange:           2500,
		ReactionBlendOut:      100 * time.Millisecond,
		InputDeadzone:         0.2,
		DirectionThreshold:    0.5,
		RunningSpeed:          300,
	}
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with MCS_ prefix
	v.SetEnvPrefix("MCS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

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

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "combat")
	v.SetDefault("database.password", "combat")
	v.SetDefault("database.name", "combat")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	d := DefaultCombat()
	v.SetDefault("combat.intent_match_bonus", d.IntentMatchBonus)
	v.SetDefault("combat.intent_mismatch_penalty", d.IntentMismatchPenalty)
	v.SetDefault("combat.distance_weight", d.DistanceWeight)
	v.SetDefault("combat.facing_bonus", d.FacingBonus)
	v.SetDefault("combat.facing_threshold", d.FacingThreshold)
	v.SetDefault("combat.jitter", d.Jitter)
	v.SetDefault("combat.combo_blend_ceiling", d.ComboBlendCeiling.String())
	v.SetDefault("combat.target_range", d.TargetRange)
	v.SetDefault("combat.reaction_blend_out", d.ReactionBlendOut.String())
	v.SetDefault("combat.input_deadzone", d.InputDeadzone)
	v.SetDefault("combat.direction_threshold", d.DirectionThreshold)
	v.SetDefault("combat.running_speed", d.RunningSpeed)

	v.SetDefault("content.dir", "content")
	v.SetDefault("content.watch", false)
	v.SetDefault("content.debounce", "100ms")

	v.SetDefault("scripting.script_dir", "content/scripts")
	v.SetDefault("scripting.instruction_limit", 0)

	v.SetDefault("simulation.tick_interval", "16ms")
	v.SetDefault("simulation.seed", 0)
}
