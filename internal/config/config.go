package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "BIDPREDICT"

// DefaultModelFilename is the artifact looked up in the bundle directory.
const DefaultModelFilename = "bid_prediction_model.json"

type Config struct {
	Environment string        `mapstructure:"environment"`
	LogLevel    string        `mapstructure:"log_level"`
	Model       ModelConfig   `mapstructure:"model"`
	Pricing     PricingConfig `mapstructure:"pricing"`

	// BundleDir is where the model, config.yaml and .env are looked up.
	BundleDir string `mapstructure:"-"`
	// Rules is Pricing parsed and validated by Load.
	Rules PricingRules `mapstructure:"-"`
}

type ModelConfig struct {
	Path     string `mapstructure:"path"`
	Filename string `mapstructure:"filename"`
}

type PricingConfig struct {
	FloorMultiplier string  `mapstructure:"floor_multiplier"`
	EarlyBonus      string  `mapstructure:"early_bonus"`
	EarlyWindowDays float64 `mapstructure:"early_window_days"`
}

// PricingRules is the parsed form of PricingConfig.
type PricingRules struct {
	FloorMultiplier decimal.Decimal
	EarlyBonus      decimal.Decimal
	EarlyWindowDays float64
}

// MinFloorMultiplier is the lowest accepted floor: a recommendation is never
// less than 5% above the opening bid.
var MinFloorMultiplier = decimal.RequireFromString("1.05")

// DefaultPricingRules returns the stock business rules: a 5% premium floor
// over the opening bid and a 10% bonus during the first day.
func DefaultPricingRules() PricingRules {
	return PricingRules{
		FloorMultiplier: MinFloorMultiplier,
		EarlyBonus:      decimal.RequireFromString("1.1"),
		EarlyWindowDays: 1,
	}
}

// Rules parses and validates the pricing section. The floor may be raised
// above MinFloorMultiplier but never lowered; the bonus and the early window
// are free within their ranges.
func (p PricingConfig) Rules() (PricingRules, error) {
	floor, err := decimal.NewFromString(strings.TrimSpace(p.FloorMultiplier))
	if err != nil {
		return PricingRules{}, fmt.Errorf("invalid pricing.floor_multiplier %q: %w", p.FloorMultiplier, err)
	}
	bonus, err := decimal.NewFromString(strings.TrimSpace(p.EarlyBonus))
	if err != nil {
		return PricingRules{}, fmt.Errorf("invalid pricing.early_bonus %q: %w", p.EarlyBonus, err)
	}
	if floor.LessThan(MinFloorMultiplier) {
		return PricingRules{}, fmt.Errorf("pricing.floor_multiplier must be at least %s, got %s", MinFloorMultiplier, floor)
	}
	if bonus.LessThan(decimal.NewFromInt(1)) {
		return PricingRules{}, fmt.Errorf("pricing.early_bonus must be at least 1, got %s", bonus)
	}
	if p.EarlyWindowDays < 0 {
		return PricingRules{}, fmt.Errorf("pricing.early_window_days must not be negative, got %v", p.EarlyWindowDays)
	}
	return PricingRules{
		FloorMultiplier: floor,
		EarlyBonus:      bonus,
		EarlyWindowDays: p.EarlyWindowDays,
	}, nil
}

// ModelPath returns the artifact location: model.path when set, otherwise
// model.filename inside the bundle directory.
func (c *Config) ModelPath() string {
	if c.Model.Path != "" {
		return c.Model.Path
	}
	filename := c.Model.Filename
	if filename == "" {
		filename = DefaultModelFilename
	}
	return filepath.Join(c.BundleDir, filename)
}

// BundleDir returns the directory one level above the one holding the
// executable, with symlinks resolved.
func BundleDir(executable string) (string, error) {
	resolved, err := filepath.EvalSymlinks(executable)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable path: %w", err)
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable path: %w", err)
	}
	return filepath.Dir(filepath.Dir(abs)), nil
}

// Load reads configuration for a bundle rooted at bundleDir. Sources, lowest
// precedence first: defaults, bundleDir/config.yaml, bundleDir/.env, the
// process environment.
func Load(bundleDir string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(bundleDir, ".env")); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(bundleDir)

	// Set default values
	setDefaults(v)

	// Enable environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	rules, err := config.Pricing.Rules()
	if err != nil {
		return nil, err
	}
	config.Rules = rules

	config.Environment = strings.ToLower(config.Environment)
	config.BundleDir = bundleDir

	return &config, nil
}

// loadDotEnv applies a .env file if one exists. Variables already present in
// the environment are left alone.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Environment
	v.SetDefault("environment", "production")
	v.SetDefault("log_level", "off")

	// Model
	v.SetDefault("model.path", "")
	v.SetDefault("model.filename", DefaultModelFilename)

	// Pricing
	v.SetDefault("pricing.floor_multiplier", "1.05")
	v.SetDefault("pricing.early_bonus", "1.1")
	v.SetDefault("pricing.early_window_days", 1.0)
}
