package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "off", cfg.LogLevel)
	assert.Equal(t, "", cfg.Model.Path)
	assert.Equal(t, DefaultModelFilename, cfg.Model.Filename)
	assert.Equal(t, "1.05", cfg.Pricing.FloorMultiplier)
	assert.Equal(t, "1.1", cfg.Pricing.EarlyBonus)
	assert.Equal(t, 1.0, cfg.Pricing.EarlyWindowDays)
	assert.Equal(t, filepath.Join(dir, "bid_prediction_model.json"), cfg.ModelPath())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BIDPREDICT_LOG_LEVEL", "debug")
	t.Setenv("BIDPREDICT_ENVIRONMENT", "Development")
	t.Setenv("BIDPREDICT_MODEL_PATH", "/opt/models/bid.yaml")
	t.Setenv("BIDPREDICT_PRICING_FLOOR_MULTIPLIER", "1.2")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "/opt/models/bid.yaml", cfg.ModelPath())

	rules, err := cfg.Pricing.Rules()
	require.NoError(t, err)
	assert.True(t, rules.FloorMultiplier.Equal(decimal.RequireFromString("1.2")))
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `
model:
  filename: custom_model.yaml
pricing:
  early_bonus: 1.25
  early_window_days: 0.5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "custom_model.yaml"), cfg.ModelPath())
	rules, err := cfg.Pricing.Rules()
	require.NoError(t, err)
	assert.True(t, rules.EarlyBonus.Equal(decimal.RequireFromString("1.25")))
	assert.Equal(t, 0.5, rules.EarlyWindowDays)
}

func TestLoad_MalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("pricing: [unclosed"), 0o600))

	_, err := Load(dir)
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	key := "BIDPREDICT_MODEL_FILENAME"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=from_dotenv.json\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "from_dotenv.json"), cfg.ModelPath())
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BIDPREDICT_MODEL_FILENAME", "from_env.json")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BIDPREDICT_MODEL_FILENAME=from_dotenv.json\n"), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "from_env.json"), cfg.ModelPath())
}

func TestLoad_InvalidPricing(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"floor not a number", "BIDPREDICT_PRICING_FLOOR_MULTIPLIER", "abc"},
		{"floor below one", "BIDPREDICT_PRICING_FLOOR_MULTIPLIER", "0.9"},
		{"bonus not a number", "BIDPREDICT_PRICING_EARLY_BONUS", "ten"},
		{"bonus below one", "BIDPREDICT_PRICING_EARLY_BONUS", "0.5"},
		{"negative window", "BIDPREDICT_PRICING_EARLY_WINDOW_DAYS", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load(t.TempDir())
			assert.ErrorContains(t, err, "pricing.")
		})
	}
}

func TestDefaultPricingRules(t *testing.T) {
	rules := DefaultPricingRules()

	parsed, err := PricingConfig{FloorMultiplier: "1.05", EarlyBonus: "1.1", EarlyWindowDays: 1}.Rules()
	require.NoError(t, err)

	assert.True(t, rules.FloorMultiplier.Equal(parsed.FloorMultiplier))
	assert.True(t, rules.EarlyBonus.Equal(parsed.EarlyBonus))
	assert.Equal(t, rules.EarlyWindowDays, parsed.EarlyWindowDays)
}

func TestBundleDir(t *testing.T) {
	root := t.TempDir()
	binDir := filepath.Join(root, "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	exe := filepath.Join(binDir, "predict")
	require.NoError(t, os.WriteFile(exe, []byte{}, 0o755))

	got, err := BundleDir(exe)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBundleDir_FollowsSymlink(t *testing.T) {
	root := t.TempDir()
	binDir := filepath.Join(root, "bundle", "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	exe := filepath.Join(binDir, "predict")
	require.NoError(t, os.WriteFile(exe, []byte{}, 0o755))

	linkDir := filepath.Join(root, "usr", "bin")
	require.NoError(t, os.MkdirAll(linkDir, 0o755))
	link := filepath.Join(linkDir, "predict")
	if err := os.Symlink(exe, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, err := BundleDir(link)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(filepath.Join(root, "bundle"))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBundleDir_MissingExecutable(t *testing.T) {
	_, err := BundleDir(filepath.Join(t.TempDir(), "nope", "predict"))
	assert.Error(t, err)
}

func TestPricingConfig_Rules(t *testing.T) {
	tests := []struct {
		name    string
		pricing PricingConfig
		wantErr string
	}{
		{"defaults", PricingConfig{FloorMultiplier: "1.05", EarlyBonus: "1.1", EarlyWindowDays: 1}, ""},
		{"raised floor", PricingConfig{FloorMultiplier: "1.2", EarlyBonus: "1.1", EarlyWindowDays: 1}, ""},
		{"bonus disabled", PricingConfig{FloorMultiplier: "1.05", EarlyBonus: "1", EarlyWindowDays: 0}, ""},
		{"floor of one", PricingConfig{FloorMultiplier: "1", EarlyBonus: "1", EarlyWindowDays: 0}, "at least 1.05"},
		{"floor just under minimum", PricingConfig{FloorMultiplier: "1.049", EarlyBonus: "1.1", EarlyWindowDays: 1}, "at least 1.05"},
		{"bonus below one", PricingConfig{FloorMultiplier: "1.05", EarlyBonus: "0.99", EarlyWindowDays: 1}, "pricing.early_bonus"},
		{"negative window", PricingConfig{FloorMultiplier: "1.05", EarlyBonus: "1.1", EarlyWindowDays: -0.5}, "pricing.early_window_days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules, err := tt.pricing.Rules()
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, rules.FloorMultiplier.GreaterThanOrEqual(MinFloorMultiplier))
		})
	}
}

func TestLoad_KeepsParsedRules(t *testing.T) {
	t.Setenv("BIDPREDICT_PRICING_EARLY_BONUS", "1.3")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.Rules.FloorMultiplier.Equal(decimal.RequireFromString("1.05")))
	assert.True(t, cfg.Rules.EarlyBonus.Equal(decimal.RequireFromString("1.3")))
	assert.Equal(t, 1.0, cfg.Rules.EarlyWindowDays)
}

func TestLoad_RejectsFloorBelowMinimum(t *testing.T) {
	t.Setenv("BIDPREDICT_PRICING_FLOOR_MULTIPLIER", "1")

	_, err := Load(t.TempDir())
	assert.ErrorContains(t, err, "pricing.floor_multiplier must be at least 1.05")
}
