package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BaseDir: "/some/path"},
		Sync:   SyncConfig{AutoImportStrategy: "merge"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllStrategies(t *testing.T) {
	tests := []struct {
		strategy string
		valid    bool
	}{
		{"replace", true},
		{"merge", true},
		{"skip-existing", true},
		{"overwrite", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			cfg := validConfig()
			cfg.Sync.AutoImportStrategy = tt.strategy

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_EmptyDataDir(t *testing.T) {
	cfg := validConfig()
	cfg.Data.BaseDir = ""
	assert.Error(t, cfg.Validate())
}

func TestExpandPaths_Defaults(t *testing.T) {
	cfg := validConfig()
	cfg.Data.BaseDir = ""
	cfg.Sync.SnapshotDir = ""
	cfg.Sync.InboxDir = ""

	require.NoError(t, cfg.expandPaths())

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "Margin", "data"), cfg.Data.BaseDir)
	assert.Equal(t, filepath.Join(cfg.Data.BaseDir, "snapshots"), cfg.Sync.SnapshotDir)
	assert.Equal(t, filepath.Join(cfg.Data.BaseDir, "inbox"), cfg.Sync.InboxDir)
}

func TestExpandPath_TildeExpansion(t *testing.T) {
	got, err := expandPath("~/margin-data", "")
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "margin-data"), got)
}

func TestExpandPath_AbsolutePath(t *testing.T) {
	got, err := expandPath("/var/lib/margin", "/ignored")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/margin", got)
}

func TestDatabasePath(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "/some/path/margin.db", cfg.DatabasePath())
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("MARGIN_TEST_KEY", "from-env")

	// Flag beats env.
	assert.Equal(t, "from-flag", getConfigValue("from-flag", "MARGIN_TEST_KEY", "default"))
	// Env beats default.
	assert.Equal(t, "from-env", getConfigValue("", "MARGIN_TEST_KEY", "default"))
	// Default when nothing else set.
	assert.Equal(t, "default", getConfigValue("", "MARGIN_TEST_UNSET", "default"))
}

func TestGetBoolConfigValue(t *testing.T) {
	assert.True(t, getBoolConfigValue("true", "MARGIN_TEST_UNSET", false))
	assert.True(t, getBoolConfigValue("1", "MARGIN_TEST_UNSET", false))
	assert.True(t, getBoolConfigValue("YES", "MARGIN_TEST_UNSET", false))
	assert.False(t, getBoolConfigValue("no", "MARGIN_TEST_UNSET", true))
	assert.True(t, getBoolConfigValue("", "MARGIN_TEST_UNSET", true))
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nMARGIN_ENVFILE_A=hello\nMARGIN_ENVFILE_B=\"quoted\"\n\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("MARGIN_ENVFILE_A")
		os.Unsetenv("MARGIN_ENVFILE_B")
	})

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "hello", os.Getenv("MARGIN_ENVFILE_A"))
	assert.Equal(t, "quoted", os.Getenv("MARGIN_ENVFILE_B"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("NOT A VALID LINE\n"), 0o644))

	assert.Error(t, loadEnvFile(path))
}

func TestLoadEnvFile_NonExistentFile(t *testing.T) {
	assert.Error(t, loadEnvFile("/nonexistent/.env"))
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	t.Setenv("MARGIN_ENVFILE_C", "original")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MARGIN_ENVFILE_C=overwritten\n"), 0o644))

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "original", os.Getenv("MARGIN_ENVFILE_C"))
}

func TestParseDurationValue(t *testing.T) {
	d, err := parseDurationValue("45s", "MARGIN_TEST_UNSET", "30s")
	require.NoError(t, err)
	assert.Equal(t, "45s", d.String())

	d, err = parseDurationValue("", "MARGIN_TEST_UNSET", "30s")
	require.NoError(t, err)
	assert.Equal(t, "30s", d.String())

	_, err = parseDurationValue("not-a-duration", "MARGIN_TEST_UNSET", "30s")
	assert.Error(t, err)
}
