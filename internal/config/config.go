// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Data   DataConfig
	Sync   SyncConfig
	Server ServerConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds local storage configuration.
type DataConfig struct {
	// BaseDir is the directory holding the database and search index.
	BaseDir string
	// CallTimeout bounds each database call (default: 30s).
	CallTimeout time.Duration
}

// SyncConfig holds snapshot synchronization configuration.
type SyncConfig struct {
	// SnapshotDir is where exported snapshots are written (default: {data}/snapshots).
	SnapshotDir string
	// InboxDir is watched for incoming snapshots (default: {data}/inbox).
	InboxDir string
	// WatchInbox enables the inbox watcher (default: true).
	WatchInbox bool
	// AutoImportStrategy is the merge strategy for watched imports (default: merge).
	AutoImportStrategy string
	// DeviceName labels this device in exported manifests.
	DeviceName string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	// SyncRateLimit is the per-client requests-per-minute budget on the
	// snapshot endpoints (default: 10, 0 disables limiting).
	SyncRateLimit int
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	// Define command-line flags.
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataDir := flag.String("data-dir", "", "Base directory for local data")
	callTimeout := flag.String("db-call-timeout", "", "Database call timeout (default: 30s)")

	snapshotDir := flag.String("snapshot-dir", "", "Directory for exported snapshots")
	inboxDir := flag.String("inbox-dir", "", "Directory watched for incoming snapshots")
	watchInbox := flag.String("watch-inbox", "", "Watch the inbox for snapshots (default: true)")
	autoImportStrategy := flag.String("auto-import-strategy", "", "Merge strategy for watched imports (default: merge)")
	deviceName := flag.String("device-name", "", "Device label used in exported manifests")

	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	syncRateLimit := flag.String("sync-rate-limit", "", "Snapshot endpoint requests per minute (default: 10)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BaseDir: getConfigValue(*dataDir, "DATA_DIR", ""),
		},
		Sync: SyncConfig{
			SnapshotDir:        getConfigValue(*snapshotDir, "SNAPSHOT_DIR", ""),
			InboxDir:           getConfigValue(*inboxDir, "INBOX_DIR", ""),
			WatchInbox:         getBoolConfigValue(*watchInbox, "WATCH_INBOX", true),
			AutoImportStrategy: getConfigValue(*autoImportStrategy, "AUTO_IMPORT_STRATEGY", "merge"),
			DeviceName:         getConfigValue(*deviceName, "DEVICE_NAME", ""),
		},
		Server: ServerConfig{
			Port:          getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			SyncRateLimit: getIntConfigValue(*syncRateLimit, "SYNC_RATE_LIMIT", 10),
		},
	}

	// Parse durations.
	var err error
	if cfg.Data.CallTimeout, err = parseDurationValue(*callTimeout, "DB_CALL_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}

	// Expand and validate paths.
	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("invalid data paths: %w", err)
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// DatabasePath returns the path of the annotation database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Data.BaseDir, "margin.db")
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	validStrategies := map[string]bool{
		"replace":       true,
		"merge":         true,
		"skip-existing": true,
	}
	if !validStrategies[c.Sync.AutoImportStrategy] {
		return fmt.Errorf("invalid auto-import strategy: %s (must be replace, merge, or skip-existing)", c.Sync.AutoImportStrategy)
	}

	if c.Data.BaseDir == "" {
		return errors.New("data dir cannot be empty after expansion")
	}

	return nil
}

// expandPaths expands ~ in all paths, makes them absolute, and fills
// snapshot and inbox defaults under the data dir.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	if c.Data.BaseDir, err = expandPath(c.Data.BaseDir, filepath.Join(homeDir, "Margin", "data")); err != nil {
		return err
	}
	if c.Sync.SnapshotDir, err = expandPath(c.Sync.SnapshotDir, filepath.Join(c.Data.BaseDir, "snapshots")); err != nil {
		return err
	}
	if c.Sync.InboxDir, err = expandPath(c.Sync.InboxDir, filepath.Join(c.Data.BaseDir, "inbox")); err != nil {
		return err
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	str := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(str)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), str, err)
	}
	return d, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
