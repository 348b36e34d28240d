package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Values are loaded by Viper from a config file and/or environment variables.
type Config struct {
	ValheimDir     string `mapstructure:"VALHEIM_DIR"` // Default game path for profiles that carry none
	DataDir        string `mapstructure:"DATA_DIR"`
	AutoBackup     bool   `mapstructure:"AUTO_BACKUP"`     // Checkpoint before every deployment
	HashCacheSize  int    `mapstructure:"HASH_CACHE_SIZE"` // Entries kept in the LRU hash cache
	MaxCheckpoints int    `mapstructure:"MAX_CHECKPOINTS"` // Checkpoints retained per profile
	DatabasePath   string `mapstructure:"-"`               // Not from env, derived
	BackupsDir     string `mapstructure:"-"`               // Not from env, derived
	ProfilesDir    string `mapstructure:"-"`               // Not from env, derived
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)   // Path to look for the config file in
	viper.SetConfigName(".env") // Name of config file (without extension)
	viper.SetConfigType("env")  // REQUIRED if the config file does not have the extension in the name

	vipErr := viper.ReadInConfig()
	if _, ok := vipErr.(viper.ConfigFileNotFoundError); ok {
		slog.Info("Config file (.env) not found, relying on environment variables.")
	} else if vipErr != nil {
		return Config{}, fmt.Errorf("fatal error config file: %w", vipErr)
	}

	// Bind environment variables automatically.
	viper.AutomaticEnv()

	for key, env := range map[string]string{
		"valheim_dir":     "VALHEIM_DIR",
		"data_dir":        "DATA_DIR",
		"auto_backup":     "AUTO_BACKUP",
		"hash_cache_size": "HASH_CACHE_SIZE",
		"max_checkpoints": "MAX_CHECKPOINTS",
	} {
		if bindErr := viper.BindEnv(key, env); bindErr != nil {
			slog.Warn("Unable to bind env var", "var", env, "error", bindErr)
		}
	}

	// Unmarshal the config
	if vipErr = viper.Unmarshal(&config); vipErr != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %w", vipErr)
	}

	processConfigDefaults(&config)

	if err := validateAndEnsureDirectories(&config); err != nil {
		return Config{}, err
	}

	return config, nil
}

// processConfigDefaults fills in defaults for anything the file/env left unset.
func processConfigDefaults(config *Config) {
	if config.DataDir == "" {
		config.DataDir = filepath.Join(xdg.DataHome, "valheim-mod-manager")
	}
	if config.HashCacheSize <= 0 {
		config.HashCacheSize = 1000
	}
	if config.MaxCheckpoints <= 0 {
		config.MaxCheckpoints = 5
	}

	// Viper doesn't handle bool defaults from env well without explicit SetDefault,
	// so check the raw string: unset means "on".
	autoBackupStr := viper.GetString("AUTO_BACKUP")
	if autoBackupStr == "" {
		config.AutoBackup = true
	} else {
		autoBackup, err := strconv.ParseBool(autoBackupStr)
		if err != nil {
			slog.Warn("Invalid value for AUTO_BACKUP, defaulting to true", "value", autoBackupStr, "error", err)
			config.AutoBackup = true
		} else {
			config.AutoBackup = autoBackup
		}
	}
}

// validateAndEnsureDirectories creates the data directory tree and derives
// the paths that hang off it.
func validateAndEnsureDirectories(config *Config) error {
	if config.DataDir == "" {
		slog.Error("DATA_DIR is not set and no platform default is available")
		return fmt.Errorf("DATA_DIR is required")
	}

	config.BackupsDir = filepath.Join(config.DataDir, "backups")
	config.ProfilesDir = filepath.Join(config.DataDir, "profiles")
	config.DatabasePath = filepath.Join(config.DataDir, "mods.db")

	for _, dir := range []string{config.DataDir, config.BackupsDir, config.ProfilesDir} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			slog.Info("Directory does not exist, creating it", "path", dir)
			if err := os.MkdirAll(dir, 0755); err != nil {
				slog.Error("Failed to create directory", "path", dir, "error", err)
				return err
			}
		} else if err != nil {
			slog.Error("Failed to check directory", "path", dir, "error", err)
			return err
		}
	}

	return nil
}
