package config

import (
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/ZanzyTHEbar/value-forge/vforge"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	VForge VForgeConfig `mapstructure:"vforge"`
}

// VForgeConfig stores vforge specific configurations.
type VForgeConfig struct {
	Index      IndexConfig      `mapstructure:"index"`
	Generation GenerationConfig `mapstructure:"generation"`
	Database   DatabaseConfig   `mapstructure:"database"`
	CacheDir   string           `mapstructure:"cacheDir"`
}

// IndexConfig stores the codepoint index artifact locations. The blob and
// sidecar are one versioned unit; pointing them at files from different
// builds is not detected here.
type IndexConfig struct {
	BlobPath    string `mapstructure:"blobPath"`
	SidecarPath string `mapstructure:"sidecarPath"`
}

// GenerationConfig stores value generation bounds.
type GenerationConfig struct {
	MaxDepth         uint32   `mapstructure:"maxDepth"`
	MaxContainerSize uint32   `mapstructure:"maxContainerSize"`
	MaxStringLength  uint32   `mapstructure:"maxStringLength"`
	AllowedScripts   []string `mapstructure:"allowedScripts"`
	ExcludedKinds    []string `mapstructure:"excludedKinds"`
}

// DatabaseConfig stores database connection details.
type DatabaseConfig struct {
	DSN  string `mapstructure:"dsn"`
	Type string `mapstructure:"type"`
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("..")
		viper.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Set default values
	viper.SetDefault("vforge.index.blobPath", internal.DefaultIndexBlobPath)
	viper.SetDefault("vforge.index.sidecarPath", internal.DefaultIndexSidecarPath)
	viper.SetDefault("vforge.cacheDir", internal.DefaultCacheDir)
	viper.SetDefault("vforge.database.dsn", internal.DefaultDatabaseDSN)
	viper.SetDefault("vforge.database.type", internal.DefaultDatabaseType)

	viper.SetDefault("vforge.generation.maxDepth", 4)
	viper.SetDefault("vforge.generation.maxContainerSize", 8)
	viper.SetDefault("vforge.generation.maxStringLength", 16)
	viper.SetDefault("vforge.generation.allowedScripts", []string{"Latin", "Greek", "Cyrillic"})

	viper.AutomaticEnv()                                   // Read in environment variables that match
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // Replace dots with underscores in env var names e.g. vforge.generation.maxDepth becomes VFORGE_GENERATION_MAXDEPTH

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; defaults will be used. This is not an error for the application to halt on.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &AppConfig, nil
}
