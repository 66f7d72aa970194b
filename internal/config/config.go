// Package config loads the bridge's configuration from the external
// settings facade, following the environment-variable knobs named in the
// bridge specification (MyrtilleSessionId, MyrtilleDebugLog, ...).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// globalConfig stores the configuration loaded with command-line overrides.
// This allows other packages to access the same configuration that was
// loaded by the bootstrap.
var (
	globalConfig *Config
	configMutex  sync.Mutex
)

// Config holds the full bridge configuration.
type Config struct {
	Bridge  BridgeConfig  `json:"bridge"`
	Policy  PolicyConfig  `json:"policy"`
	Logging LoggingConfig `json:"logging"`
}

// LoadOptions holds command-line override options.
type LoadOptions struct {
	SessionID    uint32
	DebugLog     bool
	DebugCapture bool
	LogLevel     string
}

// BridgeConfig holds the per-session IPC and process identity settings.
type BridgeConfig struct {
	// SessionID is MyrtilleSessionId. Zero disables the subsystem entirely.
	SessionID uint32 `json:"sessionId" env:"MyrtilleSessionId" default:"0"`
	// DebugLog is MyrtilleDebugLog: redirect stdout/stderr to a log file.
	DebugLog bool `json:"debugLog" env:"MyrtilleDebugLog" default:"false"`
	// DebugCapture enables saving emitted frames to disk for troubleshooting.
	DebugCapture bool `json:"debugCapture" env:"MyrtilleDebugCapture" default:"false"`
	// ModuleParentDir is the directory under which log/ and the debug
	// capture directory are created.
	ModuleParentDir string `json:"moduleParentDir" env:"MyrtilleModuleParentDir" default:"."`
	// PipeNameTemplate formats the two IPC channel names; %d is the
	// session id, %s is "inputs" or "updates".
	PipeNameTemplate string `json:"pipeNameTemplate" env:"MyrtillePipeNameTemplate" default:"remotesession_%d_%s"`
	// ReadChunkBytes bounds a single inputs-channel read (spec: up to 4 KiB).
	ReadChunkBytes int `json:"readChunkBytes" env:"MyrtilleReadChunkBytes" default:"4096"`
}

// PolicyConfig holds the default ImagePolicy values applied at session start.
type PolicyConfig struct {
	DefaultEncoding string `json:"defaultEncoding" env:"MyrtilleDefaultEncoding" default:"AUTO"`
	DefaultQuality  int    `json:"defaultQuality" env:"MyrtilleDefaultQuality" default:"50"`
	DefaultQuantity int    `json:"defaultQuantity" env:"MyrtilleDefaultQuantity" default:"100"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `json:"level" env:"MyrtilleLogLevel" default:"info"`
}

// Load loads configuration from environment variables with defaults.
func Load() (*Config, error) {
	return LoadWithOverrides(LoadOptions{})
}

// LoadWithOverrides loads configuration with command-line overrides.
func LoadWithOverrides(opts LoadOptions) (*Config, error) {
	cfg := &Config{}

	cfg.Bridge.SessionID = getUint32Override(opts.SessionID, "MyrtilleSessionId", 0)
	cfg.Bridge.DebugLog = getBoolOverride(opts.DebugLog, "MyrtilleDebugLog", false)
	cfg.Bridge.DebugCapture = getBoolOverride(opts.DebugCapture, "MyrtilleDebugCapture", false)
	cfg.Bridge.ModuleParentDir = getEnvWithDefault("MyrtilleModuleParentDir", ".")
	cfg.Bridge.PipeNameTemplate = getEnvWithDefault("MyrtillePipeNameTemplate", "remotesession_%d_%s")
	cfg.Bridge.ReadChunkBytes = getIntWithDefault("MyrtilleReadChunkBytes", 4096)

	cfg.Policy.DefaultEncoding = getEnvWithDefault("MyrtilleDefaultEncoding", "AUTO")
	cfg.Policy.DefaultQuality = getIntWithDefault("MyrtilleDefaultQuality", 50)
	cfg.Policy.DefaultQuantity = getIntWithDefault("MyrtilleDefaultQuantity", 100)

	cfg.Logging.Level = getOverrideOrEnv(opts.LogLevel, "MyrtilleLogLevel", "info")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	configMutex.Lock()
	globalConfig = cfg
	configMutex.Unlock()

	return cfg, nil
}

// GetGlobalConfig returns the globally stored configuration loaded by the
// bootstrap, or nil if Load/LoadWithOverrides has not run yet.
func GetGlobalConfig() *Config {
	configMutex.Lock()
	defer configMutex.Unlock()
	return globalConfig
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Bridge.ReadChunkBytes <= 0 {
		return fmt.Errorf("read chunk bytes must be positive")
	}

	if !strings.Contains(c.Bridge.PipeNameTemplate, "%d") || !strings.Contains(c.Bridge.PipeNameTemplate, "%s") {
		return fmt.Errorf("pipe name template must contain %%d and %%s")
	}

	switch strings.ToUpper(c.Policy.DefaultEncoding) {
	case "AUTO", "PNG", "JPEG", "WEBP":
	default:
		return fmt.Errorf("invalid default encoding: %s", c.Policy.DefaultEncoding)
	}

	validQualities := map[int]bool{10: true, 25: true, 50: true, 75: true, 100: true}
	if !validQualities[c.Policy.DefaultQuality] {
		return fmt.Errorf("invalid default quality: %d", c.Policy.DefaultQuality)
	}

	validQuantities := map[int]bool{5: true, 10: true, 20: true, 25: true, 50: true, 100: true}
	if !validQuantities[c.Policy.DefaultQuantity] {
		return fmt.Errorf("invalid default quantity: %d", c.Policy.DefaultQuantity)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}

// Helper functions for environment variable parsing.

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getUint32WithDefault(key string, defaultValue uint32) uint32 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseUint(value, 10, 32); err == nil {
			return uint32(intValue)
		}
	}
	return defaultValue
}

// getOverrideOrEnv returns the command-line override value, env value, or default.
func getOverrideOrEnv(override, envKey, defaultValue string) string {
	if override != "" {
		return override
	}
	return getEnvWithDefault(envKey, defaultValue)
}

func getBoolOverride(override bool, envKey string, defaultValue bool) bool {
	if override {
		return true
	}
	return getBoolWithDefault(envKey, defaultValue)
}

func getUint32Override(override uint32, envKey string, defaultValue uint32) uint32 {
	if override != 0 {
		return override
	}
	return getUint32WithDefault(envKey, defaultValue)
}
