package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvMatchDelayMS      = "LINKUP_MATCH_DELAY_MS"
	EnvMaxReshuffles     = "LINKUP_MAX_RESHUFFLES"
	EnvDefaultDifficulty = "LINKUP_DEFAULT_DIFFICULTY"
)

// Load loads Link-Up configuration, applies environment overrides and
// validates the result.
// Search order: customPath -> ~/.arcade/configs/linkup.yaml -> ./configs/linkup.yaml -> embedded default
func Load(customPath string) (LinkupConfig, error) {
	cfg, err := loadFile(customPath)
	if err != nil {
		return cfg, err
	}

	ApplyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// MustLoad is Load with a fallback to the built-in defaults. Problems are
// logged rather than returned.
func MustLoad(customPath string) LinkupConfig {
	cfg, err := Load(customPath)
	if err != nil {
		log.Warn("using default configuration", "error", err)
		return DefaultLinkupConfig()
	}
	return cfg
}

func loadFile(customPath string) (LinkupConfig, error) {
	var cfg LinkupConfig

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("linkup.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/linkup.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultLinkupYAML, &cfg); err != nil {
		return DefaultLinkupConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arcade", "configs", filename)
}

// ApplyEnv overrides configuration fields from the environment.
func ApplyEnv(cfg *LinkupConfig) {
	overrideInt(&cfg.MatchDelayMS, EnvMatchDelayMS)
	overrideInt(&cfg.MaxReshuffles, EnvMaxReshuffles)
	overrideString(&cfg.DefaultDifficulty, EnvDefaultDifficulty)
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			log.Warn("ignoring invalid environment value", "key", envKey, "value", val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
