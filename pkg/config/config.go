package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// BackendConfig describes one LLM backend. Backends are tried in the order
// they appear in the config; the first one that answers wins.
type BackendConfig struct {
	Name      string `mapstructure:"name"`
	Kind      string `mapstructure:"kind"` // "openai" or "ollama"
	Endpoint  string `mapstructure:"endpoint"`
	Model     string `mapstructure:"model"`
	APIKeyEnv string `mapstructure:"api_key_env"`
	MaxTokens int    `mapstructure:"max_tokens"`
	TimeoutS  int    `mapstructure:"timeout_seconds"`
}

// SafetyConfig holds the three file-classification lists for the
// self-modification gate. Paths matching none of the lists are refused.
type SafetyConfig struct {
	Protected []string `mapstructure:"protected"`
	Sensitive []string `mapstructure:"sensitive"`
	Allowed   []string `mapstructure:"allowed"`
}

// Config is the full application configuration.
type Config struct {
	// Identity is prepended to every prompt the assistant sends. It is
	// threaded through the pipeline explicitly rather than living in a
	// mutable global.
	Identity string `mapstructure:"identity"`

	ActiveCategory string `mapstructure:"active_category"`
	ActivePersona  string `mapstructure:"active_persona"`

	Backends []BackendConfig `mapstructure:"backends"`

	PlansDir     string `mapstructure:"plans_dir"`
	MemoryDir    string `mapstructure:"memory_dir"`
	MemoryWindow int    `mapstructure:"memory_window"`

	Safety SafetyConfig `mapstructure:"safety"`

	// SelfModCommand is the external coding-agent command line. The
	// "{instruction}" and "{path}" arguments are replaced at invocation
	// time, e.g. ["aider", "--yes", "--message", "{instruction}", "{path}"]
	// or ["openhands", "--task", "{instruction}", "{path}"]. Without
	// placeholders both values are appended as trailing arguments.
	SelfModCommand []string `mapstructure:"selfmod_command"`

	SkipPrompt bool `mapstructure:"skip_prompt"`
}

const configDirName = ".selfai"

// Load reads configuration from .selfai/config.yaml (searched in the working
// directory and the user home directory) merged with SELFAI_* environment
// variables. A missing config file is not an error; defaults apply.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDirName)
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, configDirName))
	}
	v.SetEnvPrefix("SELFAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("identity", "You are SelfAI, a personal terminal assistant.")
	v.SetDefault("active_category", "general")
	v.SetDefault("plans_dir", filepath.Join(configDirName, "plans"))
	v.SetDefault("memory_dir", filepath.Join(configDirName, "memory"))
	v.SetDefault("memory_window", 3)
	v.SetDefault("selfmod_command", []string{"aider", "--yes", "--message", "{instruction}", "{path}"})
	v.SetDefault("safety.protected", []string{
		"go.mod",
		"go.sum",
		"pkg/selfmod/",
		"pkg/config/",
	})
	v.SetDefault("safety.sensitive", []string{
		"cmd/",
		"pkg/dispatch/",
		"pkg/pipeline/",
	})
	v.SetDefault("safety.allowed", []string{
		"pkg/tools/*",
		"docs/*",
		"*.md",
	})
	v.SetDefault("backends", []map[string]interface{}{
		{
			"name":            "openai",
			"kind":            "openai",
			"endpoint":        "https://api.openai.com/v1/chat/completions",
			"model":           "gpt-4o-mini",
			"api_key_env":     "OPENAI_API_KEY",
			"max_tokens":      4096,
			"timeout_seconds": 120,
		},
		{
			"name":            "ollama",
			"kind":            "ollama",
			"model":           "llama3.1",
			"max_tokens":      4096,
			"timeout_seconds": 180,
		},
	})
}

// Validate checks the loaded configuration for problems that would only
// surface mid-pipeline otherwise.
func (c *Config) Validate() error {
	if len(c.Backends) == 0 {
		return fmt.Errorf("no LLM backends configured")
	}
	for i, b := range c.Backends {
		if b.Name == "" {
			return fmt.Errorf("backend %d has no name", i)
		}
		switch b.Kind {
		case "openai", "ollama":
		default:
			return fmt.Errorf("backend %s has unknown kind %q", b.Name, b.Kind)
		}
		if b.Model == "" {
			return fmt.Errorf("backend %s has no model", b.Name)
		}
	}
	if c.MemoryWindow < 0 {
		return fmt.Errorf("memory_window must not be negative")
	}
	return nil
}
