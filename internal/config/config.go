// Package config loads and saves the prep configuration file.
//
// The file is TOML. It is read with viper (defaults, file, environment)
// and written with go-toml. API keys only ever come from the environment
// or the command line and are never written back to disk.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/HexSleeves/prep/internal/provider"
)

const (
	AppName  = "prep"
	FileName = "config.toml"
	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "PREP_CONFIG"
	envPrefix     = "PREP"
)

type Config struct {
	Default   DefaultConfig   `mapstructure:"default" toml:"default"`
	Providers ProvidersConfig `mapstructure:"providers" toml:"providers"`
	UI        UIConfig        `mapstructure:"ui" toml:"ui"`
	History   HistoryConfig   `mapstructure:"history" toml:"history"`
}

type DefaultConfig struct {
	Provider        string `mapstructure:"provider" toml:"provider"`
	Model           string `mapstructure:"model" toml:"model"`
	OutputFormat    string `mapstructure:"output_format" toml:"output_format"`
	CopyToClipboard bool   `mapstructure:"copy_to_clipboard" toml:"copy_to_clipboard"`
}

type ProviderConfig struct {
	Endpoint string `mapstructure:"endpoint" toml:"endpoint"`
	Model    string `mapstructure:"model" toml:"model,omitempty"`
	APIKey   string `mapstructure:"api_key" toml:"-"`
}

type ProvidersConfig struct {
	OllamaLocal ProviderConfig `mapstructure:"ollama-local" toml:"ollama-local"`
	OllamaCloud ProviderConfig `mapstructure:"ollama-cloud" toml:"ollama-cloud"`
	OpenAI      ProviderConfig `mapstructure:"openai" toml:"openai"`
	Anthropic   ProviderConfig `mapstructure:"anthropic" toml:"anthropic"`
}

type UIConfig struct {
	Color   bool `mapstructure:"color" toml:"color"`
	Spinner bool `mapstructure:"spinner" toml:"spinner"`
}

type HistoryConfig struct {
	Enabled    bool `mapstructure:"enabled" toml:"enabled"`
	MaxEntries int  `mapstructure:"max_entries" toml:"max_entries"`
	// Path overrides the database location; empty means the data dir.
	Path string `mapstructure:"path" toml:"path,omitempty"`
}

// providerSections maps each backend to its [providers.*] table name.
var providerSections = map[provider.Kind]string{
	provider.KindOllama:      "ollama-local",
	provider.KindOllamaCloud: "ollama-cloud",
	provider.KindOpenAI:      "openai",
	provider.KindAnthropic:   "anthropic",
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Default: DefaultConfig{
			Provider:     string(provider.KindOllama),
			Model:        provider.KindOllama.DefaultModel(),
			OutputFormat: "text",
		},
		Providers: ProvidersConfig{
			OllamaLocal: ProviderConfig{Endpoint: provider.KindOllama.DefaultEndpoint()},
			OllamaCloud: ProviderConfig{Endpoint: provider.KindOllamaCloud.DefaultEndpoint()},
			OpenAI:      ProviderConfig{Endpoint: provider.KindOpenAI.DefaultEndpoint(), Model: provider.KindOpenAI.DefaultModel()},
			Anthropic:   ProviderConfig{Endpoint: provider.KindAnthropic.DefaultEndpoint(), Model: provider.KindAnthropic.DefaultModel()},
		},
		UI:      UIConfig{Color: true, Spinner: true},
		History: HistoryConfig{Enabled: true, MaxEntries: 1000},
	}
}

// Path returns the config file location: $PREP_CONFIG, or config.toml in
// the user config directory.
func Path() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine config directory: %w", err)
	}
	return filepath.Join(dir, AppName, FileName), nil
}

// DataDir returns the directory holding the history database.
func DataDir() (string, error) {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, AppName), nil
	}
	if runtime.GOOS == "linux" {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".local", "share", AppName), nil
		}
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine data directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// Load reads the file at path on top of the defaults. A missing file is
// not an error. API keys are taken from OLLAMA_API_KEY, OPENAI_API_KEY
// and ANTHROPIC_API_KEY, and any key can be overridden with a PREP_
// variable (PREP_HISTORY_MAX_ENTRIES and so on).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v, Default())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for kind, section := range providerSections {
		if env := kind.CredentialEnv(); env != "" {
			if err := v.BindEnv("providers."+section+".api_key", env); err != nil {
				return nil, fmt.Errorf("bind %s: %w", env, err)
			}
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("default.provider", d.Default.Provider)
	v.SetDefault("default.model", d.Default.Model)
	v.SetDefault("default.output_format", d.Default.OutputFormat)
	v.SetDefault("default.copy_to_clipboard", d.Default.CopyToClipboard)
	for kind, section := range providerSections {
		pc := d.provider(kind)
		prefix := "providers." + section + "."
		v.SetDefault(prefix+"endpoint", pc.Endpoint)
		v.SetDefault(prefix+"model", pc.Model)
		v.SetDefault(prefix+"api_key", "")
	}
	v.SetDefault("ui.color", d.UI.Color)
	v.SetDefault("ui.spinner", d.UI.Spinner)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.max_entries", d.History.MaxEntries)
	v.SetDefault("history.path", d.History.Path)
}

// Save writes c to path, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// Marshal renders c as TOML, without API keys.
func (c *Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize config: %w", err)
	}
	return data, nil
}

// Init writes the default configuration to path. An existing file is
// only replaced when force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s; use --force to overwrite", path)
	}
	return Default().Save(path)
}

func (c *Config) provider(kind provider.Kind) *ProviderConfig {
	switch kind {
	case provider.KindOllama:
		return &c.Providers.OllamaLocal
	case provider.KindOllamaCloud:
		return &c.Providers.OllamaCloud
	case provider.KindOpenAI:
		return &c.Providers.OpenAI
	case provider.KindAnthropic:
		return &c.Providers.Anthropic
	}
	return nil
}

// DefaultProvider parses default.provider.
func (c *Config) DefaultProvider() (provider.Kind, error) {
	kind, err := provider.ParseKind(c.Default.Provider)
	if err != nil {
		return "", fmt.Errorf("config default.provider: %w", err)
	}
	return kind, nil
}

// Resolve builds the identity for kind. Overrides win when non-empty.
// Model falls back to the provider section, then for the Ollama backends
// to default.model, then to the backend's built-in model.
func (c *Config) Resolve(kind provider.Kind, modelOverride, keyOverride string) provider.Identity {
	id := provider.Identity{Kind: kind}
	pc := c.provider(kind)
	if pc != nil {
		id.Endpoint = pc.Endpoint
		id.Model = pc.Model
		id.APIKey = pc.APIKey
	}
	if id.Model == "" && (kind == provider.KindOllama || kind == provider.KindOllamaCloud) {
		id.Model = c.Default.Model
	}
	if modelOverride != "" {
		id.Model = modelOverride
	}
	if keyOverride != "" {
		id.APIKey = keyOverride
	}
	return id
}

// HistoryPath returns the database location.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}
