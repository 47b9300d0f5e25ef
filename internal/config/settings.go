package config

import (
	"errors"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const defaultBackendBaseURL = "https://lucas-auth-215805715498.us-central1.run.app"

type Config struct {
	Backend BackendConfig `toml:"backend"`
	Auth    AuthConfig    `toml:"auth"`
	Logging LoggingConfig `toml:"logging"`
}

type BackendConfig struct {
	BaseURL string `toml:"base_url"`
}

type AuthConfig struct {
	BaseURL string `toml:"base_url"`
	AnonKey string `toml:"anon_key"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL: defaultBackendBaseURL,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func LoadConfig() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return loadConfigFromPath(path)
}

func (c Config) BackendBaseURL() string {
	url := strings.TrimSpace(c.Backend.BaseURL)
	if url == "" {
		return defaultBackendBaseURL
	}
	return strings.TrimRight(url, "/")
}

func (c Config) AuthBaseURL() string {
	url := strings.TrimSpace(c.Auth.BaseURL)
	if url == "" {
		return c.BackendBaseURL()
	}
	return strings.TrimRight(url, "/")
}

func (c Config) AuthAnonKey() string {
	return strings.TrimSpace(c.Auth.AnonKey)
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func loadConfigFromPath(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}
