package config

import (
	"errors"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
)

const (
	fileName = ".accordee.yml"
)

type (
	Config struct {
		Host     string `yaml:"host"`
		Username string `yaml:"username"`
	}
)

func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fileName), nil
}

// Parse reads the client configuration. A missing file yields an empty Config.
func Parse() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}
	return ParseFile(p)
}

func ParseFile(p string) (Config, error) {
	c := Config{}
	value, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}

	if err = yaml.Unmarshal(value, &c); err != nil {
		return c, err
	}
	return c, nil
}

func SaveConfig(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SaveFile(p, c)
}

func SaveFile(p string, c Config) error {
	value, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(p, value, 0o600)
}
