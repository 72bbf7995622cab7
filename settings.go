package oasbind

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLevel is the level used when LEVEL is not set.
const DefaultLevel = "dev"

// Settings of an application serving a bound schema. Level selects the
// server of the schema when it declares several (see FindRoutePrefix).
type Settings struct {
	Level string `yaml:"level"`
	Host  string `yaml:"host"`
	Port  int    `yaml:"port"`
	Debug bool   `yaml:"debug"`
}

// SettingsFromEnv reads settings from the LEVEL, HOST, PORT and DEBUG
// environment variables.
func SettingsFromEnv() Settings {
	var s Settings
	applyEnvOverrides(&s)
	s.setDefaults()
	return s
}

// LoadSettings reads settings from a YAML file. ${VAR} references are
// expanded and environment variables override file values.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	data = []byte(os.ExpandEnv(string(data)))

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	applyEnvOverrides(&s)
	s.setDefaults()
	return s, nil
}

// Addr returns the host:port the application listens on.
func (s Settings) Addr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

func applyEnvOverrides(s *Settings) {
	if v := os.Getenv("LEVEL"); v != "" {
		s.Level = v
	}
	if v := os.Getenv("HOST"); v != "" {
		s.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			s.Port = port
		}
	}
	if v := os.Getenv("DEBUG"); v != "" {
		s.Debug = parseBool(v)
	}
}

func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func (s *Settings) setDefaults() {
	if s.Level == "" {
		s.Level = DefaultLevel
	}
	if s.Host == "" {
		s.Host = "localhost"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
}
