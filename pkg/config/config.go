package config

import (
	"encoding/json"
	"log"
	"os"
)

type Config struct {
	App       AppConfig                 `json:"app"`
	Gateways  map[string]GatewayConfig  `json:"gateways"`
	Providers map[string]ProviderConfig `json:"providers"`
	Memory    MemoryConfig              `json:"memory"`
	Plans     PlansConfig               `json:"plans"`
	Session   SessionConfig             `json:"session"`
}

type AppConfig struct {
	Name string `json:"name"`
}

type GatewayConfig struct {
	Token   string `json:"token"`
	Enabled bool   `json:"enabled"`
}

type ProviderConfig struct {
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url,omitempty"`
	Enabled bool   `json:"enabled"`
}

type MemoryConfig struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

type PlansConfig struct {
	Dir string `json:"dir"`
	// Selection picks the next-question policy: "random" (default) or
	// "ordered" for declaration order.
	Selection string `json:"selection,omitempty"`
	// Answers maps an action name to a web page that answers it, served
	// through the readability pipeline instead of a canned template.
	Answers map[string]string `json:"answers,omitempty"`
}

type SessionConfig struct {
	IdleTimeoutSeconds int `json:"idle_timeout_seconds"`
}

func LoadConfig(path string) *Config {
	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}
	defer file.Close()

	var cfg Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		log.Fatalf("failed to decode config file: %v", err)
	}

	if cfg.Plans.Dir == "" {
		cfg.Plans.Dir = "./plans"
	}
	if cfg.Session.IdleTimeoutSeconds <= 0 {
		cfg.Session.IdleTimeoutSeconds = 1800
	}

	return &cfg
}

// GetDefaultProvider returns the first enabled provider
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// GetGateway returns the named gateway config if enabled
func (c *Config) GetGateway(name string) (GatewayConfig, bool) {
	gw, ok := c.Gateways[name]
	if ok && gw.Enabled && gw.Token != "" {
		return gw, true
	}
	return GatewayConfig{}, false
}
