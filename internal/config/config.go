package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all synapse configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Graph    GraphConfig    `yaml:"graph"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type EmbedderConfig struct {
	OllamaURL  string `yaml:"ollama_url"`
	Model      string `yaml:"model"`      // e.g. "nomic-embed-text"
	Dimensions int    `yaml:"dimensions"` // expected vector dimension
}

type GraphConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	BoostFactor         float64 `yaml:"boost_factor"`
	SurpriseThreshold   float64 `yaml:"surprise_threshold"`
	TopConnected        int     `yaml:"top_connected"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37780,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Embedder: EmbedderConfig{
			OllamaURL:  "http://localhost:11434",
			Model:      "nomic-embed-text",
			Dimensions: 768,
		},
		Graph: GraphConfig{
			SimilarityThreshold: 0.3,
			BoostFactor:         1.1,
			SurpriseThreshold:   0.3,
			TopConnected:        5,
		},
	}
}

// Load reads a YAML config file over the defaults. Environment variables in
// the file are expanded; unknown fields are rejected so typos fail loudly.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(strings.NewReader(os.ExpandEnv(string(data))))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
