package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	ListenAddr string `yaml:"listen_addr"`

	StockfishPath   string        `yaml:"stockfish_path"`
	EngineArgs      []string      `yaml:"engine_args"`
	SkillLevel      int           `yaml:"engine_skill_level"`
	MoveTimeMillis  int           `yaml:"engine_movetime_ms"`
	Depth           int           `yaml:"engine_depth"`
	EngineTimeout   time.Duration `yaml:"engine_timeout"`
	EngineMaxActive int           `yaml:"engine_max_concurrent"`

	IDHMACKey string `yaml:"id_hmac_key"`

	RedisURL      string `yaml:"redis_url"`
	ChannelPrefix string `yaml:"events_channel_prefix"`
}

func defaults() *AppConfig {
	return &AppConfig{
		ListenAddr:     "0.0.0.0:3000",
		StockfishPath:  "stockfish",
		SkillLevel:     20,
		MoveTimeMillis: 1000,
		EngineTimeout:  30 * time.Second,
		ChannelPrefix:  "chess:game:",
	}
}

// Load reads CONFIG_FILE when set, then applies environment overrides.
func Load() (*AppConfig, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("STOCKFISH_PATH")); v != "" {
		cfg.StockfishPath = v
	}
	if v := strings.TrimSpace(os.Getenv("ENGINE_ARGS")); v != "" {
		cfg.EngineArgs = strings.Fields(v)
	}
	if err := envInt("ENGINE_SKILL_LEVEL", &cfg.SkillLevel); err != nil {
		return nil, err
	}
	if err := envInt("ENGINE_MOVETIME_MS", &cfg.MoveTimeMillis); err != nil {
		return nil, err
	}
	if err := envInt("ENGINE_DEPTH", &cfg.Depth); err != nil {
		return nil, err
	}
	if err := envInt("ENGINE_MAX_CONCURRENT", &cfg.EngineMaxActive); err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(os.Getenv("ENGINE_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("ENGINE_TIMEOUT: %w", err)
		}
		cfg.EngineTimeout = d
	}
	if v := os.Getenv("ID_HMAC_KEY"); strings.TrimSpace(v) != "" {
		cfg.IDHMACKey = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("EVENTS_CHANNEL_PREFIX")); v != "" {
		cfg.ChannelPrefix = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return errors.New("LISTEN_ADDR is required")
	}
	if strings.TrimSpace(c.StockfishPath) == "" {
		return errors.New("STOCKFISH_PATH is required")
	}
	if c.SkillLevel < 0 || c.SkillLevel > 20 {
		return fmt.Errorf("ENGINE_SKILL_LEVEL must be between 0 and 20, got %d", c.SkillLevel)
	}
	if c.MoveTimeMillis < 0 || c.Depth < 0 || c.EngineMaxActive < 0 {
		return errors.New("engine limits must not be negative")
	}
	if c.EngineTimeout <= 0 {
		return errors.New("ENGINE_TIMEOUT must be positive")
	}
	return nil
}

func loadFile(cfg *AppConfig, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func envInt(key string, dst *int) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
