// internal/config/config.go

// Package config 讀取服務設定：先載入 .env，再讀 YAML 檔（若有指定），環境變數優先。
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env             string        `yaml:"env" env:"ENV" env-default:"local" env-description:"Environment (local, dev, prod)"`
	DataFile        string        `yaml:"data_file" env:"DATA_FILE" env-default:"users.json" env-description:"Path of the account backup file"`
	HTTPAddr        string        `yaml:"http_addr" env:"HTTP_ADDR" env-default:":8080"`
	LoginAttempts   int64         `yaml:"login_attempts" env:"LOGIN_ATTEMPTS" env-default:"3"`
	LoginWindow     time.Duration `yaml:"login_window" env:"LOGIN_WINDOW" env-default:"15m"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Load 讀取設定。path 為空時只看環境變數；否則檔案必須存在。
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env config: %w", err)
		}
	} else {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad 以 -config 旗標或 CONFIG_PATH 指定的檔案載入設定，失敗時 panic。
func MustLoad() *Config {
	cfg, err := Load(fetchConfigPath())
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Env {
	case "local", "dev", "prod":
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}
	if c.DataFile == "" {
		return fmt.Errorf("data file path is empty")
	}
	if c.LoginAttempts < 1 {
		return fmt.Errorf("login attempts must be >= 1, got %d", c.LoginAttempts)
	}
	if c.LoginWindow <= 0 {
		return fmt.Errorf("login window must be positive, got %s", c.LoginWindow)
	}
	return nil
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}
