package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
		// BaseURL is the public origin used to build verification
		// links, e.g. https://app.example.com
		BaseURL string `yaml:"base_url"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Session struct {
		SigningKey string `yaml:"signing_key"`
		// Secure marks cookies Secure; on in production
		Secure bool `yaml:"secure"`
	} `yaml:"session"`
	Verification struct {
		CodeTTLSeconds int `yaml:"code_ttl_seconds"`
	} `yaml:"verification"`
}

func LoadConfig() *Config {
	// .env is optional, env vars win over the yaml file
	_ = godotenv.Load()

	f, err := os.Open("config/config.yaml")
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Email.SMTPPassword = v
	}
	if v := os.Getenv("SESSION_SIGNING_KEY"); v != "" {
		cfg.Session.SigningKey = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	if cfg.Verification.CodeTTLSeconds == 0 {
		cfg.Verification.CodeTTLSeconds = 600
	}
	if cfg.Session.SigningKey == "" {
		panic("session signing key is not configured")
	}
	return &cfg
}
