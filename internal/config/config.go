package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config is the process-level configuration, loaded from the
// environment with an optional .env file for development.
type Config struct {
	Env  string `env:"APP_ENV,default=development"`
	Port string `env:"PORT,default=8080"`

	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisAddr   string `env:"REDIS_ADDR"`

	JWTSecret  string `env:"JWT_SECRET,required"`
	SweepToken string `env:"SWEEP_TOKEN,required"`

	Mail  MailConfig
	Minio MinioConfig
}

type MailConfig struct {
	ResendAPIKey string `env:"RESEND_API_KEY"`
	FromEmail    string `env:"MAIL_FROM,default=invoices@billora.local"`
	Sandbox      bool   `env:"MAIL_SANDBOX,default=true"`
}

type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	UseSSL    bool   `env:"MINIO_USE_SSL,default=false"`
	PDFBucket string `env:"MINIO_PDF_BUCKET,default=invoice-pdfs"`
}

// Load reads configuration from the environment. A missing .env file
// is fine in production where variables come from the platform.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment only")
	}

	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
