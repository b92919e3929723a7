package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env"
)

type Config struct {
	Address            string        `env:"RUN_ADDRESS" envDefault:"localhost:8080"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"INFO"`
	DatabaseConnection string        `env:"DATABASE_URI"`
	JWTSecret          string        `env:"JWT_SECRET" envDefault:"dontexposethis"`
	JWTTTL             time.Duration `env:"JWT_TTL" envDefault:"24h"`

	EpayURL      string `env:"EPAY_URL" envDefault:"https://epay.kkb.kz/jsp/process/logon.jsp"`
	EpayTemplate string `env:"EPAY_TEMPLATE" envDefault:"default"`
	PostbackURL  string `env:"EPAY_POSTBACK_URL"`
	BackLink     string `env:"EPAY_BACK_LINK"`
	MerchantName string `env:"EPAY_MERCHANT_NAME"`
	KeyPath      string `env:"EPAY_KEY_PATH"`
	BankCertPath string `env:"EPAY_BANK_CERT_PATH"`

	SMTPAddress   string `env:"SMTP_ADDRESS" envDefault:"localhost:25"`
	SMTPFrom      string `env:"SMTP_FROM" envDefault:"billing@localhost"`
	NotifyWorkers int    `env:"NOTIFY_WORKERS" envDefault:"4"`
	NotifyBuffer  int    `env:"NOTIFY_BUFFER" envDefault:"128"`
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	address := flag.String("a", cfg.Address, "{Host:port} for server")
	loglevel := flag.String("l", cfg.LogLevel, "Log level for server")
	databaseConnection := flag.String("d", cfg.DatabaseConnection, "Database connection string")
	jwtTTL := flag.Duration("t", cfg.JWTTTL, "TTL for JWT token (e.g. 24h; 30m)")
	epayURL := flag.String("e", cfg.EpayURL, "Bank gateway payment page URL")
	postbackURL := flag.String("p", cfg.PostbackURL, "Public URL the bank posts settlement callbacks to")
	keyPath := flag.String("k", cfg.KeyPath, "Path to merchant PEM private key")
	bankCertPath := flag.String("b", cfg.BankCertPath, "Path to bank PEM certificate")

	flag.Parse()

	cfg.Address = *address
	cfg.LogLevel = *loglevel
	cfg.DatabaseConnection = *databaseConnection
	cfg.JWTTTL = *jwtTTL
	cfg.EpayURL = *epayURL
	cfg.PostbackURL = *postbackURL
	cfg.KeyPath = *keyPath
	cfg.BankCertPath = *bankCertPath

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("ENV JWT_SECRET must be set")
	}
	if cfg.KeyPath == "" || cfg.BankCertPath == "" {
		return nil, fmt.Errorf("merchant key and bank certificate paths must be set")
	}
	if cfg.PostbackURL == "" {
		return nil, fmt.Errorf("ENV EPAY_POSTBACK_URL must be set")
	}

	return cfg, nil
}
