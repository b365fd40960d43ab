package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Email    EmailConfig
	Storage  StorageConfig
	Document DocumentConfig
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Name      string `envconfig:"APP_NAME" default:"Inventory PO Manager v1.0"`
	Port      string `envconfig:"PORT" default:"3000"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

type DBConfig struct {
	URL        string `envconfig:"DATABASE_URL"`
	Driver     string `envconfig:"DB_DRIVER" default:"postgres"`
	SQLitePath string `envconfig:"DB_SQLITE_PATH" default:"inventory.db"`

	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER"`
	Password string `envconfig:"DB_PASSWORD"`
	Name     string `envconfig:"DB_NAME"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Seoul"`

	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"100"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
	SlowThreshold   time.Duration `envconfig:"DB_SLOW_THRESHOLD" default:"1s"`
	AutoMigrate     bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// DSN returns the postgres connection string, preferring DATABASE_URL.
func (d DBConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	)
}

func (d *DBConfig) validate() error {
	d.Driver = strings.ToLower(strings.TrimSpace(d.Driver))
	switch d.Driver {
	case DriverPostgres:
		if d.URL == "" && d.Name == "" {
			return fmt.Errorf("DATABASE_URL or DB_NAME is required for the postgres driver")
		}
	case DriverSQLite:
		if d.SQLitePath == "" {
			return fmt.Errorf("DB_SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", d.Driver)
	}
	return nil
}

// EmailConfig holds the SMTP defaults; the settings file may override them at runtime.
type EmailConfig struct {
	User     string        `envconfig:"EMAIL_USER"`
	Pass     string        `envconfig:"EMAIL_PASS"`
	Host     string        `envconfig:"EMAIL_HOST" default:"smtp.naver.com"`
	Port     int           `envconfig:"EMAIL_PORT" default:"465"`
	FromName string        `envconfig:"EMAIL_FROM_NAME" default:"Inventory Management System"`
	Timeout  time.Duration `envconfig:"EMAIL_TIMEOUT" default:"30s"`
}

type StorageConfig struct {
	SettingsFile   string `envconfig:"SETTINGS_FILE" default:"settings.json"`
	UploadDir      string `envconfig:"UPLOAD_DIR" default:"uploads"`
	ImportMaxBytes int64  `envconfig:"IMPORT_MAX_BYTES" default:"5242880"`
}

type DocumentConfig struct {
	CompanyName string `envconfig:"COMPANY_NAME" default:"SS Power Co., Ltd."`
	FontPath    string `envconfig:"PDF_FONT_PATH"`
}
