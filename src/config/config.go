package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

type Environment string

const (
	Live Environment = "live"
	Beta             = "beta"
	Dev              = "dev"
)

// Config is populated from the environment on startup. Every field has a
// default suitable for local development, so a bare `agora` just works.
var Config AgoraConfig

func init() {
	if err := cleanenv.ReadEnv(&Config); err != nil {
		panic(fmt.Errorf("failed to read config from environment: %w", err))
	}
}

type AgoraConfig struct {
	Env         Environment `env:"AGORA_ENV" env-default:"dev"`
	Addr        string      `env:"AGORA_ADDR" env-default:":9001"`
	PrivateAddr string      `env:"AGORA_PRIVATE_ADDR" env-default:"localhost:9002"`
	BaseUrl     string      `env:"AGORA_BASE_URL" env-default:"http://localhost:9001"`
	LogLevel    LogLevel    `env:"AGORA_LOG_LEVEL" env-default:"info"`

	Postgres PostgresConfig
	Auth     AuthConfig
}

type PostgresConfig struct {
	User     string      `env:"POSTGRES_USER" env-default:"agora"`
	Password string      `env:"POSTGRES_PASSWORD" env-default:"password"`
	Hostname string      `env:"POSTGRES_HOST" env-default:"localhost"`
	Port     int         `env:"POSTGRES_PORT" env-default:"5432"`
	DbName   string      `env:"POSTGRES_DB" env-default:"agora"`
	LogLevel PgxLogLevel `env:"POSTGRES_LOG_LEVEL" env-default:"warn"`
	MinConn  int32       `env:"POSTGRES_MIN_CONN" env-default:"2"`
	MaxConn  int32       `env:"POSTGRES_MAX_CONN" env-default:"10"`
}

type AuthConfig struct {
	// Symmetric secret for signing access tokens. The default is only
	// acceptable in dev.
	TokenSecret  string `env:"AGORA_JWT_SECRET" env-default:"fallback-secret-key"`
	CookieDomain string `env:"AGORA_COOKIE_DOMAIN" env-default:"localhost"`
	CookieSecure bool   `env:"AGORA_COOKIE_SECURE" env-default:"false"`

	// Where CSRF sessions live: "memory" or "postgres".
	CSRFStore string `env:"AGORA_CSRF_STORE" env-default:"memory"`
}

func (info PostgresConfig) DSN() string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s", info.User, info.Password, info.Hostname, info.Port, info.DbName)
}

// LogLevel wraps zerolog.Level so it can be parsed straight from the
// environment.
type LogLevel zerolog.Level

func (l *LogLevel) SetValue(s string) error {
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return fmt.Errorf("failed to parse log level %q: %w", s, err)
	}
	*l = LogLevel(level)
	return nil
}

// PgxLogLevel does the same for pgx's tracelog levels.
type PgxLogLevel tracelog.LogLevel

func (l *PgxLogLevel) SetValue(s string) error {
	level, err := tracelog.LogLevelFromString(s)
	if err != nil {
		return fmt.Errorf("failed to parse postgres log level %q: %w", s, err)
	}
	*l = PgxLogLevel(level)
	return nil
}
