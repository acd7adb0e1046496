package config

import "time"

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

type Config struct {
	Env      string `env:"ENV" env-required:"true"`
	HTTP     HTTPConfig
	Postgres PostgresConfig
	JWT      JWTConfig
	Digest   DigestConfig
}

type HTTPConfig struct {
	Host            string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type PostgresConfig struct {
	Host           string        `env:"POSTGRES_HOST" env-required:"true"`
	Port           int           `env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `env:"POSTGRES_USERNAME" env-required:"true"`
	Password       string        `env:"POSTGRES_PASSWORD" env-required:"true"`
	Database       string        `env:"POSTGRES_DATABASE" env-required:"true"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
}

// JWTConfig describes the tokens minted by the external identity
// provider. The service only verifies them.
type JWTConfig struct {
	Issuer     string `env:"JWT_ISSUER" env-required:"true"`
	SigningKey string `env:"JWT_SIGNING_KEY" env-required:"true"`
}

// DigestConfig sets how often pending daily and weekly alert digests
// are flushed to the mail/push gateway. The short defaults are for
// local runs; production overrides them to 24h and 168h.
type DigestConfig struct {
	DailyInterval  time.Duration `env:"DIGEST_DAILY_INTERVAL" env-default:"24h"`
	WeeklyInterval time.Duration `env:"DIGEST_WEEKLY_INTERVAL" env-default:"168h"`
}
