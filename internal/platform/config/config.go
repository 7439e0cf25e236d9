package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures process-level configuration so main stays lean. An empty
// DatabaseURL selects the in-memory stores.
type Server struct {
	Addr            string        `env:"SUPPLYTRACK_ADDR" envDefault:":8080"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	JWTSigningKey   string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	TokenTTL        time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
}

// FromEnv builds a Server config from environment variables.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
