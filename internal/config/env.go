package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ServerEnv holds the runtime switches of cmd/server that are set per
// deployment rather than per invocation.
type ServerEnv struct {
	DeployEnv string `env:"DEPLOY_ENV"`

	// AdminHTTP defaults to on outside staging and production.
	AdminHTTP *bool `env:"IRONFILTER_ENABLE_ADMIN_HTTP"`
	PprofHTTP bool  `env:"IRONFILTER_ENABLE_PPROF_HTTP" envDefault:"false"`

	DisableDB   bool `env:"IRONFILTER_DISABLE_DB" envDefault:"false"`
	MaxSessions int  `env:"IRONFILTER_MAX_SESSIONS" envDefault:"64"`
}

func LoadServerEnv() (ServerEnv, error) {
	var e ServerEnv
	if err := ParseEnv(&e); err != nil {
		return ServerEnv{}, err
	}
	if e.MaxSessions < 0 {
		return ServerEnv{}, fmt.Errorf("IRONFILTER_MAX_SESSIONS must be >= 0")
	}
	return e, nil
}

func (e ServerEnv) AdminEnabled() bool {
	if e.AdminHTTP != nil {
		return *e.AdminHTTP
	}
	switch strings.ToLower(strings.TrimSpace(e.DeployEnv)) {
	case "staging", "production":
		return false
	default:
		return true
	}
}
