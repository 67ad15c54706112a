package sources

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/credcheck/pkg/credcheck"
)

// Environment variables read by EnvSource.
const (
	EnvDBHost     = "DB_HOST"
	EnvDBPort     = "DB_PORT"
	EnvDBName     = "DB_NAME"
	EnvDBUser     = "DB_USER"
	EnvDBPassword = "DB_PASSWORD"
)

// EnvSource builds credentials from DB_* environment variables.
// Unset or empty variables fall back to the defaults in package credcheck;
// the password has no default and may be empty.
type EnvSource struct {
	lookup func(string) (string, bool)
}

// NewEnvSource returns an EnvSource reading the process environment.
func NewEnvSource() *EnvSource {
	return NewEnvSourceWithLookup(os.LookupEnv)
}

// NewEnvSourceWithLookup returns an EnvSource reading through lookup.
func NewEnvSourceWithLookup(lookup func(string) (string, bool)) *EnvSource {
	return &EnvSource{lookup: lookup}
}

func (s *EnvSource) Mode() credcheck.Mode { return credcheck.ModeEnvironment }

// Resolve never performs I/O beyond reading the environment. It only fails
// when DB_PORT is set to something other than a valid port number.
func (s *EnvSource) Resolve(_ context.Context) (credcheck.CredentialRecord, error) {
	port := credcheck.DefaultPort
	if raw := s.get(EnvDBPort); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			return credcheck.CredentialRecord{}, fmt.Errorf("$%s=%q is not an integer: %w", EnvDBPort, raw, credcheck.ErrSchema)
		}
		port = p
	}

	record, err := credcheck.NewCredentialRecord(
		s.getOr(EnvDBHost, credcheck.DefaultHost),
		port,
		s.getOr(EnvDBName, credcheck.DefaultDatabase),
		s.getOr(EnvDBUser, credcheck.DefaultUser),
		s.get(EnvDBPassword),
	)
	if err != nil {
		return credcheck.CredentialRecord{}, fmt.Errorf("environment: %w", err)
	}
	return record, nil
}

func (s *EnvSource) get(key string) string {
	v, _ := s.lookup(key)
	return v
}

func (s *EnvSource) getOr(key, fallback string) string {
	if v := s.get(key); v != "" {
		return v
	}
	return fallback
}
