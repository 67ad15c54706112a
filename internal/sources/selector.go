package sources

import (
	"context"
	"fmt"

	"github.com/vvka-141/credcheck/internal/config"
	"github.com/vvka-141/credcheck/pkg/credcheck"
)

// Selector dispatches a run to exactly one credential source.
type Selector struct {
	sources map[credcheck.Mode]credcheck.Source
	logger  credcheck.Logger
}

// NewSelector creates a Selector over the given sources, keyed by their Mode().
func NewSelector(logger credcheck.Logger, sources ...credcheck.Source) *Selector {
	m := make(map[credcheck.Mode]credcheck.Source, len(sources))
	for _, src := range sources {
		m[src.Mode()] = src
	}
	return &Selector{sources: m, logger: logger}
}

// NewDefaultSelector wires the environment, file and Vault sources from settings.
func NewDefaultSelector(logger credcheck.Logger, settings config.Settings) *Selector {
	return NewSelector(logger,
		NewEnvSource(),
		NewFileSource(settings.SecretsFile),
		NewVaultSource(settings.VaultAddr, settings.VaultToken, settings.VaultPath),
	)
}

// Select parses the raw mode value and returns the matching source.
// An unknown value fails with credcheck.ErrUnknownMode before any source runs.
func (s *Selector) Select(rawMode string) (credcheck.Source, error) {
	mode, err := credcheck.ParseMode(rawMode)
	if err != nil {
		return nil, err
	}
	src, ok := s.sources[mode]
	if !ok {
		return nil, fmt.Errorf("no source registered for %q: %w", mode, credcheck.ErrUnknownMode)
	}
	return src, nil
}

// Resolve selects the source for rawMode, announces it and invokes it once.
func (s *Selector) Resolve(ctx context.Context, rawMode string) (credcheck.Mode, credcheck.CredentialRecord, error) {
	src, err := s.Select(rawMode)
	if err != nil {
		return "", credcheck.CredentialRecord{}, err
	}

	s.logger.Info("SECRET_MODE = %s", src.Mode())
	if d, ok := src.(fmt.Stringer); ok {
		s.logger.Verbose("Resolving credentials from %s", d)
	}

	record, err := src.Resolve(ctx)
	if err != nil {
		return src.Mode(), credcheck.CredentialRecord{}, fmt.Errorf("%s source: %w", src.Mode(), err)
	}
	return src.Mode(), record, nil
}
