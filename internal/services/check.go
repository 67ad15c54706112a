package services

import (
	"context"

	"github.com/vvka-141/credcheck/internal/db"
	"github.com/vvka-141/credcheck/pkg/credcheck"
)

// CredentialResolver selects one credential source by mode and invokes it.
// sources.Selector implements it.
type CredentialResolver interface {
	Resolve(ctx context.Context, rawMode string) (credcheck.Mode, credcheck.CredentialRecord, error)
}

// CheckService runs one credential check: resolve, connect, SELECT 1.
// Thread-Safety: a single CheckService may run checks concurrently; each Run
// has its own state and connection.
type CheckService struct {
	resolver  CredentialResolver
	connector credcheck.Connector
	logger    credcheck.Logger
}

// NewCheckService creates a CheckService. Panics on nil dependencies, which
// are wiring mistakes rather than runtime conditions.
func NewCheckService(resolver CredentialResolver, connector credcheck.Connector, logger credcheck.Logger) *CheckService {
	if resolver == nil {
		panic("resolver cannot be nil")
	}
	if connector == nil {
		panic("connector cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &CheckService{resolver: resolver, connector: connector, logger: logger}
}

// Run performs one check for rawMode. The returned result always carries the
// terminal state; on failure it is StateFailed and the error is returned
// unchanged so callers can match it with errors.Is.
func (s *CheckService) Run(ctx context.Context, rawMode string) (credcheck.CheckResult, error) {
	run := &checkRun{logger: s.logger, state: credcheck.StateIdle}

	mode, record, err := s.resolver.Resolve(ctx, rawMode)
	if mode != "" {
		run.advance(credcheck.StateModeSelected)
	}
	if err != nil {
		return run.fail(mode, err)
	}
	run.advance(credcheck.StateCredentialsResolved)

	s.logger.Info("DB config (without password) = %s", record.Redacted())

	validator := db.NewValidator(s.connector, s.logger, db.WithPhaseHook(run.advance))
	row, err := validator.Validate(ctx, record)
	if err != nil {
		return run.fail(mode, err)
	}

	s.logger.Info("DB %s result: %v", credcheck.LivenessQuery, row)
	s.logger.Info("OK: DB connection successful")
	run.advance(credcheck.StateDone)

	return credcheck.CheckResult{Mode: mode, State: run.state, Row: row}, nil
}

// checkRun tracks the lifecycle of a single Run.
type checkRun struct {
	logger credcheck.Logger
	state  credcheck.State
}

func (r *checkRun) advance(to credcheck.State) {
	r.logger.Verbose("State %s -> %s", r.state, to)
	r.state = to
}

func (r *checkRun) fail(mode credcheck.Mode, err error) (credcheck.CheckResult, error) {
	r.advance(credcheck.StateFailed)
	return credcheck.CheckResult{Mode: mode, State: r.state}, err
}
