package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/vvka-141/credcheck/pkg/credcheck"
)

// Validator proves a credential record is usable by opening one connection
// and running the liveness query over it.
type Validator struct {
	connector credcheck.Connector
	logger    credcheck.Logger
	onPhase   func(credcheck.State)
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithPhaseHook registers fn to be called with StateConnected once the
// connection is open and StateQueryExecuted once the query has returned.
func WithPhaseHook(fn func(credcheck.State)) ValidatorOption {
	return func(v *Validator) { v.onPhase = fn }
}

// NewValidator creates a Validator. connector and logger must not be nil.
func NewValidator(connector credcheck.Connector, logger credcheck.Logger, opts ...ValidatorOption) *Validator {
	if connector == nil {
		panic("connector cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	v := &Validator{connector: connector, logger: logger, onPhase: func(credcheck.State) {}}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate connects with record, runs SELECT 1 and returns the single result
// row keyed by column name. The connection is closed before returning on
// every path that opened one. No query is attempted if the connect fails.
func (v *Validator) Validate(ctx context.Context, record credcheck.CredentialRecord) (map[string]any, error) {
	v.logger.Verbose("Connecting to %s:%d/%s as %s", record.Host(), record.Port(), record.Database(), record.User())

	conn, err := v.connector.Connect(ctx, record)
	if err != nil {
		if !errors.Is(err, credcheck.ErrConnectionFailed) {
			err = fmt.Errorf("%w: %w", credcheck.ErrConnectionFailed, err)
		}
		return nil, err
	}
	defer func() {
		// The session is being discarded; a failed close only matters for diagnostics.
		if cerr := conn.Close(context.WithoutCancel(ctx)); cerr != nil {
			v.logger.Verbose("Closing connection: %v", cerr)
		}
	}()
	v.onPhase(credcheck.StateConnected)

	v.logger.Verbose("Executing %s", credcheck.LivenessQuery)
	row, err := conn.QueryRow(ctx, credcheck.LivenessQuery)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", credcheck.LivenessQuery, credcheck.ErrQueryFailed, err)
	}
	v.onPhase(credcheck.StateQueryExecuted)
	return row, nil
}
