package credcheck

import "context"

// Source produces a CredentialRecord from one backing store.
// Each run invokes exactly one Source exactly once.
type Source interface {
	// Resolve fetches and normalizes credentials.
	// Errors wrap one of the package sentinels.
	Resolve(ctx context.Context) (CredentialRecord, error)

	// Mode returns the mode this source serves.
	Mode() Mode
}
