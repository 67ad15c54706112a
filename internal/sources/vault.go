package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	vault "github.com/hashicorp/vault/api"

	"github.com/vvka-141/credcheck/pkg/credcheck"
)

// VaultSource reads credentials from a HashiCorp Vault KV v2 secret.
// The secret's data must contain host, port, name, user and password.
type VaultSource struct {
	addr  string
	token string
	path  string
}

// NewVaultSource returns a VaultSource. Empty addr and path fall back to
// credcheck.DefaultVaultAddr and credcheck.DefaultVaultPath.
func NewVaultSource(addr, token, path string) *VaultSource {
	if addr == "" {
		addr = credcheck.DefaultVaultAddr
	}
	if path == "" {
		path = credcheck.DefaultVaultPath
	}
	return &VaultSource{addr: addr, token: token, path: path}
}

func (s *VaultSource) Mode() credcheck.Mode { return credcheck.ModeSecretsService }

// String describes the source for logging. It never includes the token.
func (s *VaultSource) String() string {
	return fmt.Sprintf("Vault(addr=%s, path=%s)", s.addr, s.path)
}

// Resolve performs one read against the secrets service and blocks until
// it completes or ctx is done.
func (s *VaultSource) Resolve(ctx context.Context) (credcheck.CredentialRecord, error) {
	client, err := s.newClient()
	if err != nil {
		return credcheck.CredentialRecord{}, fmt.Errorf("failed to create Vault client for %s: %v: %w", s.addr, err, credcheck.ErrSecretsServiceUnreachable)
	}

	secret, err := client.Logical().ReadWithContext(ctx, s.path)
	if err != nil {
		return credcheck.CredentialRecord{}, wrapVaultError(err, s.addr, s.path)
	}
	if secret == nil || len(secret.Data) == 0 {
		return credcheck.CredentialRecord{}, fmt.Errorf("%s: %w", s.path, credcheck.ErrSecretNotFound)
	}

	raw, ok := secret.Data["data"]
	if !ok || raw == nil {
		// A deleted or destroyed KV v2 version answers 404 with metadata only,
		// which the client hands back as a secret with "data": null.
		if _, hasMetadata := secret.Data["metadata"]; hasMetadata {
			return credcheck.CredentialRecord{}, fmt.Errorf("%s: current version has no data (deleted or destroyed): %w", s.path, credcheck.ErrSecretNotFound)
		}
		return credcheck.CredentialRecord{}, fmt.Errorf("%s: response has no nested \"data\" object (is this a KV v2 path?): %w", s.path, credcheck.ErrSchema)
	}
	fields, ok := raw.(map[string]interface{})
	if !ok {
		return credcheck.CredentialRecord{}, fmt.Errorf("%s: \"data\" must be an object, got %T: %w", s.path, raw, credcheck.ErrSchema)
	}
	if len(fields) == 0 {
		return credcheck.CredentialRecord{}, fmt.Errorf("%s: %w", s.path, credcheck.ErrSecretNotFound)
	}

	return recordFromFields(fields, s.path)
}

func (s *VaultSource) newClient() (*vault.Client, error) {
	cfg := vault.DefaultConfig()
	if cfg.Error != nil {
		return nil, cfg.Error
	}
	cfg.Address = s.addr
	cfg.MaxRetries = 0

	client, err := vault.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	client.SetToken(s.token)
	return client, nil
}

// wrapVaultError separates "the server answered no" from "the server could not be reached".
// A 404 never gets here: the client turns it into a nil or metadata-only secret.
func wrapVaultError(err error, addr, path string) error {
	var respErr *vault.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusForbidden:
			return fmt.Errorf(`permission denied reading %q from %s

Possible causes:
  - $VAULT_TOKEN is missing, expired or revoked
  - The token's policy does not grant "read" on this path

Original error: %v: %w`, path, addr, err, credcheck.ErrSecretsServiceUnreachable)
		default:
			return fmt.Errorf("Vault at %s returned status %d: %v: %w", addr, respErr.StatusCode, err, credcheck.ErrSecretsServiceUnreachable)
		}
	}

	return fmt.Errorf(`cannot reach Vault at %s

Possible causes:
  - Vault is not running or sealed
  - Wrong address (check $VAULT_ADDR)
  - TLS or network configuration issue

Original error: %v: %w`, addr, err, credcheck.ErrSecretsServiceUnreachable)
}
