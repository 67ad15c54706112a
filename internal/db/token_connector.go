package db

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/credcheck/internal/config"
	"github.com/vvka-141/credcheck/pkg/credcheck"
)

// tokenExpiryWarning is the remaining lifetime below which a warning is printed.
const tokenExpiryWarning = 5 * time.Minute

// TokenProviderFactory returns the TokenProvider for a record. AWS IAM tokens
// are bound to endpoint and user, so the provider is created per record.
type TokenProviderFactory func(record credcheck.CredentialRecord) (TokenProvider, error)

// StaticTokenProvider returns a factory that always yields p.
func StaticTokenProvider(p TokenProvider) TokenProviderFactory {
	return func(credcheck.CredentialRecord) (TokenProvider, error) { return p, nil }
}

// TokenBasedConnector implements the Connector interface for cloud providers
// that authenticate via short-lived tokens (AWS IAM, Azure Entra ID).
// The token replaces the record's password for this connection only.
type TokenBasedConnector struct {
	opts         Options
	providerFor  TokenProviderFactory
	providerName string
	logger       credcheck.Logger
}

// NewTokenBasedConnector creates a connector that uses a TokenProvider for authentication.
// providerName is used in error/warning messages (e.g., "AWS IAM", "Azure").
// logger must not be nil.
func NewTokenBasedConnector(opts Options, providerFor TokenProviderFactory, providerName string, logger credcheck.Logger) *TokenBasedConnector {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &TokenBasedConnector{
		opts:         opts,
		providerFor:  providerFor,
		providerName: providerName,
		logger:       logger,
	}
}

// Connect acquires one token and opens one connection with it.
// Token failures count as connection failures.
func (c *TokenBasedConnector) Connect(ctx context.Context, record credcheck.CredentialRecord) (credcheck.DBConnection, error) {
	provider, err := c.providerFor(record)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create %s token provider: %w", credcheck.ErrConnectionFailed, c.providerName, err)
	}

	token, expiresOn, err := provider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to acquire %s token from %s: %w", credcheck.ErrConnectionFailed, c.providerName, provider, err)
	}
	c.logger.Verbose("Acquired %s token from %s", c.providerName, provider)

	if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
		c.logger.Info("Warning: %s token expires in %v", c.providerName, remaining.Round(time.Second))
	}

	connConfig, err := parseConfig(record, c.opts, c.logger)
	if err != nil {
		return nil, err
	}
	connConfig.Password = token

	conn, err := connect(ctx, connConfig, record)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// newAWSConnector signs tokens for each record's endpoint and user in the
// settings' region.
func newAWSConnector(settings config.Settings, opts Options, logger credcheck.Logger) *TokenBasedConnector {
	region := settings.AWSRegion
	return NewTokenBasedConnector(opts, func(record credcheck.CredentialRecord) (TokenProvider, error) {
		endpoint := fmt.Sprintf("%s:%d", record.Host(), record.Port())
		return NewAWSIAMTokenProvider(endpoint, region, record.User())
	}, "AWS IAM", logger)
}

// newAzureConnector uses Service Principal auth when the settings carry
// tenant, client and secret, and the DefaultAzureCredential chain otherwise.
func newAzureConnector(settings config.Settings, opts Options, logger credcheck.Logger) (credcheck.Connector, error) {
	provider, err := NewAzureTokenProvider(AzureCredentials{
		TenantID:     settings.AzureTenantID,
		ClientID:     settings.AzureClientID,
		ClientSecret: settings.AzureClientSecret,
	})
	if err != nil {
		return nil, err
	}
	return NewTokenBasedConnector(opts, StaticTokenProvider(provider), "Azure", logger), nil
}
