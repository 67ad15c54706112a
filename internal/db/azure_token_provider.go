package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/vvka-141/credcheck/pkg/credcheck"
)

// AzureCredentials selects how Entra ID tokens are obtained. All three
// fields set means Service Principal auth; all empty means the
// DefaultAzureCredential chain (environment, workload identity, managed
// identity, Azure CLI).
type AzureCredentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string
}

func (c AzureCredentials) servicePrincipal() (bool, error) {
	set := 0
	for _, v := range []string{c.TenantID, c.ClientID, c.ClientSecret} {
		if v != "" {
			set++
		}
	}
	switch set {
	case 0:
		return false, nil
	case 3:
		return true, nil
	default:
		return false, fmt.Errorf("Azure service principal needs $AZURE_TENANT_ID, $AZURE_CLIENT_ID and $AZURE_CLIENT_SECRET together: %w", credcheck.ErrSchema)
	}
}

// AzureTokenProvider acquires Entra ID tokens scoped to Azure Database for PostgreSQL.
type AzureTokenProvider struct {
	credential azcore.TokenCredential
	desc       string
}

// NewAzureTokenProvider builds the credential described by creds. A partial
// Service Principal is rejected with ErrSchema instead of falling back.
func NewAzureTokenProvider(creds AzureCredentials) (*AzureTokenProvider, error) {
	sp, err := creds.servicePrincipal()
	if err != nil {
		return nil, err
	}

	if sp {
		cred, err := azidentity.NewClientSecretCredential(creds.TenantID, creds.ClientID, creds.ClientSecret, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure service principal credential: %w", err)
		}
		return &AzureTokenProvider{
			credential: cred,
			desc:       fmt.Sprintf("AzureServicePrincipal(tenant=%s, client=%s)", creds.TenantID, creds.ClientID),
		}, nil
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure default credential: %w", err)
	}
	return &AzureTokenProvider{credential: cred, desc: "AzureDefaultCredential"}, nil
}

func (p *AzureTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	token, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{AzurePostgreSQLScope},
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return token.Token, token.ExpiresOn, nil
}

// String never includes the client secret.
func (p *AzureTokenProvider) String() string { return p.desc }
