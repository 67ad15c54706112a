package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"

	"github.com/vvka-141/credcheck/pkg/credcheck"
)

// GoogleCloudSQLConnector implements the Connector interface for Google Cloud SQL
// using IAM database authentication via the Cloud SQL Go Connector.
// The record's host, port and password are ignored; user and database are used.
// The dialer lives exactly as long as the connection it opened.
type GoogleCloudSQLConnector struct {
	instance string
	logger   credcheck.Logger
}

// NewGoogleCloudSQLConnector creates a connector for Google Cloud SQL IAM authentication.
// instance is the instance connection name in format: project:region:instance
func NewGoogleCloudSQLConnector(instance string, logger credcheck.Logger) *GoogleCloudSQLConnector {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &GoogleCloudSQLConnector{instance: instance, logger: logger}
}

// Connect opens one connection through a fresh Cloud SQL dialer. Closing the
// returned connection also closes the dialer.
func (c *GoogleCloudSQLConnector) Connect(ctx context.Context, record credcheck.CredentialRecord) (credcheck.DBConnection, error) {
	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w: %w", credcheck.ErrConnectionFailed, err)
	}

	// The dialer already wraps the socket in TLS.
	connConfig, err := parseConfig(record, Options{SSLMode: "disable"}, c.logger)
	if err != nil {
		dialer.Close()
		return nil, err
	}
	connConfig.Password = ""
	connConfig.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
		return dialer.Dial(ctx, c.instance)
	}

	c.logger.Verbose("Dialing Cloud SQL instance %s", c.instance)
	adapter, err := connect(ctx, connConfig, record)
	if err != nil {
		dialer.Close()
		return nil, err
	}
	adapter.onClose = func() { dialer.Close() }
	return adapter, nil
}
