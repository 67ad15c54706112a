package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/credcheck/internal/config"
	"github.com/vvka-141/credcheck/pkg/credcheck"
)

// parseConfig turns a record into a pgx connection config whose server
// notices are forwarded to logger.
func parseConfig(record credcheck.CredentialRecord, opts Options, logger credcheck.Logger) (*pgx.ConnConfig, error) {
	connStr := BuildConnectionString(record, opts)
	logger.Verbose("Connection string: %s", RedactConnectionString(connStr))

	connConfig, err := pgx.ParseConfig(connStr)
	if err != nil {
		// pgx echoes the DSN in some parse errors, so the detail is dropped.
		return nil, fmt.Errorf("failed to parse connection config for %s:%d: %w", record.Host(), record.Port(), credcheck.ErrConnectionFailed)
	}
	connConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Info("%s: %s", notice.Severity, notice.Message)
	}
	return connConfig, nil
}

// connect opens the connection and wraps every failure as ErrConnectionFailed.
func connect(ctx context.Context, connConfig *pgx.ConnConfig, record credcheck.CredentialRecord) (*ConnAdapter, error) {
	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return nil, wrapConnectionError(err, record)
	}
	return NewConnAdapter(conn), nil
}

// StandardConnector implements the Connector interface for standard
// username/password authentication. One call opens one connection; there is
// no retry.
type StandardConnector struct {
	opts   Options
	logger credcheck.Logger
}

// NewStandardConnector creates a new StandardConnector. logger must not be nil.
func NewStandardConnector(opts Options, logger credcheck.Logger) *StandardConnector {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &StandardConnector{opts: opts, logger: logger}
}

// Connect opens a single connection using the record's password.
func (c *StandardConnector) Connect(ctx context.Context, record credcheck.CredentialRecord) (credcheck.DBConnection, error) {
	connConfig, err := parseConfig(record, c.opts, c.logger)
	if err != nil {
		return nil, err
	}
	conn, err := connect(ctx, connConfig, record)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// NewConnector creates the Connector for the settings' AuthMethod.
// settings are expected to have passed Settings.Validate.
func NewConnector(settings config.Settings, logger credcheck.Logger) (credcheck.Connector, error) {
	opts := Options{SSLMode: settings.SSLMode, SSLRootCert: settings.SSLRootCert}

	switch settings.AuthMethod {
	case credcheck.AuthMethodStandard:
		return NewStandardConnector(opts, logger), nil
	case credcheck.AuthMethodAWSIAM:
		return newAWSConnector(settings, opts, logger), nil
	case credcheck.AuthMethodGoogleIAM:
		return NewGoogleCloudSQLConnector(settings.GoogleInstance, logger), nil
	case credcheck.AuthMethodAzureEntraID:
		return newAzureConnector(settings, opts, logger)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", settings.AuthMethod, credcheck.ErrUnsupportedAuthMethod)
	}
}

// connectionHint explains one class of connection failure. A hint applies
// when the server reported one of its SQLSTATE codes, or when the error text
// contains one of its fragments.
type connectionHint struct {
	sqlStates []string
	fragments []string
	summary   func(r credcheck.CredentialRecord) string
	causes    []string
}

var connectionHints = []connectionHint{
	{
		fragments: []string{"connection refused", "actively refused"},
		summary: func(r credcheck.CredentialRecord) string {
			return fmt.Sprintf("connection refused to %s:%d", r.Host(), r.Port())
		},
		causes: []string{
			"PostgreSQL is not running or not listening on this port",
			"host or port in the selected credential source points at the wrong server",
			"a firewall is rejecting the connection",
		},
	},
	{
		fragments: []string{"no such host", "no host"},
		summary: func(r credcheck.CredentialRecord) string {
			return fmt.Sprintf("cannot resolve host %q", r.Host())
		},
		causes: []string{
			"host in the selected credential source is misspelled",
			"DNS is not configured or reachable from here",
		},
	},
	{
		sqlStates: []string{"28P01", "28000"},
		fragments: []string{"password authentication failed"},
		summary: func(r credcheck.CredentialRecord) string {
			return fmt.Sprintf("authentication failed for user %q on database %q", r.User(), r.Database())
		},
		causes: []string{
			"password in the selected credential source is wrong or stale",
			"user does not exist or may not log in to this database",
			"pg_hba.conf requires a different authentication method",
		},
	},
	{
		sqlStates: []string{"3D000"},
		fragments: []string{"does not exist"},
		summary: func(r credcheck.CredentialRecord) string {
			return fmt.Sprintf("database %q does not exist on %s:%d", r.Database(), r.Host(), r.Port())
		},
		causes: []string{
			"name in the selected credential source is wrong",
			"the database has not been created yet (createdb)",
		},
	},
	{
		sqlStates: []string{"53300"},
		fragments: []string{"too many connections"},
		summary: func(r credcheck.CredentialRecord) string {
			return fmt.Sprintf("server %s:%d has no free connection slots", r.Host(), r.Port())
		},
		causes: []string{
			"max_connections is exhausted",
			"the role has reached its connection limit",
		},
	},
	{
		fragments: []string{"timeout", "timed out"},
		summary: func(r credcheck.CredentialRecord) string {
			return fmt.Sprintf("connection to %s:%d timed out", r.Host(), r.Port())
		},
		causes: []string{
			"server is overloaded or unresponsive",
			"a firewall is silently dropping packets",
			"--timeout is shorter than the network round trip",
		},
	},
	{
		fragments: []string{"ssl", "tls", "x509", "certificate"},
		summary: func(credcheck.CredentialRecord) string {
			return "SSL/TLS negotiation failed"
		},
		causes: []string{
			"--sslmode does not match what the server offers",
			"--sslrootcert does not contain the CA that signed the server certificate",
		},
	},
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
// The result always matches credcheck.ErrConnectionFailed and the original error.
// The record's password is never part of the message.
func wrapConnectionError(err error, record credcheck.CredentialRecord) error {
	hint, ok := matchConnectionHint(err)
	if !ok {
		return fmt.Errorf("%w: failed to connect to %s:%d/%s: %w", credcheck.ErrConnectionFailed, record.Host(), record.Port(), record.Database(), err)
	}

	var b strings.Builder
	b.WriteString(hint.summary(record))
	b.WriteString("\n\nPossible causes:\n")
	for _, cause := range hint.causes {
		b.WriteString("  - ")
		b.WriteString(cause)
		b.WriteString("\n")
	}
	return fmt.Errorf("%w: %s\nOriginal error: %w", credcheck.ErrConnectionFailed, b.String(), err)
}

func matchConnectionHint(err error) (connectionHint, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		for _, h := range connectionHints {
			for _, code := range h.sqlStates {
				if pgErr.Code == code {
					return h, true
				}
			}
		}
	}

	msg := strings.ToLower(err.Error())
	for _, h := range connectionHints {
		for _, fragment := range h.fragments {
			if strings.Contains(msg, fragment) {
				return h, true
			}
		}
	}
	return connectionHint{}, false
}
