package db

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/vvka-141/credcheck/pkg/credcheck"
)

// DefaultAppName is reported to the server as application_name.
const DefaultAppName = "credcheck"

// Options are connection parameters that are not credentials.
type Options struct {
	// SSLMode is passed through as sslmode; empty leaves the driver default (prefer).
	SSLMode string

	// SSLRootCert is a CA bundle path for verify-ca and verify-full.
	SSLRootCert string

	// AppName is reported as application_name; empty means DefaultAppName.
	AppName string
}

// BuildConnectionString converts a record into a PostgreSQL URI for pgx.
// The password is percent-encoded inside the userinfo and must never be logged;
// use RedactConnectionString for diagnostics.
func BuildConnectionString(record credcheck.CredentialRecord, opts Options) string {
	u := &url.URL{
		Scheme: "postgresql",
		Host:   fmt.Sprintf("%s:%d", record.Host(), record.Port()),
		Path:   "/" + record.Database(),
	}

	if record.Password() != "" {
		u.User = url.UserPassword(record.User(), record.Password())
	} else {
		u.User = url.User(record.User())
	}

	query := url.Values{}
	if opts.SSLMode != "" {
		query.Set("sslmode", opts.SSLMode)
	}
	if opts.SSLRootCert != "" {
		query.Set("sslrootcert", opts.SSLRootCert)
	}
	appName := opts.AppName
	if appName == "" {
		appName = DefaultAppName
	}
	query.Set("application_name", appName)

	u.RawQuery = query.Encode()
	return u.String()
}

// RedactConnectionString returns connStr with any password replaced by "xxxxx".
func RedactConnectionString(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil {
		return "<unparseable connection string>"
	}
	return u.Redacted()
}

// ParseConnectionString parses a PostgreSQL URI into a CredentialRecord.
// Missing components default to localhost:5432/postgres.
//
// Format: postgresql://[user[:password]@][host][:port][/dbname][?param1=value1&...]
func ParseConnectionString(connStr string) (credcheck.CredentialRecord, error) {
	if connStr == "" {
		return credcheck.CredentialRecord{}, fmt.Errorf("connection string is empty: %w", credcheck.ErrParse)
	}
	if !strings.HasPrefix(connStr, "postgresql://") && !strings.HasPrefix(connStr, "postgres://") {
		return credcheck.CredentialRecord{}, fmt.Errorf("unrecognized connection string format: %w", credcheck.ErrParse)
	}

	u, err := url.Parse(connStr)
	if err != nil {
		return credcheck.CredentialRecord{}, fmt.Errorf("invalid PostgreSQL URI: %v: %w", err, credcheck.ErrParse)
	}

	host := "localhost"
	if u.Hostname() != "" {
		host = u.Hostname()
	}

	port := credcheck.DefaultPort
	if u.Port() != "" {
		port, err = strconv.Atoi(u.Port())
		if err != nil {
			return credcheck.CredentialRecord{}, fmt.Errorf("invalid port: %v: %w", err, credcheck.ErrParse)
		}
	}

	database := "postgres"
	if len(u.Path) > 1 {
		database = strings.TrimPrefix(u.Path, "/")
	}

	var user, password string
	if u.User != nil {
		user = u.User.Username()
		password, _ = u.User.Password()
	}

	return credcheck.NewCredentialRecord(host, port, database, user, password)
}
