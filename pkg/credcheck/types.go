package credcheck

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// CredentialRecord is the normalized set of connection parameters used by
// exactly one validation attempt.
//
// Fields are unexported so a record cannot change after construction.
// The password is never part of String, GoString or LogValue output.
type CredentialRecord struct {
	host     string
	port     int
	database string
	user     string
	password string
}

// NewCredentialRecord builds a fully populated record.
// Host, database and user are required and the port must be within 1-65535.
// An empty password is accepted; whether it is sufficient is for the server to decide.
func NewCredentialRecord(host string, port int, database, user, password string) (CredentialRecord, error) {
	var errs []error

	if host == "" {
		errs = append(errs, fmt.Errorf("host is required: %w", ErrSchema))
	}
	if port < MinPort || port > MaxPort {
		errs = append(errs, fmt.Errorf("port %d out of range %d-%d: %w", port, MinPort, MaxPort, ErrSchema))
	}
	if database == "" {
		errs = append(errs, fmt.Errorf("database is required: %w", ErrSchema))
	}
	if user == "" {
		errs = append(errs, fmt.Errorf("user is required: %w", ErrSchema))
	}

	if err := errors.Join(errs...); err != nil {
		return CredentialRecord{}, err
	}

	return CredentialRecord{
		host:     host,
		port:     port,
		database: database,
		user:     user,
		password: password,
	}, nil
}

func (r CredentialRecord) Host() string     { return r.host }
func (r CredentialRecord) Port() int        { return r.port }
func (r CredentialRecord) Database() string { return r.database }
func (r CredentialRecord) User() string     { return r.user }

// Password returns the secret. Callers must not log it.
func (r CredentialRecord) Password() string { return r.password }

// Redacted returns the loggable view of the record.
func (r CredentialRecord) Redacted() RedactedRecord {
	return RedactedRecord{
		Host:     r.host,
		Port:     r.port,
		Database: r.database,
		User:     r.user,
	}
}

// String implements fmt.Stringer without the password.
func (r CredentialRecord) String() string {
	return r.Redacted().String()
}

// GoString keeps %#v from printing the password field.
func (r CredentialRecord) GoString() string {
	return "credcheck.CredentialRecord" + r.Redacted().String()
}

// LogValue implements slog.LogValuer without the password.
func (r CredentialRecord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("host", r.host),
		slog.Int("port", r.port),
		slog.String("database", r.database),
		slog.String("user", r.user),
	)
}

// RedactedRecord is a CredentialRecord without its password.
type RedactedRecord struct {
	Host     string
	Port     int
	Database string
	User     string
}

func (r RedactedRecord) String() string {
	return fmt.Sprintf("{host:%s port:%d database:%s user:%s}", r.Host, r.Port, r.Database, r.User)
}

// Mode selects which credential source resolves the record for a run.
type Mode string

const (
	ModeEnvironment    Mode = "environment"
	ModeFile           Mode = "file"
	ModeSecretsService Mode = "secrets-service"
)

// DefaultMode is used when no mode is configured.
const DefaultMode = ModeEnvironment

// Modes lists every supported mode in display order.
var Modes = []Mode{ModeEnvironment, ModeFile, ModeSecretsService}

// ParseMode converts a selector value into a Mode.
// Accepted values (case-insensitive): environment|env, file, secrets-service|vault.
// An empty value yields DefaultMode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultMode, nil
	case "environment", "env":
		return ModeEnvironment, nil
	case "file":
		return ModeFile, nil
	case "secrets-service", "vault":
		return ModeSecretsService, nil
	default:
		return "", fmt.Errorf("%q (expected one of environment, file, secrets-service): %w", s, ErrUnknownMode)
	}
}

// AuthMethod represents the type of authentication used when connecting.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password from the record
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod converts a flag value into an AuthMethod.
// Accepted values: standard, aws-iam, google-iam, azure-entra-id. Empty means standard.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return AuthMethodStandard, nil
	case "aws-iam", "aws":
		return AuthMethodAWSIAM, nil
	case "google-iam", "google":
		return AuthMethodGoogleIAM, nil
	case "azure-entra-id", "azure":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("auth method %q: %w", s, ErrUnsupportedAuthMethod)
	}
}

// State is the position of a check run in its lifecycle.
type State string

const (
	StateIdle                State = "Idle"
	StateModeSelected        State = "ModeSelected"
	StateCredentialsResolved State = "CredentialsResolved"
	StateConnected           State = "Connected"
	StateQueryExecuted       State = "QueryExecuted"
	StateDone                State = "Done"
	StateFailed              State = "Failed"
)

// CheckResult describes the outcome of one check run.
type CheckResult struct {
	// Mode is the mode that was selected, empty if the selector rejected it.
	Mode Mode

	// State is the terminal state: StateDone or StateFailed.
	State State

	// Row is the single row returned by the liveness query, nil on failure.
	Row map[string]any
}
