package credcheck

import (
	"errors"
	"strings"
)

// Sentinel errors for every way a check run can fail.
// All of them are terminal: callers distinguish them with errors.Is() and
// map them to an exit code, nothing is retried.
//
// Example usage:
//
//	_, err := service.Run(ctx, mode)
//	if errors.Is(err, credcheck.ErrSecretNotFound) {
//	    // the Vault path exists but holds no data
//	}
var (
	// ErrUnknownMode indicates the mode selector value is not recognized.
	ErrUnknownMode = errors.New("unknown mode")

	// ErrFileNotFound indicates the credentials file does not exist.
	ErrFileNotFound = errors.New("credentials file not found")

	// ErrParse indicates the credentials file is not valid structured data.
	ErrParse = errors.New("parse error")

	// ErrSchema indicates a required key or field is absent or malformed.
	ErrSchema = errors.New("schema error")

	// ErrSecretsServiceUnreachable indicates the secrets service could not be reached
	// or rejected the request.
	ErrSecretsServiceUnreachable = errors.New("secrets service unreachable")

	// ErrSecretNotFound indicates the secret path yielded no data.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrConnectionFailed indicates the database connection could not be opened.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrQueryFailed indicates the liveness query failed on an open connection.
	ErrQueryFailed = errors.New("query failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// cobra reports usage problems as plain errors, so they are recognized by message.
var usageErrorPrefixes = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"required flag",
	"invalid argument",
	"flag needs an argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrUnknownMode),
		errors.Is(err, ErrFileNotFound),
		errors.Is(err, ErrParse),
		errors.Is(err, ErrSchema),
		errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrSecretsServiceUnreachable),
		errors.Is(err, ErrSecretNotFound):
		return ExitSecretsError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrQueryFailed):
		return ExitQueryFailed
	}

	errStr := err.Error()
	for _, prefix := range usageErrorPrefixes {
		if strings.HasPrefix(errStr, prefix) {
			return ExitUsageError
		}
	}

	return ExitGeneralError
}
