package credcheck

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Connection and liveness query succeeded
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (invalid flags or arguments)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Unknown mode, unreadable or malformed credentials
	ExitConnectionError = 11 // Failed to connect to database
	ExitSecretsError    = 12 // Secrets service unreachable or secret missing
	ExitQueryFailed     = 13 // Liveness query failed
)

const (
	// DefaultHost is used by the environment source when DB_HOST is unset.
	DefaultHost = "localhost"

	// DefaultPort is used by the environment source when DB_PORT is unset.
	DefaultPort = 5432

	// DefaultDatabase is used by the environment source when DB_NAME is unset.
	DefaultDatabase = "labdb"

	// DefaultUser is used by the environment source when DB_USER is unset.
	DefaultUser = "labuser"

	// DefaultSecretsFile is the well-known credentials file read in file mode,
	// relative to the working directory.
	DefaultSecretsFile = "db_secrets.yaml"

	// DefaultVaultAddr is the secrets service address when VAULT_ADDR is unset.
	DefaultVaultAddr = "http://127.0.0.1:8200"

	// DefaultVaultPath is the well-known KV v2 logical path holding the credentials.
	DefaultVaultPath = "secret/data/app/db"

	// LivenessQuery is the only statement ever sent to the database.
	LivenessQuery = "SELECT 1"

	// MinPort and MaxPort bound a valid TCP port.
	MinPort = 1
	MaxPort = 65535
)
