package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const rootLong = `credcheck resolves database credentials from exactly one source, opens a
single PostgreSQL connection with them and runs SELECT 1.

Credential sources (--mode or $SECRET_MODE):
  environment      DB_HOST, DB_PORT, DB_NAME, DB_USER, DB_PASSWORD (default)
  file             db_secrets.yaml with a top-level "db" mapping
  secrets-service  HashiCorp Vault KV v2 at secret/data/app/db

The password is never printed.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration (unknown mode, missing or malformed secrets file)
  11 - Database connection failed
  12 - Secrets service unreachable or secret not found
  13 - Liveness query failed`

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "credcheck",
		Short:        "Validate database credentials from env, file or Vault",
		Long:         rootLong,
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	root.AddCommand(newCheckCmd(), newVersionCmd())
	return root
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	return newRootCmd().Execute()
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
