package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/credcheck/internal/config"
	"github.com/vvka-141/credcheck/internal/db"
	"github.com/vvka-141/credcheck/internal/logging"
	"github.com/vvka-141/credcheck/internal/services"
	"github.com/vvka-141/credcheck/internal/sources"
	"github.com/vvka-141/credcheck/pkg/credcheck"
)

type checkFlagValues struct {
	mode, secretsFile, vaultAddr, vaultPath string
	auth, awsRegion, googleInstance         string
	sslMode, sslRootCert                    string
	timeout                                 time.Duration
}

func newCheckCmd() *cobra.Command {
	var flags checkFlagValues

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Resolve credentials and run SELECT 1 against the database",
		Long: `Resolve credentials from the selected source, connect once and run SELECT 1.

Settings precedence: flags > environment (and .env) > credcheck.yaml > defaults.
Secrets (DB_PASSWORD, VAULT_TOKEN, AZURE_CLIENT_SECRET) are read from the
environment only.`,
		Example: `  # Environment variables (default mode)
  DB_HOST=db.internal DB_PASSWORD=... credcheck check

  # YAML secrets file
  credcheck check --mode file --secrets-file ./db_secrets.yaml

  # HashiCorp Vault
  VAULT_ADDR=https://vault:8200 VAULT_TOKEN=... credcheck check --mode secrets-service

  # AWS RDS IAM token instead of a password
  credcheck check --auth aws-iam --aws-region eu-west-1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, &flags, os.LookupEnv)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.mode, "mode", "",
		"Credential source: environment, file or secrets-service (env: SECRET_MODE)")
	f.StringVar(&flags.secretsFile, "secrets-file", "",
		"Secrets file for file mode (env: SECRETS_FILE, default: "+credcheck.DefaultSecretsFile+")")
	f.StringVar(&flags.vaultAddr, "vault-addr", "",
		"Vault address (env: VAULT_ADDR, default: "+credcheck.DefaultVaultAddr+")")
	f.StringVar(&flags.vaultPath, "vault-path", "",
		"Vault logical path of the secret (env: VAULT_PATH, default: "+credcheck.DefaultVaultPath+")")
	f.StringVar(&flags.auth, "auth", "",
		"Authentication: standard, aws-iam, google-iam or azure-entra-id (env: CREDCHECK_AUTH)")
	f.StringVar(&flags.awsRegion, "aws-region", "",
		"AWS region for RDS IAM auth (env: AWS_REGION)")
	f.StringVar(&flags.googleInstance, "google-instance", "",
		"Cloud SQL instance connection name project:region:instance")
	f.StringVar(&flags.sslMode, "sslmode", "",
		"SSL mode: disable, allow, prefer, require, verify-ca, verify-full (env: DB_SSLMODE)")
	f.StringVar(&flags.sslRootCert, "sslrootcert", "",
		"CA certificate for verify-ca and verify-full (env: DB_SSLROOTCERT)")
	f.DurationVar(&flags.timeout, "timeout", 0,
		"Upper bound for the whole check, e.g. 30s. 0 waits indefinitely")

	return cmd
}

// buildSettings resolves Settings from credcheck.yaml, the environment and
// changed flags, in increasing precedence.
func buildSettings(cmd *cobra.Command, flags *checkFlagValues, lookup config.LookupFunc) (config.Settings, error) {
	_ = godotenv.Load()

	projectCfg, err := config.Load(".")
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return config.Settings{}, fmt.Errorf("failed to load %s: %w: %w", config.ConfigFileName, credcheck.ErrParse, err)
	}

	settings, err := config.Resolve(projectCfg, lookup)
	if err != nil {
		return config.Settings{}, err
	}

	changed := cmd.Flags().Changed
	if changed("mode") {
		settings.Mode = flags.mode
	}
	if changed("secrets-file") {
		settings.SecretsFile = flags.secretsFile
	}
	if changed("vault-addr") {
		settings.VaultAddr = flags.vaultAddr
	}
	if changed("vault-path") {
		settings.VaultPath = flags.vaultPath
	}
	if changed("auth") {
		method, err := credcheck.ParseAuthMethod(flags.auth)
		if err != nil {
			return config.Settings{}, fmt.Errorf("--auth: %w", err)
		}
		settings.AuthMethod = method
	}
	if changed("aws-region") {
		settings.AWSRegion = flags.awsRegion
	}
	if changed("google-instance") {
		settings.GoogleInstance = flags.googleInstance
	}
	if changed("sslmode") {
		settings.SSLMode = flags.sslMode
	}
	if changed("sslrootcert") {
		settings.SSLRootCert = flags.sslRootCert
	}
	if changed("timeout") {
		settings.Timeout = flags.timeout
	}

	if err := settings.Validate(); err != nil {
		return config.Settings{}, err
	}
	return settings, nil
}

func runCheck(cmd *cobra.Command, flags *checkFlagValues, lookup config.LookupFunc) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewWriterLogger(cmd.ErrOrStderr(), verbose)

	settings, err := buildSettings(cmd, flags, lookup)
	if err != nil {
		return err
	}

	connector, err := db.NewConnector(settings, logger)
	if err != nil {
		return err
	}

	svc := services.NewCheckService(sources.NewDefaultSelector(logger, settings), connector, logger)

	ctx, cancel := newRunContext(cmd, settings.Timeout)
	defer cancel()

	if _, err := svc.Run(ctx, settings.Mode); err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	return nil
}

// newRunContext cancels on SIGINT/SIGTERM and, if timeout > 0, after timeout.
func newRunContext(cmd *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, timeout)
		parentCancel := cancel
		cancel = func() { cancelTimeout(); parentCancel() }
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(cmd.ErrOrStderr(), "\n[INTERRUPT] Received interrupt signal, cancelling check...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
