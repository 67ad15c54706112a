package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/credcheck/pkg/credcheck"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ProjectConfig is the optional credcheck.yaml in the working directory.
// Secrets (Vault token, database password) are deliberately not part of it.
type ProjectConfig struct {
	Mode           string `yaml:"mode"`
	SecretsFile    string `yaml:"secrets_file,omitempty"`
	VaultAddr      string `yaml:"vault_addr,omitempty"`
	VaultPath      string `yaml:"vault_path,omitempty"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
	SSLMode        string `yaml:"sslmode,omitempty"`
	SSLRootCert    string `yaml:"sslrootcert,omitempty"`
	Timeout        string `yaml:"timeout,omitempty"`
}

const ConfigFileName = "credcheck.yaml"

func Load(dir string) (*ProjectConfig, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigFileName, err)
	}
	return &cfg, nil
}

// LookupFunc reads one environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Environment variable names read by Resolve.
const (
	EnvMode              = "SECRET_MODE"
	EnvSecretsFile       = "SECRETS_FILE"
	EnvVaultAddr         = "VAULT_ADDR"
	EnvVaultToken        = "VAULT_TOKEN"
	EnvVaultPath         = "VAULT_PATH"
	EnvAuthMethod        = "CREDCHECK_AUTH"
	EnvSSLMode           = "DB_SSLMODE"
	EnvSSLRootCert       = "DB_SSLROOTCERT"
	EnvAWSRegion         = "AWS_REGION"
	EnvAzureTenantID     = "AZURE_TENANT_ID"
	EnvAzureClientID     = "AZURE_CLIENT_ID"
	EnvAzureClientSecret = "AZURE_CLIENT_SECRET"
)

// Settings is the run configuration threaded from the entry point into the
// selector and the connector factory. Nothing downstream reads the
// environment except the environment credential source.
type Settings struct {
	// Mode is the raw selector value; the selector parses and validates it.
	Mode string

	SecretsFile string

	VaultAddr  string
	VaultToken string
	VaultPath  string

	AuthMethod     credcheck.AuthMethod
	AWSRegion      string
	GoogleInstance string

	// SSLMode is passed to the driver as sslmode; empty keeps its default.
	SSLMode     string
	SSLRootCert string

	// Azure Entra ID credentials. If all three are set, Service Principal
	// authentication is used, otherwise the DefaultAzureCredential chain.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// Timeout bounds the whole run. Zero means no deadline.
	Timeout time.Duration
}

// Defaults returns Settings with the documented defaults applied.
func Defaults() Settings {
	return Settings{
		Mode:        string(credcheck.DefaultMode),
		SecretsFile: credcheck.DefaultSecretsFile,
		VaultAddr:   credcheck.DefaultVaultAddr,
		VaultPath:   credcheck.DefaultVaultPath,
		AuthMethod:  credcheck.AuthMethodStandard,
	}
}

// Resolve builds Settings with precedence environment > project config > defaults.
// CLI flags are applied on top by the caller. project may be nil.
func Resolve(project *ProjectConfig, lookup LookupFunc) (Settings, error) {
	s := Defaults()
	var errs []error

	if project != nil {
		setIfNotEmpty(&s.Mode, project.Mode)
		setIfNotEmpty(&s.SecretsFile, project.SecretsFile)
		setIfNotEmpty(&s.VaultAddr, project.VaultAddr)
		setIfNotEmpty(&s.VaultPath, project.VaultPath)
		setIfNotEmpty(&s.AWSRegion, project.AWSRegion)
		setIfNotEmpty(&s.GoogleInstance, project.GoogleInstance)
		setIfNotEmpty(&s.SSLMode, project.SSLMode)
		setIfNotEmpty(&s.SSLRootCert, project.SSLRootCert)
		if project.AuthMethod != "" {
			method, err := credcheck.ParseAuthMethod(project.AuthMethod)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", ConfigFileName, err))
			}
			s.AuthMethod = method
		}
		if project.Timeout != "" {
			parsed, err := time.ParseDuration(project.Timeout)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid timeout in %s: %v: %w", ConfigFileName, err, credcheck.ErrSchema))
			}
			s.Timeout = parsed
		}
	}

	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	env := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	setIfNotEmpty(&s.Mode, env(EnvMode))
	setIfNotEmpty(&s.SecretsFile, env(EnvSecretsFile))
	setIfNotEmpty(&s.VaultAddr, env(EnvVaultAddr))
	setIfNotEmpty(&s.VaultPath, env(EnvVaultPath))
	setIfNotEmpty(&s.AWSRegion, env(EnvAWSRegion))
	setIfNotEmpty(&s.SSLMode, env(EnvSSLMode))
	setIfNotEmpty(&s.SSLRootCert, env(EnvSSLRootCert))
	s.VaultToken = env(EnvVaultToken)
	s.AzureTenantID = env(EnvAzureTenantID)
	s.AzureClientID = env(EnvAzureClientID)
	s.AzureClientSecret = env(EnvAzureClientSecret)

	if raw := env(EnvAuthMethod); raw != "" {
		method, err := credcheck.ParseAuthMethod(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("$%s: %w", EnvAuthMethod, err))
		}
		s.AuthMethod = method
	}

	return s, errors.Join(errs...)
}

// Validate checks the settings that can be checked without dispatching.
// The mode itself is validated by the selector so that UnknownMode is
// always reported the same way.
func (s Settings) Validate() error {
	var errs []error

	if !s.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("auth method %v: %w", s.AuthMethod, credcheck.ErrUnsupportedAuthMethod))
	}
	if s.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", credcheck.ErrSchema))
	}
	switch s.SSLMode {
	case "", "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		errs = append(errs, fmt.Errorf("invalid sslmode %q: %w", s.SSLMode, credcheck.ErrSchema))
	}
	if s.AuthMethod == credcheck.AuthMethodAWSIAM && s.AWSRegion == "" {
		errs = append(errs, fmt.Errorf("AWS IAM auth requires region (use --aws-region or $AWS_REGION): %w", credcheck.ErrSchema))
	}
	if s.AuthMethod == credcheck.AuthMethodGoogleIAM && s.GoogleInstance == "" {
		errs = append(errs, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", credcheck.ErrSchema))
	}

	return errors.Join(errs...)
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
