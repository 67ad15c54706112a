package sources

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/vvka-141/credcheck/pkg/credcheck"
)

// coercePort turns a port field into an int. File scalars arrive as their
// source text and Vault numbers as json.Number; both are parsed as base 10.
func coercePort(v any) (int, error) {
	switch p := v.(type) {
	case json.Number:
		return parsePort(p.String())
	case string:
		return parsePort(p)
	default:
		return 0, fmt.Errorf("port has unsupported type %T: %w", v, credcheck.ErrSchema)
	}
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("port %q is not an integer: %w", s, credcheck.ErrSchema)
	}
	return port, nil
}

// requireString extracts a string field by key, failing with ErrSchema when
// the key is absent or holds a non-scalar. A null value counts as absent.
// JSON numbers and booleans are taken as they were written.
func requireString(fields map[string]any, key, where string) (string, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%s: missing %q: %w", where, key, credcheck.ErrSchema)
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case json.Number:
		return s.String(), nil
	case bool:
		return strconv.FormatBool(s), nil
	default:
		return "", fmt.Errorf("%s: %q has unsupported type %T: %w", where, key, v, credcheck.ErrSchema)
	}
}

// recordFromFields maps the shared {host, port, name, user, password} shape
// used by both the file and the secrets-service sources.
func recordFromFields(fields map[string]any, where string) (credcheck.CredentialRecord, error) {
	host, err := requireString(fields, "host", where)
	if err != nil {
		return credcheck.CredentialRecord{}, err
	}
	rawPort, ok := fields["port"]
	if !ok || rawPort == nil {
		return credcheck.CredentialRecord{}, fmt.Errorf("%s: missing %q: %w", where, "port", credcheck.ErrSchema)
	}
	port, err := coercePort(rawPort)
	if err != nil {
		return credcheck.CredentialRecord{}, fmt.Errorf("%s: %w", where, err)
	}
	name, err := requireString(fields, "name", where)
	if err != nil {
		return credcheck.CredentialRecord{}, err
	}
	user, err := requireString(fields, "user", where)
	if err != nil {
		return credcheck.CredentialRecord{}, err
	}
	password, err := requireString(fields, "password", where)
	if err != nil {
		return credcheck.CredentialRecord{}, err
	}

	record, err := credcheck.NewCredentialRecord(host, port, name, user, password)
	if err != nil {
		return credcheck.CredentialRecord{}, fmt.Errorf("%s: %w", where, err)
	}
	return record, nil
}
