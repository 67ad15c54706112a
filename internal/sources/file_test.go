package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/credcheck/pkg/credcheck"
)

func writeSecretsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), credcheck.DefaultSecretsFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestFileSource_WellFormed(t *testing.T) {
	path := writeSecretsFile(t, `db:
  host: "h"
  port: "5432"
  name: "d"
  user: "u"
  password: "p"
`)

	record, err := NewFileSource(path).Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "h", record.Host())
	assert.Equal(t, 5432, record.Port())
	assert.Equal(t, "d", record.Database())
	assert.Equal(t, "u", record.User())
	assert.Equal(t, "p", record.Password())
}

func TestFileSource_NumericPort(t *testing.T) {
	path := writeSecretsFile(t, `db:
  host: db.example.com
  port: 6432
  name: app
  user: app
  password: "12345"
`)

	record, err := NewFileSource(path).Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6432, record.Port())
	assert.Equal(t, "12345", record.Password())
}

func TestFileSource_UnquotedScalarsKeptAsWritten(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"decimal", "12345"},
		{"leading zero", "0123"},
		{"octal prefix", "0o17"},
		{"exponent", "1e3"},
		{"hex", "0x1F"},
		{"float", "3.10"},
		{"boolean word", "yes"},
		{"boolean", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSecretsFile(t, "db:\n  host: h\n  port: 5432\n  name: 2024\n  user: 007\n  password: "+tt.password+"\n")

			record, err := NewFileSource(path).Resolve(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.password, record.Password())
			assert.Equal(t, "2024", record.Database())
			assert.Equal(t, "007", record.User())
		})
	}
}

func TestFileSource_AnchorsResolve(t *testing.T) {
	path := writeSecretsFile(t, `shared: &pw 0123
db:
  host: h
  port: 5432
  name: d
  user: u
  password: *pw
`)

	record, err := NewFileSource(path).Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0123", record.Password())
}

func TestFileSource_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	_, err := NewFileSource(path).Resolve(context.Background())
	assert.ErrorIs(t, err, credcheck.ErrFileNotFound)
}

func TestFileSource_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "missing db key",
			content: "database:\n  host: h\n",
			wantErr: credcheck.ErrSchema,
		},
		{
			name:    "empty file",
			content: "",
			wantErr: credcheck.ErrSchema,
		},
		{
			name:    "db is scalar",
			content: "db: postgres://h/d\n",
			wantErr: credcheck.ErrSchema,
		},
		{
			name:    "missing password",
			content: "db:\n  host: h\n  port: 5432\n  name: d\n  user: u\n",
			wantErr: credcheck.ErrSchema,
		},
		{
			name:    "null host",
			content: "db:\n  host: ~\n  port: 5432\n  name: d\n  user: u\n  password: p\n",
			wantErr: credcheck.ErrSchema,
		},
		{
			name:    "non numeric port",
			content: "db:\n  host: h\n  port: five\n  name: d\n  user: u\n  password: p\n",
			wantErr: credcheck.ErrSchema,
		},
		{
			name:    "port out of range",
			content: "db:\n  host: h\n  port: 99999\n  name: d\n  user: u\n  password: p\n",
			wantErr: credcheck.ErrSchema,
		},
		{
			name:    "null db",
			content: "db: ~\n",
			wantErr: credcheck.ErrSchema,
		},
		{
			name:    "nested password",
			content: "db:\n  host: h\n  port: 5432\n  name: d\n  user: u\n  password: [a, b]\n",
			wantErr: credcheck.ErrSchema,
		},
		{
			name:    "hex port",
			content: "db:\n  host: h\n  port: 0x1F\n  name: d\n  user: u\n  password: p\n",
			wantErr: credcheck.ErrSchema,
		},
		{
			name:    "invalid yaml",
			content: "db: [unclosed\n",
			wantErr: credcheck.ErrParse,
		},
		{
			name:    "top level list",
			content: "- host\n- port\n",
			wantErr: credcheck.ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSecretsFile(t, tt.content)
			_, err := NewFileSource(path).Resolve(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewFileSource_DefaultPath(t *testing.T) {
	src := NewFileSource("")
	assert.Equal(t, credcheck.DefaultSecretsFile, src.Path())
	assert.Equal(t, credcheck.ModeFile, src.Mode())
}
