package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/credcheck/internal/logging"
	"github.com/vvka-141/credcheck/pkg/credcheck"
)

const hintTestPassword = "pw-not-in-hints"

func TestWrapConnectionError_Hints(t *testing.T) {
	labdb := mustRecord(t, "127.0.0.1", 5432, "labdb", "labuser", hintTestPassword)
	remote := mustRecord(t, "db.invalid", 6543, "orders", "svc", hintTestPassword)

	tests := []struct {
		name        string
		record      credcheck.CredentialRecord
		cause       error
		wantSummary string
		wantCause   string
	}{
		{
			name:        "refused",
			record:      labdb,
			cause:       errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			wantSummary: "connection refused to 127.0.0.1:5432",
			wantCause:   "host or port in the selected credential source",
		},
		{
			name:        "refused on windows",
			record:      labdb,
			cause:       errors.New("connectex: No connection could be made because the target machine actively refused it."),
			wantSummary: "connection refused to 127.0.0.1:5432",
		},
		{
			name:        "unresolvable host",
			record:      remote,
			cause:       errors.New("hostname resolving error: lookup db.invalid: no such host"),
			wantSummary: `cannot resolve host "db.invalid"`,
			wantCause:   "host in the selected credential source is misspelled",
		},
		{
			name:   "wrong password by sqlstate",
			record: labdb,
			cause: &pgconn.PgError{
				Severity: "FATAL",
				Code:     "28P01",
				Message:  `password authentication failed for user "labuser"`,
			},
			wantSummary: `authentication failed for user "labuser" on database "labdb"`,
			wantCause:   "password in the selected credential source is wrong or stale",
		},
		{
			name:   "unknown role is an auth failure, not a missing database",
			record: remote,
			cause: &pgconn.PgError{
				Severity: "FATAL",
				Code:     "28000",
				Message:  `role "svc" does not exist`,
			},
			wantSummary: `authentication failed for user "svc" on database "orders"`,
		},
		{
			name:   "missing database",
			record: remote,
			cause: &pgconn.PgError{
				Severity: "FATAL",
				Code:     "3D000",
				Message:  `database "orders" does not exist`,
			},
			wantSummary: `database "orders" does not exist on db.invalid:6543`,
			wantCause:   "name in the selected credential source is wrong",
		},
		{
			name:        "sqlstate found through wrapping",
			record:      labdb,
			cause:       fmt.Errorf("failed to connect: %w", &pgconn.PgError{Severity: "FATAL", Code: "53300", Message: "sorry, too many clients already"}),
			wantSummary: "server 127.0.0.1:5432 has no free connection slots",
		},
		{
			name:        "deadline",
			record:      remote,
			cause:       errors.New("dial tcp 10.1.2.3:6543: i/o timeout"),
			wantSummary: "connection to db.invalid:6543 timed out",
			wantCause:   "--timeout",
		},
		{
			name:        "untrusted certificate",
			record:      labdb,
			cause:       errors.New("tls: failed to verify certificate: x509: certificate signed by unknown authority"),
			wantSummary: "SSL/TLS negotiation failed",
			wantCause:   "--sslrootcert",
		},
		{
			name:        "server without ssl",
			record:      labdb,
			cause:       errors.New("server refused TLS connection"),
			wantSummary: "SSL/TLS negotiation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := wrapConnectionError(tt.cause, tt.record)
			msg := wrapped.Error()

			assert.Contains(t, msg, tt.wantSummary)
			assert.Contains(t, msg, "Possible causes:")
			if tt.wantCause != "" {
				assert.Contains(t, msg, tt.wantCause)
			}
			assert.NotContains(t, msg, hintTestPassword)

			assert.ErrorIs(t, wrapped, tt.cause)
			assert.ErrorIs(t, wrapped, credcheck.ErrConnectionFailed)
			assert.Equal(t, credcheck.ExitConnectionError, credcheck.ExitCodeForError(wrapped))
		})
	}
}

func TestWrapConnectionError_UnclassifiedNamesTarget(t *testing.T) {
	record := mustRecord(t, "db.internal", 5432, "labdb", "labuser", hintTestPassword)
	cause := errors.New("unexpected EOF")

	wrapped := wrapConnectionError(cause, record)

	assert.Equal(t, "connection failed: failed to connect to db.internal:5432/labdb: unexpected EOF", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

// The connection phase and the query phase end in different exit codes even
// when the driver reports the same SQLSTATE.
func TestConnectAndQueryPhasesMapToDistinctExitCodes(t *testing.T) {
	record := mustRecord(t, "localhost", 5432, "labdb", "labuser", "")
	pgErr := &pgconn.PgError{Severity: "FATAL", Code: "57P01", Message: "terminating connection due to administrator command"}

	connectErr := wrapConnectionError(pgErr, record)
	assert.Equal(t, credcheck.ExitConnectionError, credcheck.ExitCodeForError(connectErr))

	conn := &fakeConn{queryErr: pgErr}
	_, queryErr := NewValidator(&fakeConnector{conn: conn}, logging.NewNullLogger()).Validate(context.Background(), record)
	require.Error(t, queryErr)
	assert.ErrorIs(t, queryErr, credcheck.ErrQueryFailed)
	assert.NotErrorIs(t, queryErr, credcheck.ErrConnectionFailed)
	assert.Equal(t, credcheck.ExitQueryFailed, credcheck.ExitCodeForError(queryErr))
}
