package db

import (
	"context"
	"errors"
	"time"

	"github.com/vvka-141/credcheck/pkg/credcheck"
)

// MockTokenProvider is a test implementation of TokenProvider.
type MockTokenProvider struct {
	Token     string
	ExpiresOn time.Time
	Err       error
	Calls     int
}

func (m *MockTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	m.Calls++
	if m.Err != nil {
		return "", time.Time{}, m.Err
	}
	return m.Token, m.ExpiresOn, nil
}

func (m *MockTokenProvider) String() string {
	return "MockTokenProvider"
}

type fakeConn struct {
	row      map[string]any
	queryErr error
	closeErr error

	queries []string
	closed  int
}

func (c *fakeConn) QueryRow(_ context.Context, sql string) (map[string]any, error) {
	c.queries = append(c.queries, sql)
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	return c.row, nil
}

func (c *fakeConn) Close(context.Context) error {
	c.closed++
	return c.closeErr
}

type fakeConnector struct {
	conn *fakeConn
	err  error

	records []credcheck.CredentialRecord
}

func (f *fakeConnector) Connect(_ context.Context, record credcheck.CredentialRecord) (credcheck.DBConnection, error) {
	f.records = append(f.records, record)
	if f.err != nil {
		return nil, f.err
	}
	return f.conn, nil
}

var errBoom = errors.New("boom")
