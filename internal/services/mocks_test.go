package services

import (
	"context"
	"errors"

	"github.com/vvka-141/credcheck/pkg/credcheck"
)

type mockConn struct {
	row      map[string]any
	queryErr error
	closed   bool
}

func (m *mockConn) QueryRow(context.Context, string) (map[string]any, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.row, nil
}

func (m *mockConn) Close(context.Context) error {
	m.closed = true
	return nil
}

type mockConnector struct {
	conn *mockConn
	err  error

	got []credcheck.CredentialRecord
}

func (m *mockConnector) Connect(_ context.Context, record credcheck.CredentialRecord) (credcheck.DBConnection, error) {
	m.got = append(m.got, record)
	if m.err != nil {
		return nil, m.err
	}
	return m.conn, nil
}

func newOKConnector() *mockConnector {
	return &mockConnector{conn: &mockConn{row: map[string]any{"?column?": int32(1)}}}
}

type mockResolver struct {
	mode   credcheck.Mode
	record credcheck.CredentialRecord
	err    error
}

func (m *mockResolver) Resolve(context.Context, string) (credcheck.Mode, credcheck.CredentialRecord, error) {
	return m.mode, m.record, m.err
}

var errRefused = errors.New("connection refused")
