package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a named shared in-memory SQLite database for testing.
// Writer and reader connections share the same in-memory database via cache=shared.
// A unique name derived from t.Name() ensures isolation between parallel tests.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Percent-encode the test name so it's a safe SQLite URI filename component
	// and cannot be misinterpreted as query parameters in the "file:%s?..." DSN.
	safeName := url.PathEscape(t.Name())
	// WAL mode is not applicable to in-memory databases; omit journal_mode pragma.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)",
		safeName,
	)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("create test db writer: %v", err)
	}
	writer.SetMaxOpenConns(1)
	if err := writer.PingContext(context.Background()); err != nil {
		_ = writer.Close()
		t.Fatalf("ping test db writer: %v", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		t.Fatalf("create test db reader: %v", err)
	}
	reader.SetMaxOpenConns(4)
	if err := reader.PingContext(context.Background()); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		t.Fatalf("ping test db reader: %v", err)
	}

	db := &DB{Writer: writer, Reader: reader, path: dsn}

	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

// setupMockDB wires a go-sqlmock connection as both reader and writer so
// driver failures can be injected.
func setupMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &DB{Writer: conn, Reader: conn, path: "sqlmock"}, mock
}

// insertMailbox seeds a mailbox row and returns its id.
func insertMailbox(t *testing.T, db *DB, name, email string) int64 {
	t.Helper()
	res, err := db.Writer.ExecContext(context.Background(),
		`INSERT INTO mailboxes (name, email) VALUES (?, ?)`, name, email)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// insertConversation seeds a conversation row and returns its id.
func insertConversation(t *testing.T, db *DB, mailboxID int64, customerEmail, subject string) int64 {
	t.Helper()
	res, err := db.Writer.ExecContext(context.Background(),
		`INSERT INTO conversations (mailbox_id, customer_email, subject) VALUES (?, ?, ?)`,
		mailboxID, customerEmail, subject)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// insertCustomer seeds a customer with its emails (first email is the main one).
func insertCustomer(t *testing.T, db *DB, first, last string, emails ...string) int64 {
	t.Helper()
	ctx := context.Background()
	res, err := db.Writer.ExecContext(ctx,
		`INSERT INTO customers (first_name, last_name) VALUES (?, ?)`, first, last)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)

	for _, e := range emails {
		_, err := db.Writer.ExecContext(ctx,
			`INSERT INTO customer_emails (customer_id, email) VALUES (?, ?)`, id, e)
		require.NoError(t, err)
	}
	return id
}
