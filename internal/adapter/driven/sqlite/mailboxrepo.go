package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/model"
	"github.com/ericfisherdev/helpdesk-stripe/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.MailboxStore = (*MailboxRepo)(nil)

// MailboxRepo is the SQLite implementation of the MailboxStore port.
type MailboxRepo struct {
	db *DB
}

// NewMailboxRepo creates a new MailboxRepo backed by the given DB.
func NewMailboxRepo(db *DB) *MailboxRepo {
	return &MailboxRepo{db: db}
}

// Get returns the mailbox with the given id, or (nil, nil) if it does not exist.
func (r *MailboxRepo) Get(ctx context.Context, id int64) (*model.Mailbox, error) {
	const query = `SELECT id, name, email, created_at FROM mailboxes WHERE id = ?`

	mb, err := scanMailbox(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mailbox %d: %w", id, err)
	}
	return &mb, nil
}

// ListAll returns every mailbox ordered by name.
func (r *MailboxRepo) ListAll(ctx context.Context) ([]model.Mailbox, error) {
	const query = `SELECT id, name, email, created_at FROM mailboxes ORDER BY name, id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list mailboxes: %w", err)
	}
	defer rows.Close()

	mailboxes := []model.Mailbox{}
	for rows.Next() {
		mb, err := scanMailbox(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mailbox: %w", err)
		}
		mailboxes = append(mailboxes, mb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mailboxes: %w", err)
	}

	return mailboxes, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMailbox(row rowScanner) (model.Mailbox, error) {
	var (
		mb        model.Mailbox
		createdAt string
	)
	if err := row.Scan(&mb.ID, &mb.Name, &mb.Email, &createdAt); err != nil {
		return model.Mailbox{}, err
	}

	t, err := parseTime(createdAt)
	if err != nil {
		return model.Mailbox{}, fmt.Errorf("parse created_at: %w", err)
	}
	mb.CreatedAt = t

	return mb, nil
}
