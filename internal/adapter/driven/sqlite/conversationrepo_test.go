package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationRepo_FirstByCustomerEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConversationRepo(db)
	support := insertMailbox(t, db, "Support", "support@example.com")
	sales := insertMailbox(t, db, "Sales", "sales@example.com")

	firstID := insertConversation(t, db, support, "a@example.com", "Refund please")
	insertConversation(t, db, sales, "a@example.com", "Upgrade")

	got, err := repo.FirstByCustomerEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, firstID, got.ID)
	assert.Equal(t, support, got.MailboxID)
	assert.Equal(t, "Refund please", got.Subject)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestConversationRepo_FirstByCustomerEmail_CaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConversationRepo(db)
	support := insertMailbox(t, db, "Support", "support@example.com")
	insertConversation(t, db, support, "Ada@Example.com", "Hi")

	got, err := repo.FirstByCustomerEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, support, got.MailboxID)
}

func TestConversationRepo_FirstByCustomerEmail_Missing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConversationRepo(db)

	got, err := repo.FirstByCustomerEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestConversationRepo_FirstByCustomerEmail_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewConversationRepo(db)

	mock.ExpectQuery("FROM conversations").
		WithArgs("a@example.com").
		WillReturnError(errors.New("no such table: conversations"))

	got, err := repo.FirstByCustomerEmail(context.Background(), "a@example.com")

	assert.Nil(t, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such table")
	assert.NotContains(t, err.Error(), "a@example.com", "customer emails stay out of error strings")
}
