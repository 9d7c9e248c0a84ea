package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerRepo_GetByEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCustomerRepo(db)
	id := insertCustomer(t, db, "Ada", "Lovelace", "ada@example.com", "ada@work.example.com")

	got, err := repo.GetByEmail(context.Background(), "ada@work.example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, "Lovelace", got.LastName)
	assert.Equal(t, []string{"ada@example.com", "ada@work.example.com"}, got.Emails)
	assert.Equal(t, "ada@example.com", got.MainEmail())
}

func TestCustomerRepo_GetByEmail_Missing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCustomerRepo(db)

	got, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDB_Ping(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.Ping(context.Background()))
}
