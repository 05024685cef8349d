package index

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertAndLookup(t *testing.T) {
	m := NewManager()
	m.Register("users", "id")

	require.NoError(t, m.Insert("users", "id", int64(1), int64(1)))
	require.True(t, m.Exists("users", "id", int64(1)))

	pk, ok := m.Lookup("users", "id", int64(1))
	require.True(t, ok)
	require.Equal(t, int64(1), pk)

	require.False(t, m.Exists("users", "id", int64(2)))
}

func TestDuplicateInsertIsInvariantError(t *testing.T) {
	m := NewManager()
	m.Register("users", "email")

	require.NoError(t, m.Insert("users", "email", "a@example.com", int64(1)))
	err := m.Insert("users", "email", "a@example.com", int64(2))

	var invErr *InvariantError
	require.True(t, errors.As(err, &invErr))
	require.Equal(t, "users", invErr.Table)
	require.Equal(t, "email", invErr.Column)
}

func TestNullIsNeverIndexed(t *testing.T) {
	m := NewManager()
	m.Register("users", "email")

	require.NoError(t, m.Insert("users", "email", nil, int64(1)))
	require.NoError(t, m.Insert("users", "email", nil, int64(2)))
	require.False(t, m.Exists("users", "email", nil))
}

func TestRemoveAndUpdate(t *testing.T) {
	m := NewManager()
	m.Register("users", "email")

	require.NoError(t, m.Insert("users", "email", "a@example.com", int64(1)))
	m.Remove("users", "email", "a@example.com")
	require.False(t, m.Exists("users", "email", "a@example.com"))

	require.NoError(t, m.Insert("users", "email", "b@example.com", int64(2)))
	require.NoError(t, m.Update("users", "email", "b@example.com", "c@example.com", int64(2)))
	require.False(t, m.Exists("users", "email", "b@example.com"))
	require.True(t, m.Exists("users", "email", "c@example.com"))

	// updating to the same value is a no-op, not a duplicate
	require.NoError(t, m.Update("users", "email", "c@example.com", "c@example.com", int64(2)))
}

func TestUpdateToNullRemovesIndexEntry(t *testing.T) {
	m := NewManager()
	m.Register("users", "email")

	require.NoError(t, m.Insert("users", "email", "a@example.com", int64(1)))
	require.NoError(t, m.Update("users", "email", "a@example.com", nil, int64(1)))
	require.False(t, m.Exists("users", "email", "a@example.com"))
}

func TestRegisterResetsAndDrop(t *testing.T) {
	m := NewManager()
	m.Register("users", "id")
	require.NoError(t, m.Insert("users", "id", int64(1), int64(1)))

	m.Register("users", "id")
	require.False(t, m.Exists("users", "id", int64(1)))

	require.NoError(t, m.Insert("users", "id", int64(1), int64(1)))
	m.Drop("users")
	require.False(t, m.Exists("users", "id", int64(1)))
}
