package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/rememberable/testutils"
)

func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	assert.NotNil(t, store)
}

func TestNewDatabaseStore(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		db := testutils.SetupTestDB(t)

		store, err := NewDatabaseStore(db)

		require.NoError(t, err)
		assert.NotNil(t, store)
	})

	t.Run("round trip", func(t *testing.T) {
		db := testutils.SetupTestDB(t)
		store, err := NewDatabaseStore(db)
		require.NoError(t, err)

		require.NoError(t, store.Commit("tok", []byte("data"), time.Now().Add(time.Hour)))

		b, found, err := store.Find("tok")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte("data"), b)

		require.NoError(t, store.Delete("tok"))
		_, found, err = store.Find("tok")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("with nil database", func(t *testing.T) {
		store, err := NewDatabaseStore(nil)

		assert.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "database connection cannot be nil")
	})
}

func TestNewRedisStore(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		mr, client := testutils.SetupTestRedis(t)
		store, err := NewRedisStore(client, "test:session:")
		require.NoError(t, err)

		require.NoError(t, store.Commit("tok", []byte("data"), time.Now().Add(time.Hour)))
		assert.True(t, mr.Exists("test:session:tok"))

		b, found, err := store.Find("tok")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte("data"), b)
	})

	t.Run("nil client", func(t *testing.T) {
		store, err := NewRedisStore(nil, "")

		assert.Error(t, err)
		assert.Nil(t, store)
	})
}
