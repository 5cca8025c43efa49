package repository

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commondb "github.com/AlibekovAA/album-catalog/internal/common/db"
	"github.com/AlibekovAA/album-catalog/internal/common/logger"
	"github.com/AlibekovAA/album-catalog/internal/user/domain"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	ctx := context.Background()

	store, err := commondb.Open(ctx, logger.NewWithWriter(io.Discard, "test", "error"), "sqlite::memory:")
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, store.Migrate(ctx))

	repo, ok := New(store).(*SQLiteRepository)
	require.True(t, ok)
	return repo
}

func TestSQLiteRepository_CreateAndFind(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "alice", "hash-1")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
	assert.Equal(t, "hash-1", byID.PasswordHash)

	byName, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	_, err = repo.FindByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSQLiteRepository_CreateDuplicate(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "alice", "hash-1")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "alice", "hash-2")
	assert.ErrorIs(t, err, ErrUsernameAlreadyExists)
}

func TestSQLiteRepository_ConcurrentCreateKeepsUsernameUnique(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, "bob", "hash")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, ErrUsernameAlreadyExists):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSQLiteRepository_ListOrderedByUsername(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for _, name := range []string{"carol", "alice", "bob"} {
		_, err := repo.Create(ctx, name, "hash")
		require.NoError(t, err)
	}

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	assert.Equal(t, "carol", users[2].Username)
}

func TestSQLiteRepository_Update(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	alice, err := repo.Create(ctx, "alice", "hash-1")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "bob", "hash-2")
	require.NoError(t, err)

	renamed, err := repo.UpdateUsername(ctx, alice.ID, "alicia")
	require.NoError(t, err)
	assert.Equal(t, "alicia", renamed.Username)
	assert.Equal(t, "hash-1", renamed.PasswordHash)

	rehashed, err := repo.UpdateCredentials(ctx, alice.ID, "alicia", "hash-3")
	require.NoError(t, err)
	assert.Equal(t, "hash-3", rehashed.PasswordHash)

	_, err = repo.UpdateUsername(ctx, alice.ID, "bob")
	assert.ErrorIs(t, err, ErrUsernameAlreadyExists)

	_, err = repo.UpdateUsername(ctx, domain.ID(999), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSQLiteRepository_Delete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	alice, err := repo.Create(ctx, "alice", "hash")
	require.NoError(t, err)

	username, err := repo.Delete(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	_, err = repo.Delete(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.FindByID(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
