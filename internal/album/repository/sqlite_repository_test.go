package repository

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/album-catalog/internal/album/domain"
	commondb "github.com/AlibekovAA/album-catalog/internal/common/db"
	"github.com/AlibekovAA/album-catalog/internal/common/logger"
)

func newTestRepository(t *testing.T) Repository {
	t.Helper()
	ctx := context.Background()

	store, err := commondb.Open(ctx, logger.NewWithWriter(io.Discard, "test", "error"), "sqlite::memory:")
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, store.Migrate(ctx))

	return New(store)
}

func seed(t *testing.T, repo Repository, title, releaseDate string) domain.Album {
	t.Helper()
	album, err := repo.Create(context.Background(), domain.Album{Title: title, ReleaseDate: releaseDate})
	require.NoError(t, err)
	return album
}

func TestSQLiteRepository_CreateAndFind(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, domain.Album{
		Title:       "Demo",
		Description: "first take",
		ReleaseDate: "2024-01-01",
		CoverImage:  "https://example.com/demo.png",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, found)
	assert.Equal(t, "2024-01-01", found.ReleaseDate)

	_, err = repo.FindByID(ctx, created.ID+1)
	assert.ErrorIs(t, err, ErrAlbumNotFound)
}

func TestSQLiteRepository_OptionalFieldsRoundTripEmpty(t *testing.T) {
	repo := newTestRepository(t)

	created := seed(t, repo, "Untitled", "")
	assert.Empty(t, created.Description)
	assert.Empty(t, created.ReleaseDate)
	assert.Empty(t, created.CoverImage)
}

func TestSQLiteRepository_ListOrdering(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	old := seed(t, repo, "Old", "1999-05-01")
	undated := seed(t, repo, "Undated", "")
	newest := seed(t, repo, "Newest", "2024-01-01")
	tieA := seed(t, repo, "Tie A", "2010-01-01")
	tieB := seed(t, repo, "Tie B", "2010-01-01")

	albums, err := repo.List(ctx, 0)
	require.NoError(t, err)

	ids := make([]domain.ID, 0, len(albums))
	for _, a := range albums {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []domain.ID{newest.ID, tieB.ID, tieA.ID, old.ID, undated.ID}, ids)

	latest, err := repo.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, latest, 3)
	assert.Equal(t, newest.ID, latest[0].ID)
}

func TestSQLiteRepository_FindLatestAdded(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.FindLatestAdded(ctx)
	assert.ErrorIs(t, err, ErrAlbumNotFound)

	seed(t, repo, "Newer release", "2024-01-01")
	added := seed(t, repo, "Added last", "1970-01-01")

	latest, err := repo.FindLatestAdded(ctx)
	require.NoError(t, err)
	assert.Equal(t, added.ID, latest.ID)
}

func TestSQLiteRepository_Update(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	album := seed(t, repo, "Draft", "2020-01-01")

	updated, err := repo.Update(ctx, domain.Album{
		ID:          album.ID,
		Title:       "Final",
		Description: "remastered",
		ReleaseDate: "",
		CoverImage:  "https://example.com/final.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, "remastered", updated.Description)
	assert.Empty(t, updated.ReleaseDate)
	assert.Equal(t, album.CreatedAt, updated.CreatedAt)

	_, err = repo.Update(ctx, domain.Album{ID: album.ID + 100, Title: "Ghost"})
	assert.ErrorIs(t, err, ErrAlbumNotFound)
}

func TestSQLiteRepository_DeleteTwice(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	album := seed(t, repo, "Short lived", "2001-01-01")

	title, err := repo.Delete(ctx, album.ID)
	require.NoError(t, err)
	assert.Equal(t, "Short lived", title)

	_, err = repo.Delete(ctx, album.ID)
	assert.ErrorIs(t, err, ErrAlbumNotFound)
}
