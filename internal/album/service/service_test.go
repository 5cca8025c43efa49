package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/album-catalog/internal/album/domain"
	"github.com/AlibekovAA/album-catalog/internal/album/repository"
	commondb "github.com/AlibekovAA/album-catalog/internal/common/db"
	commonerrors "github.com/AlibekovAA/album-catalog/internal/common/errors"
	"github.com/AlibekovAA/album-catalog/internal/common/logger"
)

func testLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, "test", "debug")
}

func setupAlbumService(t *testing.T) (*AlbumService, *mockAlbumRepo) {
	t.Helper()
	repo := &mockAlbumRepo{}
	return NewAlbumService(repo, testLogger()), repo
}

func TestAlbumService_Create_NormalizesDate(t *testing.T) {
	svc, repo := setupAlbumService(t)

	var stored domain.Album
	repo.createFunc = func(ctx context.Context, album domain.Album) (domain.Album, error) {
		stored = album
		album.ID = 7
		return album, nil
	}

	created, err := svc.Create(context.Background(), AlbumInput{
		Title:       "  Demo  ",
		ReleaseDate: domain.Date(time.Date(2024, time.January, 1, 15, 4, 5, 0, time.UTC)),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ID(7), created.ID)
	assert.Equal(t, "Demo", stored.Title)
	assert.Equal(t, "2024-01-01", stored.ReleaseDate)
}

func TestAlbumService_Create_InvalidDate(t *testing.T) {
	svc, repo := setupAlbumService(t)
	repo.createFunc = func(ctx context.Context, album domain.Album) (domain.Album, error) {
		t.Fatal("repository must not be called for an invalid date")
		return domain.Album{}, nil
	}

	_, err := svc.Create(context.Background(), AlbumInput{
		Title:       "Demo",
		ReleaseDate: domain.DateString("next tuesday"),
	})
	require.ErrorIs(t, err, commonerrors.ErrInvalidReleaseDate)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestAlbumService_Create_RequiresTitle(t *testing.T) {
	svc, _ := setupAlbumService(t)

	_, err := svc.Create(context.Background(), AlbumInput{Title: "   "})
	assert.ErrorIs(t, err, commonerrors.ErrValidation)

	_, err = svc.Create(context.Background(), AlbumInput{Title: strings.Repeat("x", 201)})
	assert.ErrorIs(t, err, commonerrors.ErrValidation)
}

func TestAlbumService_Create_NilDateStoresNone(t *testing.T) {
	svc, _ := setupAlbumService(t)

	created, err := svc.Create(context.Background(), AlbumInput{Title: "Demo"})
	require.NoError(t, err)
	assert.Empty(t, created.ReleaseDate)
}

func TestAlbumService_Create_RepositoryFailure(t *testing.T) {
	svc, repo := setupAlbumService(t)
	repo.createFunc = func(ctx context.Context, album domain.Album) (domain.Album, error) {
		return domain.Album{}, errors.New("disk full")
	}

	_, err := svc.Create(context.Background(), AlbumInput{Title: "Demo"})
	assert.ErrorIs(t, err, commonerrors.ErrDatabaseError)
}

func TestAlbumService_Get_NotFound(t *testing.T) {
	svc, _ := setupAlbumService(t)

	_, err := svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, commonerrors.ErrAlbumNotFound)
}

func TestAlbumService_Update_OverwritesAllFields(t *testing.T) {
	svc, repo := setupAlbumService(t)

	var stored domain.Album
	repo.updateFunc = func(ctx context.Context, album domain.Album) (domain.Album, error) {
		stored = album
		return album, nil
	}

	_, err := svc.Update(context.Background(), 3, AlbumInput{
		Title:       "Renamed",
		Description: "",
		ReleaseDate: domain.DateString("2020-02-02T10:00:00"),
		CoverImage:  "",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Album{ID: 3, Title: "Renamed", ReleaseDate: "2020-02-02"}, stored)
}

func TestAlbumService_Update_NotFound(t *testing.T) {
	svc, _ := setupAlbumService(t)

	_, err := svc.Update(context.Background(), 3, AlbumInput{Title: "Renamed"})
	assert.ErrorIs(t, err, commonerrors.ErrAlbumNotFound)
}

func TestAlbumService_Latest_DefaultsToLandingLimit(t *testing.T) {
	svc, repo := setupAlbumService(t)

	var gotLimit int
	repo.listFunc = func(ctx context.Context, limit int) ([]domain.Album, error) {
		gotLimit = limit
		return nil, nil
	}

	_, err := svc.Latest(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, gotLimit)

	_, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, gotLimit)
}

func TestAlbumService_LatestAdded_EmptyCatalog(t *testing.T) {
	svc, _ := setupAlbumService(t)

	_, err := svc.LatestAdded(context.Background())
	assert.ErrorIs(t, err, commonerrors.ErrAlbumNotFound)
}

func TestAlbumService_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := commondb.Open(ctx, testLogger(), "sqlite::memory:")
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Migrate(ctx))

	svc := NewAlbumService(repository.New(store), testLogger())

	created, err := svc.Create(ctx, AlbumInput{
		Title:       "Demo",
		Description: "debut",
		ReleaseDate: domain.Date(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)),
		CoverImage:  "https://example.com/demo.jpg",
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Demo", got.Title)
	assert.Equal(t, "debut", got.Description)
	assert.Equal(t, "2024-01-01", got.ReleaseDate)
	assert.Equal(t, "https://example.com/demo.jpg", got.CoverImage)

	title, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Demo", title)

	_, err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, commonerrors.ErrAlbumNotFound)

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, commonerrors.ErrAlbumNotFound)
}
