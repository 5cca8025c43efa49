package service

import (
	"context"

	"github.com/AlibekovAA/album-catalog/internal/album/domain"
	"github.com/AlibekovAA/album-catalog/internal/album/repository"
)

type mockAlbumRepo struct {
	createFunc          func(ctx context.Context, album domain.Album) (domain.Album, error)
	findByIDFunc        func(ctx context.Context, id domain.ID) (domain.Album, error)
	updateFunc          func(ctx context.Context, album domain.Album) (domain.Album, error)
	deleteFunc          func(ctx context.Context, id domain.ID) (string, error)
	listFunc            func(ctx context.Context, limit int) ([]domain.Album, error)
	findLatestAddedFunc func(ctx context.Context) (domain.Album, error)
}

func (m *mockAlbumRepo) Create(ctx context.Context, album domain.Album) (domain.Album, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, album)
	}
	album.ID = 1
	return album, nil
}

func (m *mockAlbumRepo) FindByID(ctx context.Context, id domain.ID) (domain.Album, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return domain.Album{}, repository.ErrAlbumNotFound
}

func (m *mockAlbumRepo) Update(ctx context.Context, album domain.Album) (domain.Album, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, album)
	}
	return domain.Album{}, repository.ErrAlbumNotFound
}

func (m *mockAlbumRepo) Delete(ctx context.Context, id domain.ID) (string, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return "", repository.ErrAlbumNotFound
}

func (m *mockAlbumRepo) List(ctx context.Context, limit int) ([]domain.Album, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockAlbumRepo) FindLatestAdded(ctx context.Context) (domain.Album, error) {
	if m.findLatestAddedFunc != nil {
		return m.findLatestAddedFunc(ctx)
	}
	return domain.Album{}, repository.ErrAlbumNotFound
}
