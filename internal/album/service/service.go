package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/AlibekovAA/album-catalog/internal/album/domain"
	"github.com/AlibekovAA/album-catalog/internal/album/repository"
	"github.com/AlibekovAA/album-catalog/internal/common/constants"
	commonerrors "github.com/AlibekovAA/album-catalog/internal/common/errors"
	"github.com/AlibekovAA/album-catalog/internal/common/logger"
)

type AlbumInput struct {
	Title       string
	Description string
	// nil stores no date
	ReleaseDate domain.ReleaseDate
	CoverImage  string
}

type AlbumService struct {
	repo repository.Repository
	log  *logger.Logger
}

func NewAlbumService(repo repository.Repository, log *logger.Logger) *AlbumService {
	return &AlbumService{
		repo: repo,
		log:  log,
	}
}

func (s *AlbumService) Create(ctx context.Context, input AlbumInput) (domain.Album, error) {
	album, err := s.prepare(ctx, input, "create")
	if err != nil {
		return domain.Album{}, err
	}

	created, err := s.repo.Create(ctx, album)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"title":  album.Title,
			"action": "album_create_failed",
		}).Errorf("create album failed: %v", err)
		incrementAlbumOperation("create", "error")
		return domain.Album{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"album_id": int64(created.ID),
		"action":   "album_create_success",
	}).Info("album created")
	incrementAlbumOperation("create", "success")

	return created, nil
}

func (s *AlbumService) Get(ctx context.Context, id domain.ID) (domain.Album, error) {
	album, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Album{}, s.mapRepoError(ctx, err, id, "get")
	}
	return album, nil
}

func (s *AlbumService) Update(ctx context.Context, id domain.ID, input AlbumInput) (domain.Album, error) {
	album, err := s.prepare(ctx, input, "update")
	if err != nil {
		return domain.Album{}, err
	}
	album.ID = id

	updated, err := s.repo.Update(ctx, album)
	if err != nil {
		incrementAlbumOperation("update", "error")
		return domain.Album{}, s.mapRepoError(ctx, err, id, "update")
	}

	s.log.WithFields(ctx, logger.Fields{
		"album_id": int64(id),
		"action":   "album_update_success",
	}).Info("album updated")
	incrementAlbumOperation("update", "success")

	return updated, nil
}

// Delete removes the album and returns its title for the confirmation message.
func (s *AlbumService) Delete(ctx context.Context, id domain.ID) (string, error) {
	title, err := s.repo.Delete(ctx, id)
	if err != nil {
		incrementAlbumOperation("delete", "error")
		return "", s.mapRepoError(ctx, err, id, "delete")
	}

	s.log.WithFields(ctx, logger.Fields{
		"album_id": int64(id),
		"action":   "album_delete_success",
	}).Info("album deleted")
	incrementAlbumOperation("delete", "success")

	return title, nil
}

func (s *AlbumService) List(ctx context.Context) ([]domain.Album, error) {
	return s.list(ctx, 0)
}

func (s *AlbumService) Latest(ctx context.Context, limit int) ([]domain.Album, error) {
	if limit <= 0 {
		limit = constants.LandingPageAlbumLimit
	}
	return s.list(ctx, limit)
}

// LatestAdded returns the album with the highest id.
func (s *AlbumService) LatestAdded(ctx context.Context) (domain.Album, error) {
	album, err := s.repo.FindLatestAdded(ctx)
	if err != nil {
		return domain.Album{}, s.mapRepoError(ctx, err, 0, "latest")
	}
	return album, nil
}

func (s *AlbumService) list(ctx context.Context, limit int) ([]domain.Album, error) {
	albums, err := s.repo.List(ctx, limit)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"limit":  limit,
			"action": "album_list_failed",
		}).Errorf("list albums failed: %v", err)
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return albums, nil
}

func (s *AlbumService) prepare(ctx context.Context, input AlbumInput, op string) (domain.Album, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || utf8.RuneCountInString(title) > constants.AlbumTitleMaxLength {
		s.log.WithFields(ctx, logger.Fields{
			"action": "album_" + op + "_validation_failed",
		}).Warn("album title missing or too long")
		return domain.Album{}, commonerrors.ErrValidation
	}

	releaseDate, err := domain.NormalizeReleaseDate(input.ReleaseDate)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "album_" + op + "_invalid_date",
		}).Warnf("album release date rejected: %v", err)
		return domain.Album{}, commonerrors.ErrInvalidReleaseDate.WithCause(err)
	}

	return domain.Album{
		Title:       title,
		Description: input.Description,
		ReleaseDate: releaseDate,
		CoverImage:  input.CoverImage,
	}, nil
}

func (s *AlbumService) mapRepoError(ctx context.Context, err error, id domain.ID, op string) error {
	if errors.Is(err, repository.ErrAlbumNotFound) {
		s.log.WithFields(ctx, logger.Fields{
			"album_id": int64(id),
			"action":   "album_" + op + "_not_found",
		}).Debug("album not found")
		return commonerrors.ErrAlbumNotFound
	}

	s.log.WithFields(ctx, logger.Fields{
		"album_id": int64(id),
		"action":   "album_" + op + "_failed",
	}).Errorf("album %s failed: %v", op, err)
	return commonerrors.ErrDatabaseError.WithCause(err)
}
