package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/album-catalog/internal/album/domain"
	commondb "github.com/AlibekovAA/album-catalog/internal/common/db"
)

var ErrAlbumNotFound = errors.New("album not found")

const (
	albumColumns = `id, title, COALESCE(description, ''), COALESCE(release_date, ''), COALESCE(cover_image, ''), created_at`
	albumOrder   = `ORDER BY release_date DESC NULLS LAST, id DESC`
)

type Repository interface {
	Create(ctx context.Context, album domain.Album) (domain.Album, error)
	FindByID(ctx context.Context, id domain.ID) (domain.Album, error)
	Update(ctx context.Context, album domain.Album) (domain.Album, error)
	Delete(ctx context.Context, id domain.ID) (string, error)
	// List returns albums newest release first; limit <= 0 means all.
	List(ctx context.Context, limit int) ([]domain.Album, error)
	FindLatestAdded(ctx context.Context) (domain.Album, error)
}

func New(store *commondb.Store) Repository {
	if store.Pool != nil {
		return NewPgRepository(store.Pool)
	}
	return NewSQLiteRepository(store.SQL)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, album domain.Album) (domain.Album, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO albums (title, description, release_date, cover_image)
		 VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''))
		 RETURNING `+albumColumns,
		album.Title,
		album.Description,
		album.ReleaseDate,
		album.CoverImage,
	)

	created, err := scanAlbum(row)
	if err := commondb.HandleExecError(err, "create album", start); err != nil {
		return domain.Album{}, err
	}
	return created, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.Album, error) {
	start := time.Now()
	row := r.pool.QueryRow(ctx, `SELECT `+albumColumns+` FROM albums WHERE id = $1`, int64(id))

	album, err := scanAlbum(row)
	if err := commondb.HandleQueryError(err, ErrAlbumNotFound, "find album by id", start); err != nil {
		return domain.Album{}, err
	}
	return album, nil
}

func (r *PgRepository) Update(ctx context.Context, album domain.Album) (domain.Album, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`UPDATE albums
		 SET title = $2, description = NULLIF($3, ''), release_date = NULLIF($4, ''), cover_image = NULLIF($5, '')
		 WHERE id = $1
		 RETURNING `+albumColumns,
		int64(album.ID),
		album.Title,
		album.Description,
		album.ReleaseDate,
		album.CoverImage,
	)

	updated, err := scanAlbum(row)
	if err := commondb.HandleQueryError(err, ErrAlbumNotFound, "update album", start); err != nil {
		return domain.Album{}, err
	}
	return updated, nil
}

func (r *PgRepository) Delete(ctx context.Context, id domain.ID) (string, error) {
	start := time.Now()
	var title string
	err := r.pool.QueryRow(ctx, `DELETE FROM albums WHERE id = $1 RETURNING title`, int64(id)).Scan(&title)
	if err := commondb.HandleQueryError(err, ErrAlbumNotFound, "delete album", start); err != nil {
		return "", err
	}
	return title, nil
}

func (r *PgRepository) List(ctx context.Context, limit int) ([]domain.Album, error) {
	start := time.Now()
	query := `SELECT ` + albumColumns + ` FROM albums ` + albumOrder
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, commondb.HandleExecError(err, "list albums", start)
	}
	defer rows.Close()

	var albums []domain.Album
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan album: %w", err)
		}
		albums = append(albums, album)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	commondb.MeasureQueryDuration("list albums", start)
	return albums, nil
}

func (r *PgRepository) FindLatestAdded(ctx context.Context) (domain.Album, error) {
	start := time.Now()
	row := r.pool.QueryRow(ctx, `SELECT `+albumColumns+` FROM albums ORDER BY id DESC LIMIT 1`)

	album, err := scanAlbum(row)
	if err := commondb.HandleQueryError(err, ErrAlbumNotFound, "find latest album", start); err != nil {
		return domain.Album{}, err
	}
	return album, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlbum(row rowScanner) (domain.Album, error) {
	var album domain.Album
	err := row.Scan(
		&album.ID,
		&album.Title,
		&album.Description,
		&album.ReleaseDate,
		&album.CoverImage,
		&album.CreatedAt,
	)
	return album, err
}
