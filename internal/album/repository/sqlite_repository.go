package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/AlibekovAA/album-catalog/internal/album/domain"
	commondb "github.com/AlibekovAA/album-catalog/internal/common/db"
)

type SQLiteRepository struct {
	db        *sql.DB
	writeLock *sync.Mutex // the sqlite driver does not support concurrent writes
	now       func() time.Time
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{
		db:        db,
		writeLock: new(sync.Mutex),
		now:       time.Now,
	}
}

// created_at is stored as unix seconds.
func scanSQLiteAlbum(row rowScanner) (domain.Album, error) {
	var (
		album     domain.Album
		createdAt int64
	)
	err := row.Scan(
		&album.ID,
		&album.Title,
		&album.Description,
		&album.ReleaseDate,
		&album.CoverImage,
		&createdAt,
	)
	if err != nil {
		return domain.Album{}, err
	}
	album.CreatedAt = time.Unix(createdAt, 0).UTC()
	return album, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, album domain.Album) (domain.Album, error) {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	start := time.Now()
	created, err := scanSQLiteAlbum(r.db.QueryRowContext(
		ctx,
		`INSERT INTO albums (title, description, release_date, cover_image, created_at)
		 VALUES (?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), ?)
		 RETURNING `+albumColumns,
		album.Title,
		album.Description,
		album.ReleaseDate,
		album.CoverImage,
		r.now().Unix(),
	))
	if err := commondb.HandleExecError(err, "create album", start); err != nil {
		return domain.Album{}, err
	}
	return created, nil
}

func (r *SQLiteRepository) FindByID(ctx context.Context, id domain.ID) (domain.Album, error) {
	start := time.Now()
	album, err := scanSQLiteAlbum(r.db.QueryRowContext(ctx, `SELECT `+albumColumns+` FROM albums WHERE id = ?`, int64(id)))
	if err := commondb.HandleQueryError(err, ErrAlbumNotFound, "find album by id", start); err != nil {
		return domain.Album{}, err
	}
	return album, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, album domain.Album) (domain.Album, error) {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	start := time.Now()
	updated, err := scanSQLiteAlbum(r.db.QueryRowContext(
		ctx,
		`UPDATE albums
		 SET title = ?, description = NULLIF(?, ''), release_date = NULLIF(?, ''), cover_image = NULLIF(?, '')
		 WHERE id = ?
		 RETURNING `+albumColumns,
		album.Title,
		album.Description,
		album.ReleaseDate,
		album.CoverImage,
		int64(album.ID),
	))
	if err := commondb.HandleQueryError(err, ErrAlbumNotFound, "update album", start); err != nil {
		return domain.Album{}, err
	}
	return updated, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id domain.ID) (string, error) {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	start := time.Now()
	var title string
	err := r.db.QueryRowContext(ctx, `DELETE FROM albums WHERE id = ? RETURNING title`, int64(id)).Scan(&title)
	if err := commondb.HandleQueryError(err, ErrAlbumNotFound, "delete album", start); err != nil {
		return "", err
	}
	return title, nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]domain.Album, error) {
	start := time.Now()
	query := `SELECT ` + albumColumns + ` FROM albums ` + albumOrder
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, commondb.HandleExecError(err, "list albums", start)
	}
	defer rows.Close()

	var albums []domain.Album
	for rows.Next() {
		album, err := scanSQLiteAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan album: %w", err)
		}
		albums = append(albums, album)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	commondb.MeasureQueryDuration("list albums", start)
	return albums, nil
}

func (r *SQLiteRepository) FindLatestAdded(ctx context.Context) (domain.Album, error) {
	start := time.Now()
	album, err := scanSQLiteAlbum(r.db.QueryRowContext(ctx, `SELECT `+albumColumns+` FROM albums ORDER BY id DESC LIMIT 1`))
	if err := commondb.HandleQueryError(err, ErrAlbumNotFound, "find latest album", start); err != nil {
		return domain.Album{}, err
	}
	return album, nil
}
