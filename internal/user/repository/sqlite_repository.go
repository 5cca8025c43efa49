package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	commondb "github.com/AlibekovAA/album-catalog/internal/common/db"
	"github.com/AlibekovAA/album-catalog/internal/user/domain"
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		user      domain.User
		createdAt int64
	)
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &createdAt); err != nil {
		return domain.User{}, err
	}
	user.CreatedAt = time.Unix(createdAt, 0).UTC()
	return user, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, username, passwordHash string) (domain.User, error) {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	start := time.Now()
	createdAt := r.now().UTC().Truncate(time.Second)

	res, err := r.db.ExecContext(
		ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username,
		passwordHash,
		createdAt.Unix(),
	)
	if err != nil && commondb.IsUniqueViolation(err) {
		commondb.MeasureQueryDuration("create user", start)
		return domain.User{}, ErrUsernameAlreadyExists
	}
	if err := commondb.HandleExecError(err, "create user", start); err != nil {
		return domain.User{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to read user id: %w", err)
	}

	return domain.User{
		ID:           domain.ID(id),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}, nil
}

func (r *SQLiteRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	start := time.Now()
	user, err := scanUser(r.db.QueryRowContext(
		ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`,
		int64(id),
	))
	if err := commondb.HandleQueryError(err, ErrUserNotFound, "find user by id", start); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *SQLiteRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	start := time.Now()
	user, err := scanUser(r.db.QueryRowContext(
		ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`,
		username,
	))
	if err := commondb.HandleQueryError(err, ErrUserNotFound, "find user by username", start); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]domain.Summary, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, `SELECT id, username, created_at FROM users ORDER BY username ASC`)
	if err != nil {
		return nil, commondb.HandleExecError(err, "list users", start)
	}
	defer rows.Close()

	var users []domain.Summary
	for rows.Next() {
		var (
			u         domain.Summary
			createdAt int64
		)
		if err := rows.Scan(&u.ID, &u.Username, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.CreatedAt = time.Unix(createdAt, 0).UTC()
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	commondb.MeasureQueryDuration("list users", start)
	return users, nil
}

func (r *SQLiteRepository) UpdateUsername(ctx context.Context, id domain.ID, username string) (domain.User, error) {
	return r.update(ctx, id, `UPDATE users SET username = ? WHERE id = ?`, username, int64(id))
}

func (r *SQLiteRepository) UpdateCredentials(ctx context.Context, id domain.ID, username, passwordHash string) (domain.User, error) {
	return r.update(ctx, id, `UPDATE users SET username = ?, password_hash = ? WHERE id = ?`, username, passwordHash, int64(id))
}

func (r *SQLiteRepository) update(ctx context.Context, id domain.ID, query string, args ...any) (domain.User, error) {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	start := time.Now()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil && commondb.IsUniqueViolation(err) {
		commondb.MeasureQueryDuration("update user", start)
		return domain.User{}, ErrUsernameAlreadyExists
	}
	if err := commondb.HandleExecError(err, "update user", start); err != nil {
		return domain.User{}, err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.User{}, ErrUserNotFound
	}

	return r.FindByID(ctx, id)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id domain.ID) (string, error) {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	start := time.Now()
	var username string
	err := r.db.QueryRowContext(ctx, `DELETE FROM users WHERE id = ? RETURNING username`, int64(id)).Scan(&username)
	if err := commondb.HandleQueryError(err, ErrUserNotFound, "delete user", start); err != nil {
		return "", err
	}
	return username, nil
}
