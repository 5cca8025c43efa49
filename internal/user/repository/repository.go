package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	commondb "github.com/AlibekovAA/album-catalog/internal/common/db"
	commonerrors "github.com/AlibekovAA/album-catalog/internal/common/errors"
	"github.com/AlibekovAA/album-catalog/internal/user/domain"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUsernameAlreadyExists = commonerrors.ErrUsernameAlreadyExists
)

type Repository interface {
	Create(ctx context.Context, username, passwordHash string) (domain.User, error)
	FindByID(ctx context.Context, id domain.ID) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	List(ctx context.Context) ([]domain.Summary, error)
	UpdateUsername(ctx context.Context, id domain.ID, username string) (domain.User, error)
	UpdateCredentials(ctx context.Context, id domain.ID, username, passwordHash string) (domain.User, error)
	Delete(ctx context.Context, id domain.ID) (string, error)
}

// New picks the implementation matching the store's driver.
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

func (r *PgRepository) Create(ctx context.Context, username, passwordHash string) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2)
		 RETURNING id, username, password_hash, created_at`,
		username,
		passwordHash,
	)

	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil && commondb.IsUniqueViolation(err) {
		commondb.MeasureQueryDuration("create user", start)
		return domain.User{}, ErrUsernameAlreadyExists
	}
	if err := commondb.HandleExecError(err, "create user", start); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = $1`,
		int64(id),
	)

	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err := commondb.HandleQueryError(err, ErrUserNotFound, "find user by id", start); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`,
		username,
	)

	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err := commondb.HandleQueryError(err, ErrUserNotFound, "find user by username", start); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

func (r *PgRepository) List(ctx context.Context) ([]domain.Summary, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, username, created_at FROM users ORDER BY username ASC`,
	)
	if err != nil {
		return nil, commondb.HandleExecError(err, "list users", start)
	}
	defer rows.Close()

	var users []domain.Summary
	for rows.Next() {
		var u domain.Summary
		if err := rows.Scan(&u.ID, &u.Username, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	commondb.MeasureQueryDuration("list users", start)
	return users, nil
}

func (r *PgRepository) UpdateUsername(ctx context.Context, id domain.ID, username string) (domain.User, error) {
	return r.update(ctx,
		`UPDATE users SET username = $2 WHERE id = $1
		 RETURNING id, username, password_hash, created_at`,
		int64(id), username,
	)
}

func (r *PgRepository) UpdateCredentials(ctx context.Context, id domain.ID, username, passwordHash string) (domain.User, error) {
	return r.update(ctx,
		`UPDATE users SET username = $2, password_hash = $3 WHERE id = $1
		 RETURNING id, username, password_hash, created_at`,
		int64(id), username, passwordHash,
	)
}

func (r *PgRepository) update(ctx context.Context, query string, args ...any) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(ctx, query, args...)

	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil && commondb.IsUniqueViolation(err) {
		commondb.MeasureQueryDuration("update user", start)
		return domain.User{}, ErrUsernameAlreadyExists
	}
	if err := commondb.HandleQueryError(err, ErrUserNotFound, "update user", start); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

func (r *PgRepository) Delete(ctx context.Context, id domain.ID) (string, error) {
	start := time.Now()
	row := r.pool.QueryRow(ctx, `DELETE FROM users WHERE id = $1 RETURNING username`, int64(id))

	var username string
	err := row.Scan(&username)
	if err := commondb.HandleQueryError(err, ErrUserNotFound, "delete user", start); err != nil {
		return "", err
	}

	return username, nil
}
