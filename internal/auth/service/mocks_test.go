package service

import (
	"context"
	"errors"

	userdomain "github.com/AlibekovAA/album-catalog/internal/user/domain"
	userrepo "github.com/AlibekovAA/album-catalog/internal/user/repository"
)

type mockUserRepo struct {
	createFunc            func(ctx context.Context, username, passwordHash string) (userdomain.User, error)
	findByIDFunc          func(ctx context.Context, id userdomain.ID) (userdomain.User, error)
	findByUsernameFunc    func(ctx context.Context, username string) (userdomain.User, error)
	listFunc              func(ctx context.Context) ([]userdomain.Summary, error)
	updateUsernameFunc    func(ctx context.Context, id userdomain.ID, username string) (userdomain.User, error)
	updateCredentialsFunc func(ctx context.Context, id userdomain.ID, username, passwordHash string) (userdomain.User, error)
	deleteFunc            func(ctx context.Context, id userdomain.ID) (string, error)
}

func (m *mockUserRepo) Create(ctx context.Context, username, passwordHash string) (userdomain.User, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, username, passwordHash)
	}
	return userdomain.User{ID: 1, Username: username, PasswordHash: passwordHash}, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (userdomain.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) List(ctx context.Context) ([]userdomain.Summary, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) UpdateUsername(ctx context.Context, id userdomain.ID, username string) (userdomain.User, error) {
	if m.updateUsernameFunc != nil {
		return m.updateUsernameFunc(ctx, id, username)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) UpdateCredentials(ctx context.Context, id userdomain.ID, username, passwordHash string) (userdomain.User, error) {
	if m.updateCredentialsFunc != nil {
		return m.updateCredentialsFunc(ctx, id, username, passwordHash)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) Delete(ctx context.Context, id userdomain.ID) (string, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return "", userrepo.ErrUserNotFound
}

var errMismatch = errors.New("mismatch")

// mockHasher prefixes instead of hashing so tests can read stored values.
type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed:" + password, nil
}

func (m *mockHasher) Compare(hash, password string) error {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	if hash != "hashed:"+password {
		return errMismatch
	}
	return nil
}
