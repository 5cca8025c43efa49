package service

import (
	"context"
	"errors"

	commoncrypto "github.com/AlibekovAA/album-catalog/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/album-catalog/internal/common/errors"
	"github.com/AlibekovAA/album-catalog/internal/common/logger"
	userdomain "github.com/AlibekovAA/album-catalog/internal/user/domain"
	userrepo "github.com/AlibekovAA/album-catalog/internal/user/repository"
)

type CredentialService struct {
	repo   userrepo.Repository
	hasher commoncrypto.PasswordHasher
	log    *logger.Logger
}

func NewCredentialService(repo userrepo.Repository, hasher commoncrypto.PasswordHasher, log *logger.Logger) *CredentialService {
	return &CredentialService{
		repo:   repo,
		hasher: hasher,
		log:    log,
	}
}

type RegisterInput struct {
	Username string
	Password string
}

// UpdateInput with an empty Password keeps the stored hash.
type UpdateInput struct {
	Username string
	Password string
}

// Register relies on the UNIQUE constraint on users.username; there is no
// lookup before the insert.
func (s *CredentialService) Register(ctx context.Context, input RegisterInput) (userdomain.User, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if err := validateUsername(input.Username); err != nil {
		return userdomain.User{}, s.validationFailed(ctx, "register", input.Username, err)
	}
	if err := validatePassword(input.Password); err != nil {
		return userdomain.User{}, s.validationFailed(ctx, "register", input.Username, err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return userdomain.User{}, commonerrors.ErrInternalError.WithCause(err)
	}

	user, err := s.repo.Create(ctx, input.Username, hash)
	if err != nil {
		if errors.Is(err, userrepo.ErrUsernameAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_username_exists",
			}).Warn("register failed: already exists")
			incrementUserOperation("register", "conflict")
			return userdomain.User{}, commonerrors.ErrUsernameTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		incrementUserOperation("register", "error")
		return userdomain.User{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  int64(user.ID),
		"action":   "register_success",
	}).Info("register success")
	incrementUsersRegistered()
	incrementUserOperation("register", "success")

	return user, nil
}

// Authenticate reports ok=false for both an unknown username and a wrong
// password; err is only set when storage fails.
func (s *CredentialService) Authenticate(ctx context.Context, username, password string) (userdomain.User, bool, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"action":   "login_attempt",
	}).Info("login attempt")

	if username == "" || password == "" {
		incrementLoginAttempt("invalid")
		return userdomain.User{}, false, nil
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"username": username,
				"action":   "login_user_not_found",
			}).Warn("login failed: not found")
			incrementLoginAttempt("invalid")
			return userdomain.User{}, false, nil
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		incrementLoginAttempt("error")
		return userdomain.User{}, false, commonerrors.ErrDatabaseError.WithCause(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "login_invalid_password",
		}).Warn("login failed: invalid password")
		incrementLoginAttempt("invalid")
		return userdomain.User{}, false, nil
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  int64(user.ID),
		"action":   "login_success",
	}).Info("login success")
	incrementLoginAttempt("success")

	return user, true, nil
}

func (s *CredentialService) Get(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return userdomain.User{}, s.mapRepoError(ctx, err, id, "get")
	}
	return user, nil
}

func (s *CredentialService) List(ctx context.Context) ([]userdomain.Summary, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "user_list_failed",
		}).Errorf("list users failed: %v", err)
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return users, nil
}

func (s *CredentialService) Update(ctx context.Context, id userdomain.ID, input UpdateInput) (userdomain.User, error) {
	if err := validateUsername(input.Username); err != nil {
		return userdomain.User{}, s.validationFailed(ctx, "user_update", input.Username, err)
	}

	var (
		user userdomain.User
		err  error
	)
	if input.Password == "" {
		user, err = s.repo.UpdateUsername(ctx, id, input.Username)
	} else {
		if verr := validatePassword(input.Password); verr != nil {
			return userdomain.User{}, s.validationFailed(ctx, "user_update", input.Username, verr)
		}
		hash, herr := s.hasher.Hash(input.Password)
		if herr != nil {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": int64(id),
				"action":  "user_update_hash_failed",
			}).Errorf("user update failed: password hash error: %v", herr)
			return userdomain.User{}, commonerrors.ErrInternalError.WithCause(herr)
		}
		user, err = s.repo.UpdateCredentials(ctx, id, input.Username, hash)
	}

	if err != nil {
		if errors.Is(err, userrepo.ErrUsernameAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"user_id":  int64(id),
				"username": input.Username,
				"action":   "user_update_username_exists",
			}).Warn("user update failed: username taken")
			incrementUserOperation("update", "conflict")
			return userdomain.User{}, commonerrors.ErrUsernameTaken
		}
		incrementUserOperation("update", "error")
		return userdomain.User{}, s.mapRepoError(ctx, err, id, "update")
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id":          int64(id),
		"password_changed": input.Password != "",
		"action":           "user_update_success",
	}).Info("user updated")
	incrementUserOperation("update", "success")

	return user, nil
}

// Delete returns the removed username for the confirmation message.
func (s *CredentialService) Delete(ctx context.Context, id userdomain.ID) (string, error) {
	username, err := s.repo.Delete(ctx, id)
	if err != nil {
		incrementUserOperation("delete", "error")
		return "", s.mapRepoError(ctx, err, id, "delete")
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id":  int64(id),
		"username": username,
		"action":   "user_delete_success",
	}).Info("user deleted")
	incrementUserOperation("delete", "success")

	return username, nil
}

func (s *CredentialService) validationFailed(ctx context.Context, op, username string, err error) error {
	s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"action":   op + "_validation_failed",
	}).Warnf("%s validation failed: %v", op, err)
	return err
}

func (s *CredentialService) mapRepoError(ctx context.Context, err error, id userdomain.ID, op string) error {
	if errors.Is(err, userrepo.ErrUserNotFound) {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": int64(id),
			"action":  "user_" + op + "_not_found",
		}).Debug("user not found")
		return commonerrors.ErrUserNotFound
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": int64(id),
		"action":  "user_" + op + "_failed",
	}).Errorf("user %s failed: %v", op, err)
	return commonerrors.ErrDatabaseError.WithCause(err)
}
