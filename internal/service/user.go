package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/sakif/alive-sleep/internal/apperror"
	"github.com/sakif/alive-sleep/internal/model"
	"github.com/sakif/alive-sleep/internal/repository"
)

// Hasher turns an external subject id into its storage key.
// *identity.Hasher implements it.
type Hasher interface {
	Hash(identifier string) (string, error)
}

// UserService is the user directory: it resolves identity-provider subjects
// to local user records.
type UserService struct {
	users  repository.UserRepository
	hasher Hasher
	now    Clock
	logger *zap.Logger
}

func NewUserService(users repository.UserRepository, hasher Hasher, now Clock, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		now:    clockOrDefault(now),
		logger: logger,
	}
}

// GetOrCreateUser resolves externalID, creating the user on first sight and
// stamping lastLoginAt on every call. The repository does this in one atomic
// upsert, so concurrent first logins still produce a single row.
func (s *UserService) GetOrCreateUser(ctx context.Context, externalID string) (*model.User, error) {
	hash, err := s.hash(externalID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetOrCreate(ctx, hash, s.now())
	if err != nil {
		return nil, err
	}

	if user.IsFirstLogin() {
		s.logger.Info("user created", zap.String("user_id", user.ID))
	}
	return user, nil
}

// FindUserByAuthID looks the user up without touching lastLoginAt.
// It returns (nil, nil) when no user exists for externalID.
func (s *UserService) FindUserByAuthID(ctx context.Context, externalID string) (*model.User, error) {
	hash, err := s.hash(externalID)
	if err != nil {
		return nil, err
	}
	return s.users.FindByHash(ctx, hash)
}

// GetByID returns (nil, nil) for an unknown id.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.InvalidArgument("userId", "user id is required")
	}
	return s.users.GetByID(ctx, id)
}

func (s *UserService) ListIDs(ctx context.Context) ([]string, error) {
	return s.users.ListIDs(ctx)
}

func (s *UserService) hash(externalID string) (string, error) {
	if externalID == "" {
		return "", apperror.InvalidArgument("externalId", "external id is required")
	}
	return s.hasher.Hash(externalID)
}
