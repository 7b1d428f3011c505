package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"moviesmama/internal/domain"
	"moviesmama/internal/repository"
)

// TokenIssuer creates bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// AuthResult is returned by operations that authenticate a user.
type AuthResult struct {
	User  *domain.User
	Token string
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, name *string, settings map[string]bool) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

type userService struct {
	users  repository.UserRepository
	hasher domain.PasswordHasher
	tokens TokenIssuer
	logger logrus.FieldLogger
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(users repository.UserRepository, hasher domain.PasswordHasher, tokens TokenIssuer, logger logrus.FieldLogger) UserService {
	return &userService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

type registerInput struct {
	Name     string `validate:"required,max=100"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func (s *userService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	in := registerInput{
		Name:     strings.TrimSpace(name),
		Email:    domain.NormalizeEmail(email),
		Password: password,
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrUserAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	user := &domain.User{
		Name:                 in.Name,
		Email:                in.Email,
		NotificationSettings: map[string]bool{},
	}
	if err := user.SetPassword(s.hasher, in.Password); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{User: user.Sanitized(), Token: token}, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.burnVerify(password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := user.CheckPassword(s.hasher, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	loginAt := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, loginAt); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("record last login")
	} else {
		user.LastLogin = &loginAt
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{User: user.Sanitized(), Token: token}, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

type profileInput struct {
	Name string `validate:"required,max=100"`
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, name *string, settings map[string]bool) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name != nil {
		in := profileInput{Name: strings.TrimSpace(*name)}
		if err := validateStruct(in); err != nil {
			return nil, err
		}
		user.Name = in.Name
	}

	if user.NotificationSettings == nil {
		user.NotificationSettings = map[string]bool{}
	}
	for key, enabled := range settings {
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, domain.NewValidationError("notification setting name is required")
		}
		user.NotificationSettings[key] = enabled
	}

	if err := s.users.UpdateProfile(ctx, user.ID, user.Name, user.NotificationSettings); err != nil {
		return nil, err
	}
	user.UpdatedAt = s.now().UTC()
	return user.Sanitized(), nil
}

func (s *userService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := user.CheckPassword(s.hasher, currentPassword)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidCredentials
	}

	if err := user.SetPassword(s.hasher, newPassword); err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, user.PasswordHash)
}

// burnVerify spends one hash comparison so unknown emails cost as much as wrong passwords.
func (s *userService) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("moviesmama-dummy-password")
		if err != nil {
			s.logger.WithError(err).Warn("prepare dummy password hash")
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash == "" {
		return
	}
	_, _ = s.hasher.Verify(password, s.dummyHash)
}
