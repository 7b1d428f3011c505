package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"moviesmama/internal/domain"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Init(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id, name string, settings map[string]bool) error {
	return m.Called(ctx, id, name, settings).Error(0)
}

func (m *mockUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockUserRepository) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockTokenIssuer struct {
	mock.Mock
}

func (m *mockTokenIssuer) Issue(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

// countingHasher prefixes passwords instead of hashing them, and counts calls.
type countingHasher struct {
	hashes   int
	verifies int
	verifyFn func(password, hash string) (bool, error)
}

func (h *countingHasher) Hash(password string) (string, error) {
	h.hashes++
	return "hashed:" + password, nil
}

func (h *countingHasher) Verify(password, hash string) (bool, error) {
	h.verifies++
	if h.verifyFn != nil {
		return h.verifyFn(password, hash)
	}
	return hash == "hashed:"+password, nil
}
