package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gridbill/internal/config"
	"gridbill/internal/domain"
	"gridbill/internal/service"
	"gridbill/mocks"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "test-secret-at-least-32-chars-long",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
		Issuer:             "gridbill-test",
	}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func staffUser(t *testing.T, password string) *domain.StaffUser {
	t.Helper()
	return &domain.StaffUser{
		ID:           uuid.New(),
		Email:        "ops@gridbill.example",
		PasswordHash: hashPassword(t, password),
		FullName:     "Ops Admin",
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	staffRepo := new(mocks.MockStaffRepo)
	svc := service.NewAuthService(staffRepo, testJWTConfig())
	user := staffUser(t, "correct-horse-battery")

	staffRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.ExpiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	staffRepo := new(mocks.MockStaffRepo)
	svc := service.NewAuthService(staffRepo, testJWTConfig())
	user := staffUser(t, "correct-horse-battery")

	staffRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: "wrong-password-entirely",
	})
	assert.Nil(t, pair)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmailIndistinguishable(t *testing.T) {
	staffRepo := new(mocks.MockStaffRepo)
	svc := service.NewAuthService(staffRepo, testJWTConfig())

	staffRepo.On("GetByEmail", mock.Anything, "nobody@gridbill.example").
		Return(nil, domain.ErrNotFound)

	_, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "nobody@gridbill.example",
		Password: "whatever-password",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	staffRepo := new(mocks.MockStaffRepo)
	svc := service.NewAuthService(staffRepo, testJWTConfig())
	user := staffUser(t, "correct-horse-battery")
	user.IsActive = false

	staffRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	_, err := svc.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: "correct-horse-battery",
	})
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

func TestAuthService_RefreshToken(t *testing.T) {
	staffRepo := new(mocks.MockStaffRepo)
	svc := service.NewAuthService(staffRepo, testJWTConfig())
	user := staffUser(t, "correct-horse-battery")

	staffRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	staffRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	fresh, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)

	// An access token is not usable as a refresh token.
	_, err = svc.RefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_ValidateToken_Garbage(t *testing.T) {
	svc := service.NewAuthService(new(mocks.MockStaffRepo), testJWTConfig())

	_, err := svc.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}

func TestAuthService_CreateStaff(t *testing.T) {
	staffRepo := new(mocks.MockStaffRepo)
	svc := service.NewAuthService(staffRepo, testJWTConfig())

	staffRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.StaffUser")).Return(nil)

	user, err := svc.CreateStaff(context.Background(), service.CreateStaffInput{
		Email:    "  Reader@GridBill.Example ",
		Password: "meter-reader-pass",
		FullName: "Field Reader",
		Role:     domain.RoleFieldStaff,
	})
	require.NoError(t, err)
	assert.Equal(t, "reader@gridbill.example", user.Email)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "meter-reader-pass", user.PasswordHash)
	staffRepo.AssertExpectations(t)
}

func TestAuthService_CreateStaff_InvalidRole(t *testing.T) {
	staffRepo := new(mocks.MockStaffRepo)
	svc := service.NewAuthService(staffRepo, testJWTConfig())

	_, err := svc.CreateStaff(context.Background(), service.CreateStaffInput{
		Email:    "x@gridbill.example",
		Password: "password-123",
		FullName: "X",
		Role:     domain.StaffRole("superuser"),
	})
	assert.Error(t, err)
	staffRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
