package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"invogen/internal/config"
	"invogen/internal/domain"
	"invogen/mocks"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "invogen-test",
	}
}

func TestSignup_CreatesFreeTierAccount(t *testing.T) {
	accountRepo := new(mocks.MockAccountRepo)
	accountRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Account) bool {
		return a.Email == "new@example.com" && a.Tier == domain.TierFree && a.IsActive
	})).Return(nil)

	svc := NewAuthService(accountRepo, testJWTConfig())
	acct, pair, err := svc.Signup(context.Background(), SignupInput{
		Email: "New@Example.com ", Password: "password1", FullName: "New User",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", acct.Email)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// stored hash must verify against the original password
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte("password1")))
}

func TestLogin_And_TokenRoundTrip(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	require.NoError(t, err)
	acct := &domain.Account{
		ID: uuid.New(), Email: "user@example.com", PasswordHash: string(hash),
		Tier: domain.TierCredit, IsActive: true,
	}

	accountRepo := new(mocks.MockAccountRepo)
	accountRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(acct, nil)

	svc := NewAuthService(accountRepo, testJWTConfig())
	pair, err := svc.Login(context.Background(), LoginInput{Email: "user@example.com", Password: "password1"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, acct.ID, claims.AccountID)
	assert.Equal(t, domain.TierCredit, claims.Tier)

	// a refresh token is not an access token
	_, err = svc.ValidateToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	acct := &domain.Account{ID: uuid.New(), Email: "user@example.com", PasswordHash: string(hash), IsActive: true}

	accountRepo := new(mocks.MockAccountRepo)
	accountRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(acct, nil)

	svc := NewAuthService(accountRepo, testJWTConfig())
	_, err := svc.Login(context.Background(), LoginInput{Email: "user@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_UnknownEmailMapsToInvalidCredentials(t *testing.T) {
	accountRepo := new(mocks.MockAccountRepo)
	accountRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

	svc := NewAuthService(accountRepo, testJWTConfig())
	_, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "password1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_InactiveAccount(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	acct := &domain.Account{ID: uuid.New(), Email: "user@example.com", PasswordHash: string(hash), IsActive: false}

	accountRepo := new(mocks.MockAccountRepo)
	accountRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(acct, nil)

	svc := NewAuthService(accountRepo, testJWTConfig())
	_, err := svc.Login(context.Background(), LoginInput{Email: "user@example.com", Password: "password1"})
	assert.ErrorIs(t, err, domain.ErrAccountInactive)
}

func TestRefreshToken(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	acct := &domain.Account{ID: uuid.New(), Email: "user@example.com", PasswordHash: string(hash), Tier: domain.TierFree, IsActive: true}

	accountRepo := new(mocks.MockAccountRepo)
	accountRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(acct, nil)
	accountRepo.On("GetByID", mock.Anything, acct.ID).Return(acct, nil)

	svc := NewAuthService(accountRepo, testJWTConfig())
	pair, err := svc.Login(context.Background(), LoginInput{Email: "user@example.com", Password: "password1"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// access tokens cannot be used to refresh
	_, err = svc.RefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
