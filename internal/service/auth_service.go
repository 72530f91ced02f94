package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"invogen/internal/config"
	"invogen/internal/domain"
	"invogen/internal/port"
)

const bcryptCost = 12

// Claims represents the JWT claims carried by access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	AccountID uuid.UUID   `json:"account_id"`
	Email     string      `json:"email"`
	Tier      domain.Tier `json:"tier"`
}

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SignupInput is the DTO for account registration.
type SignupInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
}

// LoginInput is the DTO for login requests.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// RefreshInput is the DTO for token refresh requests.
type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthService defines the authentication contract.
type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*domain.Account, *TokenPair, error)
	Login(ctx context.Context, input LoginInput) (*TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	accountRepo port.AccountRepository
	cfg         config.JWTConfig
}

// NewAuthService creates a new AuthService implementation.
func NewAuthService(accountRepo port.AccountRepository, cfg config.JWTConfig) AuthService {
	return &authService{accountRepo: accountRepo, cfg: cfg}
}

func (s *authService) Signup(ctx context.Context, input SignupInput) (*domain.Account, *TokenPair, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("auth.Signup hash: %w", err)
	}

	acct := &domain.Account{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(input.FullName),
		Tier:         domain.TierFree,
		IsActive:     true,
	}
	if err := s.accountRepo.Create(ctx, acct); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, nil, domain.ErrDuplicateEmail
		}
		return nil, nil, fmt.Errorf("auth.Signup: %w", err)
	}

	pair, err := s.generateTokenPair(acct)
	if err != nil {
		return nil, nil, err
	}
	return acct, pair, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	acct, err := s.accountRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth.Login: %w", err)
	}
	if !acct.IsActive {
		return nil, domain.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.generateTokenPair(acct)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.validateTokenString(refreshToken, "refresh")
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	acct, err := s.accountRepo.GetByID(ctx, claims.AccountID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !acct.IsActive {
		return nil, domain.ErrAccountInactive
	}

	return s.generateTokenPair(acct)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	return s.validateTokenString(tokenString, "access")
}

func (s *authService) generateTokenPair(acct *domain.Account) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.cfg.AccessTokenExpiry)
	refreshExpiry := now.Add(s.cfg.RefreshTokenExpiry)

	sign := func(audience string, expiry time.Time) (string, error) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   acct.ID.String(),
				Issuer:    s.cfg.Issuer,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiry),
				ID:        uuid.New().String(),
				Audience:  jwt.ClaimStrings{audience},
			},
			AccountID: acct.ID,
			Email:     acct.Email,
			Tier:      acct.Tier,
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		return token.SignedString([]byte(s.cfg.Secret))
	}

	accessToken, err := sign("access", accessExpiry)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	refreshToken, err := sign("refresh", refreshExpiry)
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExpiry,
	}, nil
}

func (s *authService) validateTokenString(tokenString, audience string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	aud, _ := claims.GetAudience()
	for _, a := range aud {
		if a == audience {
			return claims, nil
		}
	}
	return nil, domain.ErrUnauthorized
}
