package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rafaeltorres/user-registry/internal/config"
	"github.com/rafaeltorres/user-registry/internal/domain"
	"github.com/rafaeltorres/user-registry/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Login verifies the credentials and issues a fresh token pair. Every failure
// mode (unknown email, no password set, wrong password) collapses into
// domain.ErrInvalidCredentials so the wire response cannot be used to
// enumerate accounts.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	accessToken, expiresAt, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SetRefreshToken(ctx, user.ID, refreshToken, time.Now().Add(s.cfg.RefreshTokenTTL())); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// Refresh exchanges an expired access token plus the matching refresh token
// for a new pair. The access token's signature, issuer and audience are still
// verified; only the expiry check is skipped. The refresh token rotates on
// every use, the old value becomes permanently invalid.
func (s *AuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*AuthResult, error) {
	claims, err := s.parseExpiredToken(accessToken)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, domain.ErrInvalidCredentials
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return nil, domain.ErrInvalidCredentials
	}
	if user.RefreshTokenExpiresAt == nil || !user.RefreshTokenExpiresAt.After(time.Now()) {
		return nil, domain.ErrInvalidCredentials
	}

	newRefreshToken, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	newAccessToken, expiresAt, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	err = s.userRepo.RotateRefreshToken(ctx, user.ID, refreshToken, newRefreshToken, time.Now().Add(s.cfg.RefreshTokenTTL()))
	if err != nil {
		if errors.Is(err, domain.ErrRefreshTokenMismatch) {
			// A concurrent refresh rotated the token first; fail closed.
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// ValidateToken fully validates an access token (signature, issuer, audience
// and expiry) and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.JWTIssuer),
		jwt.WithAudience(s.cfg.JWTAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// parseExpiredToken validates everything except the expiry claim; used only
// by the refresh flow.
func (s *AuthService) parseExpiredToken(tokenString string) (jwt.MapClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.Parse(tokenString, s.keyFunc)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	// WithoutClaimsValidation skips everything, so issuer and audience are
	// checked by hand here.
	iss, err := claims.GetIssuer()
	if err != nil || iss != s.cfg.JWTIssuer {
		return nil, errors.New("invalid issuer")
	}
	aud, err := claims.GetAudience()
	if err != nil {
		return nil, errors.New("invalid audience")
	}
	found := false
	for _, a := range aud {
		if a == s.cfg.JWTAudience {
			found = true
			break
		}
	}
	if !found {
		return nil, errors.New("invalid audience")
	}

	return claims, nil
}

func (s *AuthService) generateAccessToken(user *domain.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTokenTTL())

	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"name":  user.Name,
		"jti":   uuid.New().String(),
		"iss":   s.cfg.JWTIssuer,
		"aud":   s.cfg.JWTAudience,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *AuthService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return []byte(s.cfg.JWTSecret), nil
}

// generateRefreshToken returns an opaque token: 32 random bytes, base64.
func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
