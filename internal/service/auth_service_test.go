package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rafaeltorres/user-registry/internal/config"
	"github.com/rafaeltorres/user-registry/internal/domain"
	"github.com/rafaeltorres/user-registry/internal/repository/sqlite"
	"github.com/rafaeltorres/user-registry/internal/service"
	"github.com/rafaeltorres/user-registry/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*service.AuthService, *testutil.TestDB, *config.Config) {
	t.Helper()
	testDB := testutil.NewTestDB(t)
	repos := sqlite.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	return service.NewAuthService(repos.User, cfg), testDB, cfg
}

func parseClaims(t *testing.T, cfg *config.Config, tokenString string) jwt.MapClaims {
	t.Helper()
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

// signToken builds an access token directly, bypassing the service, so tests
// can control expiry and signing key.
func signToken(t *testing.T, cfg *config.Config, secret string, userID uuid.UUID, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": "crafted@example.com",
		"name":  "Crafted",
		"jti":   uuid.New().String(),
		"iss":   cfg.JWTIssuer,
		"aud":   cfg.JWTAudience,
		"iat":   time.Now().Add(-2 * time.Hour).Unix(),
		"exp":   expiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthService_Login(t *testing.T) {
	authService, testDB, cfg := newAuthService(t)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithEmail("login@example.com").
		WithPassword("correctpassword").
		Build(t, testDB.DB)
	testutil.NewUserBuilder().
		WithEmail("nopassword@example.com").
		Build(t, testDB.DB)

	t.Run("successful login", func(t *testing.T) {
		before := time.Now()
		result, err := authService.Login(ctx, service.LoginInput{
			Email:    "login@example.com",
			Password: rawPassword,
		})
		require.NoError(t, err)

		claims := parseClaims(t, cfg, result.AccessToken)
		assert.Equal(t, user.ID.String(), claims["sub"])
		assert.Equal(t, user.Email, claims["email"])
		assert.Equal(t, user.Name, claims["name"])
		assert.NotEmpty(t, claims["jti"])
		assert.Equal(t, cfg.JWTIssuer, claims["iss"])

		assert.WithinDuration(t, before.Add(cfg.AccessTokenTTL()), result.ExpiresAt, 2*time.Second)

		// Refresh token is persisted verbatim with a 7-day expiry
		var stored domain.User
		require.NoError(t, testDB.DB.First(&stored, "id = ?", user.ID).Error)
		assert.Equal(t, result.RefreshToken, stored.RefreshToken)
		require.NotNil(t, stored.RefreshTokenExpiresAt)
		assert.WithinDuration(t, before.Add(cfg.RefreshTokenTTL()), *stored.RefreshTokenExpiresAt, 2*time.Second)
	})

	t.Run("login rotates the refresh token", func(t *testing.T) {
		first, err := authService.Login(ctx, service.LoginInput{Email: "login@example.com", Password: rawPassword})
		require.NoError(t, err)
		second, err := authService.Login(ctx, service.LoginInput{Email: "login@example.com", Password: rawPassword})
		require.NoError(t, err)
		assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	})

	t.Run("failures collapse to invalid credentials", func(t *testing.T) {
		cases := []service.LoginInput{
			{Email: "login@example.com", Password: "wrongpassword"},
			{Email: "missing@example.com", Password: "whatever"},
			{Email: "nopassword@example.com", Password: "whatever"},
		}
		for _, input := range cases {
			_, err := authService.Login(ctx, input)
			assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		}
	})
}

func TestAuthService_Refresh(t *testing.T) {
	authService, testDB, cfg := newAuthService(t)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithEmail("refresh@example.com").
		WithPassword("correctpassword").
		Build(t, testDB.DB)

	login := func(t *testing.T) *service.AuthResult {
		result, err := authService.Login(ctx, service.LoginInput{
			Email:    "refresh@example.com",
			Password: rawPassword,
		})
		require.NoError(t, err)
		return result
	}

	t.Run("expired access token with valid refresh token renews", func(t *testing.T) {
		session := login(t)
		expired := signToken(t, cfg, cfg.JWTSecret, user.ID, time.Now().Add(-time.Hour))

		result, err := authService.Refresh(ctx, expired, session.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEqual(t, session.RefreshToken, result.RefreshToken)

		claims := parseClaims(t, cfg, result.AccessToken)
		assert.Equal(t, user.ID.String(), claims["sub"])

		// Rotation: the old refresh token is permanently dead
		_, err = authService.Refresh(ctx, expired, session.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

		// But the new one works
		_, err = authService.Refresh(ctx, expired, result.RefreshToken)
		assert.NoError(t, err)
	})

	t.Run("tampered signature is rejected", func(t *testing.T) {
		session := login(t)
		forged := signToken(t, cfg, "attacker-controlled-secret", user.ID, time.Now().Add(-time.Hour))

		_, err := authService.Refresh(ctx, forged, session.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("wrong issuer is rejected even unexpired", func(t *testing.T) {
		session := login(t)
		otherCfg := *cfg
		otherCfg.JWTIssuer = "someone-else"
		foreign := signToken(t, &otherCfg, cfg.JWTSecret, user.ID, time.Now().Add(time.Hour))

		_, err := authService.Refresh(ctx, foreign, session.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("mismatched refresh token is rejected", func(t *testing.T) {
		login(t)
		expired := signToken(t, cfg, cfg.JWTSecret, user.ID, time.Now().Add(-time.Hour))

		_, err := authService.Refresh(ctx, expired, "not-the-stored-token")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("expired refresh token is rejected", func(t *testing.T) {
		expiredUser, _ := testutil.NewUserBuilder().
			WithEmail("stale@example.com").
			WithPassword("correctpassword").
			WithRefreshToken("stale-refresh", time.Now().Add(-time.Minute)).
			Build(t, testDB.DB)

		access := signToken(t, cfg, cfg.JWTSecret, expiredUser.ID, time.Now().Add(-time.Hour))
		_, err := authService.Refresh(ctx, access, "stale-refresh")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown subject is rejected", func(t *testing.T) {
		session := login(t)
		access := signToken(t, cfg, cfg.JWTSecret, uuid.New(), time.Now().Add(-time.Hour))

		_, err := authService.Refresh(ctx, access, session.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService, testDB, cfg := newAuthService(t)
	ctx := context.Background()

	_, rawPassword := testutil.NewUserBuilder().
		WithEmail("validate@example.com").
		WithPassword("correctpassword").
		Build(t, testDB.DB)

	result, err := authService.Login(ctx, service.LoginInput{
		Email:    "validate@example.com",
		Password: rawPassword,
	})
	require.NoError(t, err)

	claims, err := authService.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	sub, err := claims.GetSubject()
	require.NoError(t, err)
	assert.NotEmpty(t, sub)

	// Full validation does not accept expired tokens
	expired := signToken(t, cfg, cfg.JWTSecret, uuid.New(), time.Now().Add(-time.Hour))
	_, err = authService.ValidateToken(expired)
	assert.Error(t, err)
}
