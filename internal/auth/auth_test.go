package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/repository/memory"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	token, exp, err := tm.GenerateToken("user-1", domain.RoleAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), exp, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, exp, claims.ExpiresAtTime(), time.Second)
}

func TestTokenRejectsWrongSecretAndExpiry(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	token, _, err := tm.GenerateToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	_, err = NewTokenManager("other", 1).ParseToken(token)
	assert.Error(t, err)

	tm.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "hunter22"))
	assert.Error(t, ComparePassword(hash, "hunter23"))
}

func TestMemoryRevocationStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRevocationStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Revoke(ctx, "jti-1", now.Add(time.Minute)))
	require.NoError(t, store.Revoke(ctx, "jti-old", now.Add(-time.Minute)))

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "jti-old")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func newProtectedApp(t *testing.T, roles ...domain.Role) (*fiber.App, *TokenManager, *MemoryRevocationStore, map[domain.Role]string) {
	t.Helper()
	store := memory.NewStore()
	users := store.Repositories().Users
	ids := map[domain.Role]string{}
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleUser} {
		u := &domain.User{Username: string(role), Email: string(role) + "@example.com", Role: role}
		require.NoError(t, users.Create(context.Background(), u))
		ids[role] = u.ID
	}

	tm := NewTokenManager("secret", 10)
	revoked := NewMemoryRevocationStore()
	mw := NewAuthMiddleware(tm, users, revoked)

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
	}})
	app.Get("/private", mw.Handle, RequireRole(roles...), func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		require.True(t, ok)
		return c.SendString(principal.Actor().UserID)
	})
	return app, tm, revoked, ids
}

func TestAuthMiddleware(t *testing.T) {
	app, tm, revoked, ids := newProtectedApp(t, domain.RoleAdmin)

	adminToken, exp, err := tm.GenerateToken(ids[domain.RoleAdmin], domain.RoleAdmin)
	require.NoError(t, err)
	userToken, _, err := tm.GenerateToken(ids[domain.RoleUser], domain.RoleUser)
	require.NoError(t, err)
	ghostToken, _, err := tm.GenerateToken("ghost", domain.RoleAdmin)
	require.NoError(t, err)

	do := func(header string) int {
		req := httptest.NewRequest(fiber.MethodGet, "/private", nil)
		if header != "" {
			req.Header.Set(fiber.HeaderAuthorization, header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusUnauthorized, do(""))
	assert.Equal(t, fiber.StatusUnauthorized, do("Basic abc"))
	assert.Equal(t, fiber.StatusUnauthorized, do("Bearer not-a-token"))
	assert.Equal(t, fiber.StatusUnauthorized, do("Bearer "+ghostToken))
	assert.Equal(t, fiber.StatusForbidden, do("Bearer "+userToken))
	assert.Equal(t, fiber.StatusOK, do("Bearer "+adminToken))

	claims, err := tm.ParseToken(adminToken)
	require.NoError(t, err)
	require.NoError(t, revoked.Revoke(context.Background(), claims.ID, exp))
	assert.Equal(t, fiber.StatusUnauthorized, do("Bearer "+adminToken))
}
