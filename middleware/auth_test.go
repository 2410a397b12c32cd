package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/karting-league/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(userID int, role models.UserRole) jwt.MapClaims {
	return jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
}

func echoProfile(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserIDFromContext(r.Context())
		require.NoError(t, err)
		role, err := GetUserRoleFromContext(r.Context())
		require.NoError(t, err)
		w.Header().Set("X-Profile", strconv.Itoa(id))
		w.Header().Set("X-Role", string(role))
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	handler := Authenticate(testSecret)(echoProfile(t))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"no token", func(r *http.Request) {}, http.StatusUnauthorized},
		{"valid header", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(7, models.RolePlayer), testSecret))
		}, http.StatusNoContent},
		{"valid query token", func(r *http.Request) {
			q := r.URL.Query()
			q.Set("token", signToken(t, validClaims(7, models.RolePlayer), testSecret))
			r.URL.RawQuery = q.Encode()
		}, http.StatusNoContent},
		{"wrong secret", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(7, models.RolePlayer), "other"))
		}, http.StatusUnauthorized},
		{"expired", func(r *http.Request) {
			claims := validClaims(7, models.RolePlayer)
			claims["exp"] = time.Now().Add(-time.Minute).Unix()
			r.Header.Set("Authorization", "Bearer "+signToken(t, claims, testSecret))
		}, http.StatusUnauthorized},
		{"missing user id", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"role": "player"}, testSecret))
		}, http.StatusUnauthorized},
		{"malformed header", func(r *http.Request) {
			r.Header.Set("Authorization", "Token abc")
		}, http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusNoContent {
				assert.Equal(t, "7", rec.Header().Get("X-Profile"))
				assert.Equal(t, "player", rec.Header().Get("X-Role"))
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	handler := Authenticate(testSecret)(Authorize(models.RoleAdmin, models.RoleOrganizer)(echoProfile(t)))

	for role, status := range map[models.UserRole]int{
		models.RoleAdmin:     http.StatusNoContent,
		models.RoleOrganizer: http.StatusNoContent,
		models.RolePlayer:    http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(3, role), testSecret))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, status, rec.Code, "role %s", role)
	}
}

func TestGetUserIDFromContext_StringClaim(t *testing.T) {
	ctx := WithClaims(httptest.NewRequest(http.MethodGet, "/", nil).Context(), jwt.MapClaims{"user_id": "42"})
	id, err := GetUserIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	ctx = WithClaims(ctx, jwt.MapClaims{"user_id": -1.0})
	_, err = GetUserIDFromContext(ctx)
	assert.Error(t, err)

	_, err = GetUserIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.Error(t, err)
}
