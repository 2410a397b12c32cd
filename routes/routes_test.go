package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/karting-league/handlers"
	"github.com/Dosada05/karting-league/models"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "routes-secret"

// newTestRouter wires handlers without services. Requests in these tests are
// rejected before any handler reaches a service.
func newTestRouter() http.Handler {
	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		TieredLeague: handlers.NewTieredLeagueHandler(nil, nil),
		Assignment:   handlers.NewAssignmentHandler(nil),
		Shuffle:      handlers.NewShuffleHandler(nil),
		Notification: handlers.NewNotificationHandler(nil),
		WebSocket:    handlers.NewWebSocketHandler(nil, []string{"*"}),
	}, Options{JWTSecretKey: testSecret, AllowedOrigins: []string{"*"}})
	return router
}

func tokenFor(t *testing.T, role models.UserRole) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"role":    string(role),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestPublicEndpoints(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Karting League Tier API")
}

func TestAccessControl(t *testing.T) {
	router := newTestRouter()
	createBody := `{"name": 1}`

	tests := []struct {
		name   string
		method string
		path   string
		role   models.UserRole
		status int
	}{
		{"read without token", http.MethodGet, "/tiered-leagues/1", "", http.StatusUnauthorized},
		{"notifications without token", http.MethodGet, "/me/tier-notifications", "", http.StatusUnauthorized},
		{"websocket without token", http.MethodGet, "/ws/notifications", "", http.StatusUnauthorized},
		{"player creates league", http.MethodPost, "/tiered-leagues", models.RolePlayer, http.StatusForbidden},
		{"player shuffles", http.MethodPost, "/tiered-leagues/1/shuffle", models.RolePlayer, http.StatusForbidden},
		{"player moves driver", http.MethodPost, "/tiered-leagues/1/move-driver", models.RolePlayer, http.StatusForbidden},
		{"player reports race", http.MethodPost, "/competitions/1/race-completed", models.RolePlayer, http.StatusForbidden},
		{"organizer reaches handler", http.MethodPost, "/tiered-leagues", models.RoleOrganizer, http.StatusBadRequest},
		{"admin reaches handler", http.MethodPost, "/tiered-leagues", models.RoleAdmin, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(createBody))
			if tt.role != "" {
				req.Header.Set("Authorization", "Bearer "+tokenFor(t, tt.role))
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestEveryAPIRouteIsDocumented(t *testing.T) {
	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		TieredLeague: handlers.NewTieredLeagueHandler(nil, nil),
		Assignment:   handlers.NewAssignmentHandler(nil),
		Shuffle:      handlers.NewShuffleHandler(nil),
		Notification: handlers.NewNotificationHandler(nil),
		WebSocket:    handlers.NewWebSocketHandler(nil, []string{"*"}),
	}, Options{JWTSecretKey: testSecret, AllowedOrigins: []string{"*"}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))

	undocumented := map[string]bool{"/healthz": true, "/swagger/*": true, "/ws/notifications": true}
	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		route = strings.TrimSuffix(route, "/")
		if undocumented[route] {
			return nil
		}
		ops, ok := doc.Paths[route]
		if assert.True(t, ok, "path %s missing from swagger document", route) {
			assert.Contains(t, ops, strings.ToLower(method), "%s %s missing from swagger document", method, route)
		}
		return nil
	})
	require.NoError(t, err)
}
