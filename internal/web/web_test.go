package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"officehub/auth"
	"officehub/internal/engine"
	"officehub/internal/parking"
	"officehub/internal/rooms"
	"officehub/internal/store"
)

func newTestServer(t *testing.T) *WebServer {
	t.Helper()
	return newTestServerWithRedis(t, nil)
}

func newTestServerWithRedis(t *testing.T, redisClient *redis.Client) *WebServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemory(10)
	eng := engine.NewEngine(st, nil)
	authModule := auth.NewAuthModule(st, redisClient, eng, "test-secret")
	parkingService := parking.NewService(st, eng)
	roomService := rooms.NewService(st)

	return NewWebServer(st, authModule, eng, parkingService, roomService)
}

func doJSON(t *testing.T, ws *WebServer, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ws.Router().ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, ws *WebServer, username, password string) string {
	t.Helper()
	rec := doJSON(t, ws, http.MethodPost, "/auth/login", "", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func TestHealth(t *testing.T) {
	ws := newTestServer(t)
	rec := doJSON(t, ws, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginAndAuthRequired(t *testing.T) {
	ws := newTestServer(t)

	rec := doJSON(t, ws, http.MethodGet, "/automation/rules", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, ws, http.MethodPost, "/auth/login", "", gin.H{
		"username": "admin1", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := login(t, ws, "admin1", "adminpass1")
	rec = doJSON(t, ws, http.MethodGet, "/automation/rules", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRuleEndpointsRequireAdmin(t *testing.T) {
	ws := newTestServer(t)
	userToken := login(t, ws, "user1", "userpass1")
	adminToken := login(t, ws, "admin1", "adminpass1")

	body := gin.H{
		"trigger": gin.H{"type": "motion", "condition": gin.H{"area": "lobby"}},
		"action":  gin.H{"type": "lights_on"},
	}

	rec := doJSON(t, ws, http.MethodPost, "/automation/rules", userToken, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, ws, http.MethodPost, "/automation/rules", adminToken, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var rule struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rule))
	assert.Equal(t, "Custom rule", rule.Description)

	// Malformed rule is a 400.
	rec = doJSON(t, ws, http.MethodPost, "/automation/rules", adminToken, gin.H{
		"trigger": gin.H{"type": ""},
		"action":  gin.H{"type": "lights_on"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParkingFlowOverHTTP(t *testing.T) {
	ws := newTestServer(t)
	token := login(t, ws, "user1", "userpass1")

	rec := doJSON(t, ws, http.MethodPost, "/parking/reserve", token, gin.H{"spot_id": 3})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Same spot again conflicts.
	rec = doJSON(t, ws, http.MethodPost, "/parking/reserve", token, gin.H{"spot_id": 3})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, ws, http.MethodPost, "/parking/checkin", token, gin.H{"spot_id": 3})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Unknown spot is a 404.
	rec = doJSON(t, ws, http.MethodPost, "/parking/reserve", token, gin.H{"spot_id": 99})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Violations endpoint is admin-only.
	rec = doJSON(t, ws, http.MethodGet, "/parking/violations", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRoomBookingOverHTTP(t *testing.T) {
	ws := newTestServer(t)
	token := login(t, ws, "user1", "userpass1")

	rec := doJSON(t, ws, http.MethodPost, "/rooms/book", token, gin.H{
		"room_id":          1,
		"start_time":       "2026-09-01T10:00:00Z",
		"duration_minutes": 60,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, ws, http.MethodPost, "/rooms/book", token, gin.H{
		"room_id":          1,
		"start_time":       "2026-09-01T10:30:00Z",
		"duration_minutes": 60,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, ws, http.MethodPost, "/rooms/book", token, gin.H{
		"room_id":          1,
		"start_time":       "not-a-time",
		"duration_minutes": 60,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, ws, http.MethodGet, "/rooms", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClimateValidation(t *testing.T) {
	ws := newTestServer(t)
	token := login(t, ws, "admin1", "adminpass1")

	rec := doJSON(t, ws, http.MethodPost, "/climate/temperature", token, gin.H{"temperature": 35})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, ws, http.MethodPost, "/climate/temperature", token, gin.H{"temperature": 22})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, ws, http.MethodPost, "/climate/hvac", token, gin.H{"mode": "turbo"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, ws, http.MethodPost, "/climate/hvac", token, gin.H{"mode": "cool"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, ws, http.MethodGet, "/climate/status", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var state struct {
		Temperature int    `json:"temperature"`
		HVACMode    string `json:"hvac_mode"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, 22, state.Temperature)
	assert.Equal(t, "cool", state.HVACMode)
}

func TestLoginTriggersAutomation(t *testing.T) {
	ws := newTestServer(t)
	adminToken := login(t, ws, "admin1", "adminpass1")

	rec := doJSON(t, ws, http.MethodPost, "/automation/rules", adminToken, gin.H{
		"trigger":     gin.H{"type": "user_login", "condition": gin.H{"username": "user1"}},
		"action":      gin.H{"type": "lights_on"},
		"description": "User1 arrives",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	login(t, ws, "user1", "userpass1")

	rec = doJSON(t, ws, http.MethodGet, "/climate/status", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var state struct {
		LightsOn bool `json:"lights_on"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.True(t, state.LightsOn)
}

func TestSessionTokenLifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	ws := newTestServerWithRedis(t, redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	rec := doJSON(t, ws, http.MethodPost, "/auth/login/session", "", gin.H{
		"username": "user1", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, ws, http.MethodPost, "/auth/login/session", "", gin.H{
		"username": "user1", "password": "userpass1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	// Opaque session tokens pass the same bearer middleware as JWTs.
	rec = doJSON(t, ws, http.MethodGet, "/parking/spots", resp.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, ws, http.MethodPost, "/auth/logout", resp.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, ws, http.MethodGet, "/parking/spots", resp.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionLoginWithoutRedis(t *testing.T) {
	ws := newTestServer(t)
	rec := doJSON(t, ws, http.MethodPost, "/auth/login/session", "", gin.H{
		"username": "user1", "password": "userpass1",
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
