package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/teammatch/internal/config"
	"github.com/nikhil/teammatch/internal/logger"
	"github.com/nikhil/teammatch/pkg/utils"
)

const testSecret = "test-secret"

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestParticipantTokenClaims(t *testing.T) {
	token, err := NewParticipantToken(testSecret, 123456789, "alice")
	require.NoError(t, err)

	claims := parseClaims(t, token)
	assert.Equal(t, float64(123456789), claims["participant_id"])
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, "participant", claims["role"])
	assert.NotZero(t, claims["exp"])
}

func TestAdminTokenClaims(t *testing.T) {
	token, err := NewAdminToken(testSecret, "operator")
	require.NoError(t, err)

	claims := parseClaims(t, token)
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, "operator", claims["username"])
}

func loginService(t *testing.T, password string) *Service {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	cfg := &config.Config{
		JWTSecret:         testSecret,
		AdminUsername:     "operator",
		AdminPasswordHash: hash,
	}
	return NewService(cfg, logger.NewLogger("auth-test"))
}

func postLogin(svc *Service, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(raw))
	rr := httptest.NewRecorder()
	svc.HandleLogin(rr, req)
	return rr
}

func TestHandleLoginSuccess(t *testing.T) {
	svc := loginService(t, "hunter2")

	rr := postLogin(svc, map[string]string{"username": "operator", "password": "hunter2"})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	claims := parseClaims(t, resp["token"])
	assert.Equal(t, "admin", claims["role"])
}

func TestHandleLoginWrongPassword(t *testing.T) {
	svc := loginService(t, "hunter2")

	rr := postLogin(svc, map[string]string{"username": "operator", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandleLoginNotConfigured(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	svc := NewService(cfg, logger.NewLogger("auth-test"))

	rr := postLogin(svc, map[string]string{"username": "operator", "password": "hunter2"})
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
