package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/lenskyphoto/studio-backend/internal/auth"
	"github.com/lenskyphoto/studio-backend/internal/database/testutil"
	"github.com/lenskyphoto/studio-backend/internal/policy"
	"github.com/lenskyphoto/studio-backend/internal/services"
)

func newAccountHandler(t *testing.T) *AccountHandler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)
	accounts, err := services.NewAccountService(db, policy.New(policy.UnscopedOwnerOnly))
	require.NoError(t, err)

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "handler-test-secret",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	return NewAccountHandler(accounts, jwtSvc)
}

func postJSON(t *testing.T, handler gin.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	handler(c)
	return rec
}

func TestAccountHandlerRegister(t *testing.T) {
	handler := newAccountHandler(t)

	rec := postJSON(t, handler.Register, gin.H{
		"username": "new-owner",
		"email":    "new-owner@example.com",
		"password": "long enough",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var payload struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.True(t, payload.Success)
	require.Equal(t, "owner", payload.Data["role"])
}

func TestAccountHandlerRegisterValidation(t *testing.T) {
	handler := newAccountHandler(t)

	rec := postJSON(t, handler.Register, gin.H{
		"username": "x",
		"email":    "not-an-email",
		"password": "short",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var payload struct {
		Success bool `json:"success"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.False(t, payload.Success)
	require.Contains(t, payload.Error.Message, "email")
}

func TestAccountHandlerLoginInvalidCredentials(t *testing.T) {
	handler := newAccountHandler(t)

	rec := postJSON(t, handler.Login, gin.H{
		"username": "ghost",
		"password": "whatever",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
