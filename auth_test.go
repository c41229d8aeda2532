package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"valid credentials", `{"username":"alice","password":"hunter22"}`, http.StatusOK},
		{"wrong password", `{"username":"alice","password":"nope"}`, http.StatusUnauthorized},
		{"unknown user", `{"username":"mallory","password":"hunter22"}`, http.StatusUnauthorized},
		{"malformed body", `{"username":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.doAs("", http.MethodPost, "/api/login", tt.body)
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantCode == http.StatusOK {
				resp := decode[map[string]any](t, w)
				assert.Equal(t, testToken, resp["token"])
				assert.Equal(t, float64(ts.userID), resp["user_id"])
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	ts := newTestServer(t)

	w := ts.doAs("", http.MethodGet, "/api/profile", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "missing or invalid authorization header", errorMessage(t, w))

	w = ts.doAs("forged", http.MethodGet, "/api/profile", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid token", errorMessage(t, w))

	w = ts.do(http.MethodGet, "/api/profile", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	w := ts.doAs("", http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
