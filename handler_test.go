package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"lg/nutriplan-api/internal/store"
)

const (
	testToken    = "test-token"
	testPassword = "hunter22"
)

// testServer is the full router over an in-memory SQLite store with one user.
type testServer struct {
	router  *gin.Engine
	handler *Handler
	store   *store.SQLiteStore
	userID  int
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	zerolog.SetGlobalLevel(zerolog.Disabled)

	st, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	userID, err := st.CreateUser(context.Background(), "alice", "alice@example.com", string(hash), testToken)
	require.NoError(t, err)

	h := &Handler{store: st, openAIKey: "test-key", openAIModel: "test-model"}
	return &testServer{router: h.newRouter(), handler: h, store: st, userID: userID}
}

// do sends an authenticated request; body may be empty.
func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	return ts.doAs(testToken, method, path, body)
}

func (ts *testServer) doAs(token, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

// completeProfile fills in the example profile: male, 80kg, 180cm, 30y, moderate, fat_loss.
func (ts *testServer) completeProfile(t *testing.T) {
	t.Helper()
	w := ts.do(http.MethodPatch, "/api/profile", `{
		"biological_sex": "male", "weight_kg": 80, "height_cm": 180,
		"age_years": 30, "activity_level": "moderate", "diet_goal": "fat_loss"
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

// decode unmarshals the response body into T.
func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}
