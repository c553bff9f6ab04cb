package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/profile-builder/internal/config"
	"github.com/jonathan/profile-builder/internal/db"
	"github.com/jonathan/profile-builder/internal/documents"
	"github.com/jonathan/profile-builder/internal/server/ratelimit"
	"github.com/jonathan/profile-builder/internal/types"
)

// fakeParser returns canned import results.
type fakeParser struct {
	data *types.ProfileData
	err  error
	got  []byte
}

func (p *fakeParser) ParsePDF(_ context.Context, data []byte) (*types.ProfileData, error) {
	p.got = data
	if p.err != nil {
		return nil, p.err
	}
	return p.data, nil
}

// fakeTagline returns a fixed tagline and records the profile it saw.
type fakeTagline struct {
	line string
	err  error
	seen *types.Profile
}

func (f *fakeTagline) Tagline(_ context.Context, p *types.Profile) (string, error) {
	f.seen = p
	return f.line, f.err
}

type testEnv struct {
	server  *Server
	store   *db.Memory
	parser  *fakeParser
	tagline *fakeTagline
	handler http.Handler
}

type testOption func(*Config, *Deps)

func withoutTagline() testOption {
	return func(_ *Config, d *Deps) { d.Tagline = nil }
}

func withRateLimit(rc *ratelimit.Config) testOption {
	return func(c *Config, _ *Deps) { c.RateLimit = rc }
}

func withUploadMax(n int64) testOption {
	return func(c *Config, _ *Deps) { c.UploadMaxBytes = n }
}

func newTestEnv(t *testing.T, opts ...testOption) *testEnv {
	t.Helper()

	store := db.NewMemory()
	parser := &fakeParser{data: &types.ProfileData{Name: "Ada Lovelace"}}
	tagline := &fakeTagline{line: "Analytical engine programmer"}
	generator, err := documents.NewGenerator(nil)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := Config{
		Port:           0,
		AllowedOrigins: []string{"http://localhost:3000"},
		RateLimit:      &ratelimit.Config{Enabled: false},
	}
	deps := Deps{
		Store: store,
		JWT: &config.JWTConfig{
			Secret:          testJWTSecret,
			ExpirationHours: 24,
			CookieName:      config.DefaultSessionCookie,
		},
		Passwords: &config.PasswordConfig{
			BcryptCost: 4, // Lower cost for faster tests
			MinLength:  8,
		},
		Parser:    parser,
		Tagline:   tagline,
		Documents: generator,
		Logger:    logger,
	}
	for _, opt := range opts {
		opt(&cfg, &deps)
	}

	srv, err := New(cfg, deps)
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, store: store, parser: parser, tagline: tagline, handler: srv.Handler()}
}

// do sends a JSON request through the full middleware chain.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.1:1234"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

// register creates an account and returns its id and session token.
func (e *testEnv) register(t *testing.T, name, email string) (uuid.UUID, string) {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data types.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.User)
	return resp.Data.User.ID, resp.Data.Token
}

// decodeData unmarshals the data envelope of a response into v.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.NotEmpty(t, env.Data, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, v))
}

// decodeError unmarshals the error envelope of a response.
func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Config{}, Deps{})
	assert.Error(t, err)

	_, err = New(Config{}, Deps{Store: db.NewMemory()})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCORS_Preflight(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name        string
		origin      string
		wantAllowed bool
	}{
		{name: "configured origin", origin: "http://localhost:3000", wantAllowed: true},
		{name: "unknown origin", origin: "http://evil.example", wantAllowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/users/me", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPut)
			req.Header.Set("Access-Control-Request-Headers", "content-type,authorization")
			w := httptest.NewRecorder()
			env.handler.ServeHTTP(w, req)

			if tt.wantAllowed {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, withRateLimit(&ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		IdleTTL:       time.Hour,
		EndpointConfigs: []ratelimit.EndpointConfig{
			{Path: "/health", Method: http.MethodGet, Limit: 2, Window: time.Minute, Burst: 2},
		},
	}))

	for i := 0; i < 2; i++ {
		w := env.do(t, http.MethodGet, "/health", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "rate limit exceeded", decodeError(t, w).Error)

	// Other endpoints use the default bucket.
	w = env.do(t, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRoutes_RequireAuth(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/users/me"},
		{http.MethodGet, "/api/users/" + userID.String()},
		{http.MethodPut, "/api/users/" + userID.String()},
		{http.MethodGet, "/api/users/" + userID.String() + "/skills"},
		{http.MethodPost, "/api/users/" + userID.String() + "/certifications"},
		{http.MethodDelete, "/api/users/" + userID.String() + "/projects/" + uuid.NewString()},
		{http.MethodPut, "/api/auth/password"},
		{http.MethodPost, "/api/resume/upload"},
		{http.MethodPost, "/api/profile"},
		{http.MethodPost, "/api/users/" + userID.String() + "/documents"},
		{http.MethodGet, "/api/users/" + userID.String() + "/suggestions"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := env.do(t, rt.method, rt.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w = env.do(t, rt.method, rt.path, "not-a-token", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestUsers_GetAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.register(t, "Ada Lovelace", "ada@example.com")
	path := "/api/users/" + userID.String()

	w := env.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me types.User
	decodeData(t, w, &me)
	assert.Equal(t, userID, me.ID)
	assert.Equal(t, "ada@example.com", me.Email)
	assert.NotContains(t, w.Body.String(), "password_hash")

	w = env.do(t, http.MethodPut, path, token, map[string]string{
		"title":     "Mathematician",
		"aiTagline": "First programmer",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated types.User
	decodeData(t, w, &updated)
	assert.Equal(t, "Ada Lovelace", updated.Name)
	assert.Equal(t, "Mathematician", updated.Title)
	assert.Equal(t, "First programmer", updated.AITagline)

	w = env.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched types.User
	decodeData(t, w, &fetched)
	assert.Equal(t, "Mathematician", fetched.Title)

	w = env.do(t, http.MethodPut, path, token, map[string]string{"title": strings.Repeat("x", 201)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Fields, "title")
}

func TestUsers_OtherUserForbidden(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "Ada", "ada@example.com")
	otherID, _ := env.register(t, "Charles", "charles@example.com")

	w := env.do(t, http.MethodGet, "/api/users/"+otherID.String(), token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPut, "/api/users/"+otherID.String(), token, map[string]string{"title": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/api/users/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
