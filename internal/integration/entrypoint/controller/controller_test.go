package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/storefront/credential-security/internal/application/adapter"
	"github.com/storefront/credential-security/internal/application/usecase/credential"
	"github.com/storefront/credential-security/internal/domain/entity"
	"github.com/storefront/credential-security/internal/integration/adapters"
	"github.com/storefront/credential-security/internal/integration/entrypoint/middleware"
	"github.com/storefront/credential-security/internal/integration/persistence"
	"github.com/storefront/credential-security/internal/integration/persistence/model"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServer struct {
	engine *gin.Engine
	clock  *fixedClock
	token  string
}

func newTestServer(t *testing.T, withAudit bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := &fixedClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}

	policy, err := adapters.NewPolicyEvaluator(adapters.DefaultPolicyConfig())
	require.NoError(t, err)
	engine, err := adapters.NewPBKDF2Engine(adapters.KDFConfig{Workers: 2, Timeout: 10 * time.Second})
	require.NoError(t, err)
	hasher, err := adapters.NewPasswordHasher(engine, adapters.NewRandomSource(), policy, clock, adapters.HasherConfig{
		Iterations: 1000,
		Digest:     entity.DigestSHA256,
		SaltLength: 16,
		KeyLength:  32,
	})
	require.NoError(t, err)
	tracker, err := adapters.NewMemoryLockoutTracker(entity.LockoutPolicy{
		MaxAttempts:     3,
		AttemptWindow:   time.Second,
		LockoutDuration: 30 * time.Minute,
	}, clock, time.Minute)
	require.NoError(t, err)

	var attempts adapter.AttemptRepository
	if withAudit {
		db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		require.NoError(t, err)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		sqlDB.SetMaxOpenConns(1)
		require.NoError(t, db.AutoMigrate(&model.AuthAttemptModel{}))
		attempts = persistence.NewAttemptRepository(db)
	}

	credentials := NewCredentialController(
		credential.NewEvaluatePolicyUseCase(policy),
		credential.NewCreateCredentialUseCase(hasher),
		credential.NewVerifyCredentialUseCase(hasher, tracker, attempts, clock),
	)
	lockouts := NewLockoutController(
		credential.NewCheckLockoutUseCase(tracker),
		credential.NewRecordFailureUseCase(tracker),
		credential.NewResetAttemptsUseCase(tracker),
		credential.NewListAttemptsUseCase(attempts),
	)

	tokens, err := adapters.NewTokenService(adapters.TokenConfig{
		Secret:   "0123456789abcdef0123456789abcdef",
		Issuer:   "credential-security",
		Audience: "credential-security-api",
		TTL:      time.Hour,
	}, clock)
	require.NoError(t, err)
	token, err := tokens.IssueServiceToken(context.Background(), "accounts")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/health", NewHealthController(func() bool { return true }, nil).Check)
	r.POST("/passwords/evaluate", credentials.Evaluate)

	protected := r.Group("")
	protected.Use(middleware.NewAuthMiddleware(tokens).Authenticate())
	protected.POST("/credentials", credentials.Create)
	protected.POST("/credentials/verify", credentials.Verify)
	protected.GET("/lockouts/:identifier", lockouts.Get)
	protected.DELETE("/lockouts/:identifier", lockouts.Reset)
	protected.POST("/lockouts/:identifier/failures", lockouts.RecordFailure)
	protected.GET("/lockouts/:identifier/attempts", lockouts.ListAttempts)

	return &testServer{engine: r, clock: clock, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return s.doAs(t, s.token, method, path, body)
}

func (s *testServer) doAs(t *testing.T, token, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (s *testServer) createRecord(t *testing.T, password string) *entity.PasswordRecord {
	t.Helper()
	w := s.do(t, http.MethodPost, "/credentials", map[string]any{"password": password})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var record entity.PasswordRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	return &record
}

func TestCredentialController_Evaluate(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(t, http.MethodPost, "/passwords/evaluate", map[string]any{"password": "Abcdef1!"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["is_valid"])
	assert.Equal(t, float64(76), body["score"])
	assert.Equal(t, "strong", body["strength"])
	assert.Equal(t, []any{}, body["errors"])

	w = s.do(t, http.MethodPost, "/passwords/evaluate", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCredentialController_Create(t *testing.T) {
	s := newTestServer(t, false)

	record := s.createRecord(t, "Correct#Horse9")
	assert.Equal(t, entity.AlgorithmPBKDF2, record.Algorithm)
	assert.Equal(t, 1000, record.Iterations)

	w := s.do(t, http.MethodPost, "/credentials", map[string]any{"password": "weak"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, "CRED-020001", body["code"])
	assert.Contains(t, body["violations"], "password must be at least 8 characters long")

	w = s.do(t, http.MethodPost, "/credentials", map[string]any{
		"password": "Correct#Horse9",
		"history":  []*entity.PasswordRecord{record},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, []any{"password was used recently"}, decode(t, w)["violations"])
}

func TestCredentialController_VerifySuccess(t *testing.T) {
	s := newTestServer(t, true)
	record := s.createRecord(t, "Correct#Horse9")

	w := s.do(t, http.MethodPost, "/credentials/verify", map[string]any{
		"identifier": "user@example.com",
		"password":   "Correct#Horse9",
		"record":     record,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["verified"])
	assert.Equal(t, false, body["needs_rehash"])
	assert.NotContains(t, body, "record")
}

func TestCredentialController_VerifyFailuresAreUniform(t *testing.T) {
	s := newTestServer(t, false)
	record := s.createRecord(t, "Correct#Horse9")

	wrong := s.do(t, http.MethodPost, "/credentials/verify", map[string]any{
		"identifier": "known@example.com",
		"password":   "nope",
		"record":     record,
	})
	unknown := s.do(t, http.MethodPost, "/credentials/verify", map[string]any{
		"identifier": "ghost@example.com",
		"password":   "nope",
	})

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.JSONEq(t, wrong.Body.String(), unknown.Body.String())
	assert.Equal(t, "Invalid identifier or password", decode(t, wrong)["error"])
}

func TestCredentialController_VerifyLocks(t *testing.T) {
	s := newTestServer(t, true)
	record := s.createRecord(t, "Correct#Horse9")
	attempt := map[string]any{"identifier": "user@example.com", "password": "wrong", "record": record}

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/credentials/verify", attempt).Code)
	s.clock.advance(10 * time.Millisecond)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/credentials/verify", attempt).Code)
	s.clock.advance(10 * time.Millisecond)

	w := s.do(t, http.MethodPost, "/credentials/verify", attempt)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1800", w.Header().Get("Retry-After"))
	body := decode(t, w)
	assert.Equal(t, "CRED-040001", body["code"])
	assert.Equal(t, "Too many attempts. Please try again in 30 minutes.", body["error"])

	// correct password is refused while locked
	attempt["password"] = "Correct#Horse9"
	s.clock.advance(10 * time.Millisecond)
	assert.Equal(t, http.StatusTooManyRequests, s.do(t, http.MethodPost, "/credentials/verify", attempt).Code)

	w = s.do(t, http.MethodGet, "/lockouts/user@example.com/attempts?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode(t, w)["attempts"].([]any)
	require.Len(t, listed, 2)
	assert.Equal(t, "locked", listed[0].(map[string]any)["outcome"])
}

func TestCredentialController_VerifyMalformedRecord(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(t, http.MethodPost, "/credentials/verify", map[string]any{
		"identifier": "user@example.com",
		"password":   "whatever",
		"record":     map[string]any{"hash": "", "algorithm": "PBKDF2"},
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "CRED-030002", decode(t, w)["code"])
}

func TestCredentialController_VerifyMissingFields(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(t, http.MethodPost, "/credentials/verify", map[string]any{"password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CRED-010001", decode(t, w)["code"])
}

func TestLockoutController_Lifecycle(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(t, http.MethodGet, "/lockouts/User@Example.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "user@example.com", body["identifier"])
	assert.Equal(t, false, body["is_locked"])
	assert.Equal(t, float64(3), body["attempts_remaining"])

	for i := 0; i < 3; i++ {
		w = s.do(t, http.MethodPost, "/lockouts/user@example.com/failures", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	body = decode(t, w)
	assert.Equal(t, true, body["is_locked"])
	assert.Equal(t, float64(1800), body["remaining_seconds"])

	w = s.do(t, http.MethodGet, "/lockouts/user@example.com", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["is_locked"])

	w = s.do(t, http.MethodDelete, "/lockouts/user@example.com", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/lockouts/user@example.com", nil)
	assert.Equal(t, false, decode(t, w)["is_locked"])
}

func TestLockoutController_ListAttempts(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(t, http.MethodGet, "/lockouts/user@example.com/attempts", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "CRED-050004", decode(t, w)["code"])

	w = s.do(t, http.MethodGet, "/lockouts/user@example.com/attempts?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthController_Check(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "connected", body["database"])
	assert.Equal(t, "disabled", body["redis"])
}

func TestRoutes_RejectUnauthenticatedCallers(t *testing.T) {
	srv := newTestServer(t, false)
	record := srv.createRecord(t, "Tr0ub4dor&3x")

	for i := 0; i < 2; i++ {
		w := srv.do(t, http.MethodPost, "/credentials/verify", map[string]any{
			"identifier": "victim@example.com",
			"password":   "wrong-guess",
			"record":     record,
		})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	requests := []struct {
		method string
		path   string
		body   any
	}{
		{method: http.MethodDelete, path: "/lockouts/victim@example.com"},
		{method: http.MethodPost, path: "/credentials/verify", body: map[string]any{
			"identifier": "victim@example.com",
			"password":   "Tr0ub4dor&3x",
			"record":     record,
		}},
		{method: http.MethodPost, path: "/lockouts/victim@example.com/failures"},
		{method: http.MethodPost, path: "/credentials", body: map[string]any{"password": "Tr0ub4dor&3x"}},
	}
	for _, req := range requests {
		w := srv.doAs(t, "", req.method, req.path, req.body)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", req.method, req.path)
		assert.Equal(t, "CRED-060001", decode(t, w)["code"])

		w = srv.doAs(t, "forged."+srv.token, req.method, req.path, req.body)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", req.method, req.path)
		assert.Equal(t, "CRED-060002", decode(t, w)["code"])
	}

	w := srv.do(t, http.MethodGet, "/lockouts/victim@example.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["attempts_remaining"])
}
