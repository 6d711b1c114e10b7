package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/adityapatel-00/auth-service/config"
	"github.com/adityapatel-00/auth-service/internal/application"
	"github.com/adityapatel-00/auth-service/internal/domain/entity"
	"github.com/adityapatel-00/auth-service/internal/domain/repository"
	"github.com/adityapatel-00/auth-service/internal/interface/middleware"
	"github.com/adityapatel-00/auth-service/pkg/helpers"
	"github.com/adityapatel-00/auth-service/pkg/validation"
)

type memRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]*entity.User{}}
}

func (m *memRepo) Create(ctx context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; ok {
		return repository.ErrEmailTaken
	}
	cp := *u
	m.users[u.Email] = &cp
	return nil
}

func (m *memRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) SetVerified(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsVerified = true
	return nil
}

func (m *memRepo) UpdateLastLogin(ctx context.Context, email string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return repository.ErrNotFound
	}
	u.LastLogin = &at
	return nil
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"error"`
}

// testStack wires the HTTP surface against an in-memory store: no
// Postgres, Redis, or RabbitMQ involved.
func testStack(t *testing.T) (*gin.Engine, *application.Service, *memRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	repo := newMemRepo()
	tokens := helpers.NewTokenManager("access-secret", "refresh-secret", "email-secret",
		time.Hour, 7*24*time.Hour, 10*24*time.Hour)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)

	svc := application.NewService(repo, tokens, logger)
	cfg := &config.Config{
		AppName:        "auth-service",
		VerifyEmailURL: "http://localhost/api/verify",
		EmailTokenTTL:  10 * 24 * time.Hour,
	}
	auth := NewAuthHandler(svc, logger, cfg, nil)
	user := NewUserHandler(svc, logger)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/signup", auth.Signup)
	api.POST("/login", auth.Login)
	api.POST("/refresh-token", auth.Refresh)
	api.GET("/verify/:token", auth.Verify)
	api.POST("/verify/resend", auth.ResendVerification)

	gated := api.Group("/user", middleware.Auth(repo, tokens))
	gated.GET("/info", user.Info)

	return r, svc, repo
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, header map[string]string) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env apiEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope (%d): %v: %s", w.Code, err, w.Body.String())
	}
	return w, env
}

func validSignup(email string) gin.H {
	return gin.H{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      email,
		"password":   "Sup3rSecret!",
	}
}

func TestSignupValidation(t *testing.T) {
	r, _, _ := testStack(t)

	cases := []struct {
		name string
		body gin.H
	}{
		{"missing email", gin.H{"first_name": "Ada", "last_name": "Lovelace", "password": "Sup3rSecret!"}},
		{"bad email", gin.H{"first_name": "Ada", "last_name": "Lovelace", "email": "not-an-email", "password": "Sup3rSecret!"}},
		{"short first name", gin.H{"first_name": "Al", "last_name": "Lovelace", "email": "a@b.com", "password": "Sup3rSecret!"}},
		{"weak password no upper", gin.H{"first_name": "Ada", "last_name": "Lovelace", "email": "a@b.com", "password": "sup3rsecret!"}},
		{"weak password no digit", gin.H{"first_name": "Ada", "last_name": "Lovelace", "email": "a@b.com", "password": "SuperSecret!"}},
		{"weak password no special", gin.H{"first_name": "Ada", "last_name": "Lovelace", "email": "a@b.com", "password": "Sup3rSecret"}},
		{"short password", gin.H{"first_name": "Ada", "last_name": "Lovelace", "email": "a@b.com", "password": "S3cr!t"}},
		{"bad phone", gin.H{"first_name": "Ada", "last_name": "Lovelace", "email": "a@b.com", "password": "Sup3rSecret!", "phone_number": "not-a-phone"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, env := doJSON(t, r, http.MethodPost, "/api/signup", tc.body, nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if env.Code != "VALIDATION_ERROR" {
				t.Fatalf("expected VALIDATION_ERROR, got %q", env.Code)
			}
		})
	}
}

func TestSignupCreatesUnverifiedAccount(t *testing.T) {
	r, _, repo := testStack(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/signup", validSignup("ada@example.com"), nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if !env.Success {
		t.Fatalf("expected success envelope, got %s", w.Body.String())
	}

	u, err := repo.GetByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("account not stored: %v", err)
	}
	if u.IsVerified {
		t.Fatal("new account must start unverified")
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	r, _, _ := testStack(t)

	doJSON(t, r, http.MethodPost, "/api/signup", validSignup("ada@example.com"), nil)
	w, env := doJSON(t, r, http.MethodPost, "/api/signup", validSignup("ada@example.com"), nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if env.Code != "EMAIL_TAKEN" {
		t.Fatalf("expected EMAIL_TAKEN, got %q", env.Code)
	}
}

// TestAccountLifecycle walks the whole happy path: signup, blocked login,
// email verification, login, gated profile, refresh.
func TestAccountLifecycle(t *testing.T) {
	r, svc, _ := testStack(t)

	// signup
	w, _ := doJSON(t, r, http.MethodPost, "/api/signup", validSignup("ada@example.com"), nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	login := gin.H{"email": "ada@example.com", "password": "Sup3rSecret!"}

	// login before verification
	w, env := doJSON(t, r, http.MethodPost, "/api/login", login, nil)
	if w.Code != http.StatusUnauthorized || env.Code != "NOT_VERIFIED" {
		t.Fatalf("pre-verify login: expected 401 NOT_VERIFIED, got %d %q", w.Code, env.Code)
	}

	// follow the emailed link
	emailToken, _, err := svc.Tokens.GenerateEmailToken("ada@example.com")
	if err != nil {
		t.Fatalf("email token: %v", err)
	}
	w, env = doJSON(t, r, http.MethodGet, "/api/verify/"+emailToken, nil, nil)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("verify: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// second click on the same link is a no-op, not an error
	w, env = doJSON(t, r, http.MethodGet, "/api/verify/"+emailToken, nil, nil)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("re-verify: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// login now succeeds with a token pair
	w, env = doJSON(t, r, http.MethodPost, "/api/login", login, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var pair struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(env.Data, &pair); err != nil {
		t.Fatalf("decode login data: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("login must return both tokens: %s", w.Body.String())
	}

	// gated profile with the access token
	w, env = doJSON(t, r, http.MethodGet, "/api/user/info", nil,
		map[string]string{"Authorization": "Bearer " + pair.AccessToken})
	if w.Code != http.StatusOK {
		t.Fatalf("user info: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var info struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
	}
	if err := json.Unmarshal(env.Data, &info); err != nil {
		t.Fatalf("decode info data: %v", err)
	}
	if info.Email != "ada@example.com" || info.FirstName != "Ada" {
		t.Fatalf("unexpected profile: %s", env.Data)
	}

	// the refresh token must not pass the access gate
	w, _ = doJSON(t, r, http.MethodGet, "/api/user/info", nil,
		map[string]string{"Authorization": "Bearer " + pair.RefreshToken})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("refresh token at gate: expected 401, got %d", w.Code)
	}

	// refresh yields a new working access token
	w, env = doJSON(t, r, http.MethodPost, "/api/refresh-token",
		gin.H{"refresh_token": pair.RefreshToken}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var refreshed struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &refreshed); err != nil {
		t.Fatalf("decode refresh data: %v", err)
	}
	w, _ = doJSON(t, r, http.MethodGet, "/api/user/info", nil,
		map[string]string{"Authorization": "Bearer " + refreshed.AccessToken})
	if w.Code != http.StatusOK {
		t.Fatalf("refreshed access token: expected 200, got %d", w.Code)
	}
}

func TestLoginUnknownAccount(t *testing.T) {
	r, _, _ := testStack(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/login",
		gin.H{"email": "nobody@example.com", "password": "Sup3rSecret!"}, nil)
	if w.Code != http.StatusNotFound || env.Code != "USER_NOT_FOUND" {
		t.Fatalf("expected 404 USER_NOT_FOUND, got %d %q", w.Code, env.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	r, svc, _ := testStack(t)
	seedVerified(t, svc, "ada@example.com")

	w, env := doJSON(t, r, http.MethodPost, "/api/login",
		gin.H{"email": "ada@example.com", "password": "WrongPass1!"}, nil)
	if w.Code != http.StatusUnauthorized || env.Code != "INVALID_CREDENTIALS" {
		t.Fatalf("expected 401 INVALID_CREDENTIALS, got %d %q", w.Code, env.Code)
	}
}

func TestVerifyBadTokens(t *testing.T) {
	r, svc, _ := testStack(t)
	seedVerified(t, svc, "ada@example.com")

	// garbage token
	w, env := doJSON(t, r, http.MethodGet, "/api/verify/not-a-jwt", nil, nil)
	if w.Code != http.StatusUnauthorized || env.Code != "INVALID_TOKEN" {
		t.Fatalf("garbage: expected 401 INVALID_TOKEN, got %d %q", w.Code, env.Code)
	}

	// access token presented on the verify route
	access, _, err := svc.Tokens.GenerateAccessToken("ada@example.com")
	if err != nil {
		t.Fatalf("access token: %v", err)
	}
	w, env = doJSON(t, r, http.MethodGet, "/api/verify/"+access, nil, nil)
	if w.Code != http.StatusUnauthorized || env.Code != "INVALID_TOKEN" {
		t.Fatalf("access token: expected 401 INVALID_TOKEN, got %d %q", w.Code, env.Code)
	}

	// expired email token
	stale := helpers.NewTokenManager("access-secret", "refresh-secret", "email-secret",
		time.Hour, time.Hour, -time.Minute)
	expired, _, err := stale.GenerateEmailToken("ada@example.com")
	if err != nil {
		t.Fatalf("expired token: %v", err)
	}
	w, env = doJSON(t, r, http.MethodGet, "/api/verify/"+expired, nil, nil)
	if w.Code != http.StatusUnauthorized || env.Code != "TOKEN_EXPIRED" {
		t.Fatalf("expired: expected 401 TOKEN_EXPIRED, got %d %q", w.Code, env.Code)
	}
}

func TestRefreshRequiresToken(t *testing.T) {
	r, _, _ := testStack(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/refresh-token", gin.H{}, nil)
	if w.Code != http.StatusBadRequest || env.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected 400 VALIDATION_ERROR, got %d %q", w.Code, env.Code)
	}
}

func TestResendNeverLeaksAccountExistence(t *testing.T) {
	r, svc, _ := testStack(t)
	seedVerified(t, svc, "ada@example.com")

	for i, email := range []string{"ada@example.com", "nobody@example.com"} {
		w, env := doJSON(t, r, http.MethodPost, "/api/verify/resend", gin.H{"email": email}, nil)
		if w.Code != http.StatusOK || !env.Success {
			t.Fatalf("resend case %d: expected 200 success, got %d: %s", i, w.Code, w.Body.String())
		}
	}
}

func TestExpiresInText(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{10 * 24 * time.Hour, "10 days"},
		{24 * time.Hour, "1 day"},
		{5 * time.Hour, "5 hours"},
		{30 * time.Minute, "1 hour"},
	}
	for _, tc := range cases {
		if got := expiresInText(tc.d); got != tc.want {
			t.Errorf("expiresInText(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func seedVerified(t *testing.T, svc *application.Service, email string) {
	t.Helper()
	if _, err := svc.Signup(context.Background(), application.SignupInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  "Sup3rSecret!",
	}); err != nil {
		t.Fatalf("seed signup: %v", err)
	}
	if err := svc.Repo.SetVerified(context.Background(), email); err != nil {
		t.Fatalf("seed verify: %v", err)
	}
}
