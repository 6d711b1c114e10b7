package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/adityapatel-00/auth-service/internal/domain/entity"
	"github.com/adityapatel-00/auth-service/internal/domain/repository"
	"github.com/adityapatel-00/auth-service/pkg/helpers"
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

func newService(repo repository.UserRepository) *Service {
	tokens := helpers.NewTokenManager("as", "rs", "es", time.Hour, 7*24*time.Hour, 10*24*time.Hour)
	return NewService(repo, tokens, nil)
}

func signupInput(email string) SignupInput {
	return SignupInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  "Sup3rSecret!",
	}
}

func TestSignupStoresHashedPassword(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)

	u, err := svc.Signup(context.Background(), signupInput("ada@example.com"))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if u.IsVerified {
		t.Fatal("new account must start unverified")
	}
	if u.PasswordHash == "Sup3rSecret!" || u.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, "Sup3rSecret!") {
		t.Fatal("stored hash does not verify against the password")
	}
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	svc := newService(newMemRepo())

	if _, err := svc.Signup(context.Background(), signupInput("ada@example.com")); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	_, err := svc.Signup(context.Background(), signupInput("ada@example.com"))
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginLifecycle(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, signupInput("ada@example.com")); err != nil {
		t.Fatalf("signup: %v", err)
	}

	// unknown account
	if _, _, err := svc.Login(ctx, "nobody@example.com", "Sup3rSecret!"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown account: expected ErrUserNotFound, got %v", err)
	}

	// wrong password
	if _, _, err := svc.Login(ctx, "ada@example.com", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}

	// correct password but unverified
	if _, _, err := svc.Login(ctx, "ada@example.com", "Sup3rSecret!"); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("unverified: expected ErrNotVerified, got %v", err)
	}

	token, _, err := svc.Tokens.GenerateEmailToken("ada@example.com")
	if err != nil {
		t.Fatalf("email token: %v", err)
	}
	if _, err := svc.VerifyEmail(ctx, token); err != nil {
		t.Fatalf("verify: %v", err)
	}

	u, pair, err := svc.Login(ctx, "ada@example.com", "Sup3rSecret!")
	if err != nil {
		t.Fatalf("login after verify: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens after login")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}
	if u.LastLogin == nil {
		t.Fatal("last_login not stamped")
	}

	stored, _ := repo.GetByEmail(ctx, "ada@example.com")
	if stored.LastLogin == nil {
		t.Fatal("last_login not persisted")
	}
}

func TestVerifyEmailIsIdempotent(t *testing.T) {
	svc := newService(newMemRepo())
	ctx := context.Background()

	if _, err := svc.Signup(ctx, signupInput("ada@example.com")); err != nil {
		t.Fatalf("signup: %v", err)
	}
	token, _, err := svc.Tokens.GenerateEmailToken("ada@example.com")
	if err != nil {
		t.Fatalf("email token: %v", err)
	}

	u, err := svc.VerifyEmail(ctx, token)
	if err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if !u.IsVerified {
		t.Fatal("account not verified after first token use")
	}

	u, err = svc.VerifyEmail(ctx, token)
	if !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("second verify: expected ErrAlreadyVerified, got %v", err)
	}
	if u == nil || !u.IsVerified {
		t.Fatal("second verify must still return the verified account")
	}
}

func TestVerifyEmailRejectsWrongTokenType(t *testing.T) {
	svc := newService(newMemRepo())
	ctx := context.Background()

	if _, err := svc.Signup(ctx, signupInput("ada@example.com")); err != nil {
		t.Fatalf("signup: %v", err)
	}
	access, _, err := svc.Tokens.GenerateAccessToken("ada@example.com")
	if err != nil {
		t.Fatalf("access token: %v", err)
	}

	if _, err := svc.VerifyEmail(ctx, access); !errors.Is(err, helpers.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for access token, got %v", err)
	}
}

func TestRefreshIssuesNewAccessOnly(t *testing.T) {
	svc := newService(newMemRepo())
	ctx := context.Background()

	if _, err := svc.Signup(ctx, signupInput("ada@example.com")); err != nil {
		t.Fatalf("signup: %v", err)
	}
	refresh, _, err := svc.Tokens.GenerateRefreshToken("ada@example.com")
	if err != nil {
		t.Fatalf("refresh token: %v", err)
	}

	access, exp, err := svc.Refresh(ctx, refresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if access == "" || !exp.After(time.Now()) {
		t.Fatal("expected a live access token")
	}

	claims, err := svc.Tokens.Parse(access, helpers.TokenAccess)
	if err != nil {
		t.Fatalf("parse issued access token: %v", err)
	}
	if claims.Subject != "ada@example.com" {
		t.Fatalf("subject = %q", claims.Subject)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc := newService(newMemRepo())
	ctx := context.Background()

	if _, err := svc.Signup(ctx, signupInput("ada@example.com")); err != nil {
		t.Fatalf("signup: %v", err)
	}
	access, _, err := svc.Tokens.GenerateAccessToken("ada@example.com")
	if err != nil {
		t.Fatalf("access token: %v", err)
	}

	if _, _, err := svc.Refresh(ctx, access); !errors.Is(err, helpers.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestRefreshForDeletedAccount(t *testing.T) {
	svc := newService(newMemRepo())

	refresh, _, err := svc.Tokens.GenerateRefreshToken("gone@example.com")
	if err != nil {
		t.Fatalf("refresh token: %v", err)
	}
	if _, _, err := svc.Refresh(context.Background(), refresh); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
