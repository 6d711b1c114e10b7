package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adityapatel-00/auth-service/internal/domain/entity"
	"github.com/adityapatel-00/auth-service/internal/domain/repository"
	"github.com/adityapatel-00/auth-service/pkg/helpers"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("email not verified")
	ErrAlreadyVerified    = errors.New("email already verified")
)

// Service drives the account lifecycle: Unregistered -> Unverified ->
// Verified. It owns no state; accounts live in the repository and tokens
// are self-contained.
type Service struct {
	Repo   repository.UserRepository
	Tokens *helpers.TokenManager
	Logger *logrus.Logger
}

func NewService(repo repository.UserRepository, tokens *helpers.TokenManager, logger *logrus.Logger) *Service {
	return &Service{Repo: repo, Tokens: tokens, Logger: logger}
}

type SignupInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	PhoneNumber string
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// Signup creates an unverified account. The duplicate pre-check keeps the
// common case cheap; a concurrent insert still resolves through the
// store's uniqueness constraint.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*entity.User, error) {
	if _, err := s.Repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// Login authenticates credentials and issues a fresh access/refresh pair.
// Unverified accounts are refused regardless of password correctness.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, TokenPair{}, ErrUserNotFound
		}
		return nil, TokenPair{}, err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if !u.IsVerified {
		return nil, TokenPair{}, ErrNotVerified
	}

	pair, err := s.issuePair(u.Email)
	if err != nil {
		return nil, TokenPair{}, err
	}

	now := time.Now()
	if err := s.Repo.UpdateLastLogin(ctx, u.Email, now); err != nil {
		// login already succeeded; a missed stamp is not worth failing it
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("email", u.Email).Warn("update last_login failed")
		}
	} else {
		u.LastLogin = &now
	}
	return u, pair, nil
}

// VerifyEmail flips the account to verified exactly once. A second valid
// token for an already-verified account returns ErrAlreadyVerified, which
// callers treat as an idempotent no-op rather than a state change.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*entity.User, error) {
	claims, err := s.Tokens.Parse(token, helpers.TokenEmail)
	if err != nil {
		return nil, err
	}
	u, err := s.Repo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if u.IsVerified {
		return u, ErrAlreadyVerified
	}
	if err := s.Repo.SetVerified(ctx, u.Email); err != nil {
		return nil, err
	}
	u.IsVerified = true
	return u, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token is not rotated, and verification status is not re-checked;
// a compromised refresh token stays live until natural expiry.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	claims, err := s.Tokens.Parse(refreshToken, helpers.TokenRefresh)
	if err != nil {
		return "", time.Time{}, err
	}
	if _, err := s.Repo.GetByEmail(ctx, claims.Subject); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// valid token for a deleted account; answer as a credential
			// failure, never as a lookup miss
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}
	return s.Tokens.GenerateAccessToken(claims.Subject)
}

// Profile returns the account for a gate-verified subject.
func (s *Service) Profile(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) issuePair(email string) (TokenPair, error) {
	access, aexp, err := s.Tokens.GenerateAccessToken(email)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("email", email).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.Tokens.GenerateRefreshToken(email)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("email", email).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:        access,
		AccessTokenExpiry:  aexp,
		RefreshToken:       refresh,
		RefreshTokenExpiry: rexp,
	}, nil
}
