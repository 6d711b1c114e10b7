package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/adityapatel-00/auth-service/config"
	"github.com/adityapatel-00/auth-service/internal/application"
	"github.com/adityapatel-00/auth-service/internal/domain/entity"
	"github.com/adityapatel-00/auth-service/pkg/helpers"
	"github.com/adityapatel-00/auth-service/pkg/mailer"
	"github.com/adityapatel-00/auth-service/pkg/response"
	"github.com/adityapatel-00/auth-service/pkg/validation"
)

// AuthHandler exposes the account lifecycle: signup, login, refresh and
// email verification.
type AuthHandler struct {
	Svc     *application.Service
	Logger  *logrus.Logger
	Cfg     *config.Config
	Pub     *helpers.RabbitPublisher
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.Service, logger *logrus.Logger, cfg *config.Config, pub *helpers.RabbitPublisher) *AuthHandler {
	return &AuthHandler{
		Svc:     svc,
		Logger:  logger,
		Cfg:     cfg,
		Pub:     pub,
		Cookies: helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure),
	}
}

type signupRequest struct {
	FirstName   string `json:"first_name" binding:"required,min=3,max=255"`
	LastName    string `json:"last_name" binding:"required,min=3,max=255"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,strongpwd"`
	PhoneNumber string `json:"phone_number" binding:"omitempty,phone"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type resendRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Signup POST /api/signup
// Creates an unverified account and fire-and-forgets the verification
// email; delivery outcome never affects the response.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, response.CodeValidation, "validation failed", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Signup(c.Request.Context(), application.SignupInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		if errors.Is(err, application.ErrEmailTaken) {
			response.Error[any](c, http.StatusConflict, response.CodeEmailTaken, "email already exists", nil)
			return
		}
		h.Logger.WithError(err).Error("signup failed")
		response.Error[any](c, http.StatusInternalServerError, response.CodeInternal, "something went wrong, try again", nil)
		return
	}

	h.dispatchVerificationEmail(c, u)

	response.Success[any](c, http.StatusCreated, gin.H{"email": u.Email}, "signed up successfully")
}

// Login POST /api/login
// Blocked until the account verifies its email, regardless of password
// correctness.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, response.CodeValidation, "validation failed", validation.ToDetails(err))
		return
	}

	u, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrUserNotFound):
			response.Error[any](c, http.StatusNotFound, response.CodeUserNotFound, "user doesn't exist", nil)
		case errors.Is(err, application.ErrInvalidCredentials):
			response.Error[any](c, http.StatusUnauthorized, response.CodeInvalidCredentials, "invalid credentials", nil)
		case errors.Is(err, application.ErrNotVerified):
			response.Error[any](c, http.StatusUnauthorized, response.CodeNotVerified, "email not verified", nil)
		default:
			h.Logger.WithError(err).Error("login failed")
			response.Error[any](c, http.StatusInternalServerError, response.CodeInternal, "something went wrong, try again", nil)
		}
		return
	}

	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"email":         u.Email,
	}, "login successful")
}

// Refresh POST /api/refresh-token
// Exchanges a valid refresh token for a new access token. No rotation:
// the presented refresh token stays valid until it expires.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)
	token := req.RefreshToken
	if token == "" {
		if cookie, err := c.Cookie("refresh_token"); err == nil {
			token = cookie
		}
	}
	if token == "" {
		response.Error[any](c, http.StatusBadRequest, response.CodeValidation, "missing refresh token", nil)
		return
	}

	access, aexp, err := h.Svc.Refresh(c.Request.Context(), token)
	if err != nil {
		h.tokenError(c, err)
		return
	}

	h.Cookies.SetAccess(c, access, aexp)
	response.Success(c, http.StatusOK, gin.H{"access_token": access}, "token refreshed")
}

// Verify GET /api/verify/:token
// Target of the emailed link. Idempotent: a second valid token for an
// already-verified account answers 200 without touching state.
func (h *AuthHandler) Verify(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error[any](c, http.StatusBadRequest, response.CodeValidation, "missing verification token", nil)
		return
	}

	u, err := h.Svc.VerifyEmail(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, application.ErrAlreadyVerified) {
			response.Success(c, http.StatusOK, gin.H{"email": u.Email, "already_verified": true}, "email already verified")
			return
		}
		h.tokenError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"email": u.Email, "verified": true}, "email verified")
}

// ResendVerification POST /api/verify/resend
// Re-issues the verification email for an unverified account. Always
// answers 200 to avoid leaking which emails are registered.
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req resendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, response.CodeValidation, "validation failed", validation.ToDetails(err))
		return
	}

	if u, err := h.Svc.Profile(c.Request.Context(), req.Email); err == nil && !u.IsVerified {
		h.dispatchVerificationEmail(c, u)
	}
	response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "verification email sent")
}

// tokenError maps service/token failures for the login-adjacent flows.
func (h *AuthHandler) tokenError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, helpers.ErrTokenExpired):
		response.Error[any](c, http.StatusUnauthorized, response.CodeTokenExpired, "token expired", nil)
	case errors.Is(err, helpers.ErrTokenMalformed), errors.Is(err, helpers.ErrTokenInvalid):
		response.Error[any](c, http.StatusUnauthorized, response.CodeInvalidToken, "invalid token", nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, response.CodeInvalidToken, "invalid token", nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, response.CodeUserNotFound, "user doesn't exist", nil)
	default:
		h.Logger.WithError(err).Error("token operation failed")
		response.Error[any](c, http.StatusInternalServerError, response.CodeInternal, "something went wrong, try again", nil)
	}
}

// dispatchVerificationEmail queues the verification email. Failures are
// logged and swallowed: signup success is independent of email delivery.
func (h *AuthHandler) dispatchVerificationEmail(c *gin.Context, u *entity.User) {
	if h.Pub == nil || !h.Cfg.MailSendEnabled {
		return
	}
	token, _, err := h.Svc.Tokens.GenerateEmailToken(u.Email)
	if err != nil {
		h.Logger.WithError(err).WithField("email", u.Email).Warn("generate verification token failed")
		return
	}
	link := strings.TrimRight(h.Cfg.VerifyEmailURL, "/") + "/" + token
	job := mailer.EmailJob{
		To:       u.Email,
		Template: "verify_email",
		Data: mailer.EmailData{
			Name:          u.FirstName,
			Email:         u.Email,
			AppName:       h.Cfg.AppName,
			VerifyURL:     link,
			ExpiresInText: expiresInText(h.Cfg.EmailTokenTTL),
		},
	}
	if err := h.Pub.PublishJSON(c.Request.Context(), job); err != nil {
		h.Logger.WithError(err).WithField("email", u.Email).Warn("enqueue verification email failed")
	}
}

func expiresInText(d time.Duration) string {
	if days := int(d.Hours()) / 24; days >= 1 {
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	hours := int(d.Hours())
	if hours <= 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
