package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adityapatel-00/auth-service/internal/container"
	handlers "github.com/adityapatel-00/auth-service/internal/interface/http"
	"github.com/adityapatel-00/auth-service/internal/interface/middleware"
)

// AuthModule wires the public account-lifecycle routes:
// POST /api/signup, POST /api/login, POST /api/refresh-token,
// GET /api/verify/:token, POST /api/verify/resend
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	signupLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)
	verifyLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	resendLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/signup", signupLimiter, m.Handler.Signup)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh-token", refreshLimiter, m.Handler.Refresh)
	rg.GET("/verify/:token", verifyLimiter, m.Handler.Verify)
	rg.POST("/verify/resend", resendLimiter, m.Handler.ResendVerification)
}
