package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adityapatel-00/auth-service/internal/container"
	"github.com/adityapatel-00/auth-service/internal/domain/repository"
	handlers "github.com/adityapatel-00/auth-service/internal/interface/http"
	"github.com/adityapatel-00/auth-service/internal/interface/middleware"
)

// UserModule wires gated account routes behind the auth middleware:
// GET /api/user/info
type UserModule struct {
	Handler *handlers.UserHandler
	Repo    repository.UserRepository
}

func NewUserModule(h *handlers.UserHandler, repo repository.UserRepository) *UserModule {
	return &UserModule{Handler: h, Repo: repo}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/user")
	auth.Use(middleware.Auth(m.Repo, container.GetTokens()))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByEmail(), nil),
	)
	{
		auth.GET("/info", m.Handler.Info)
	}
}
