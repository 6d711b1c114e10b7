package router

import (
	"github.com/adityapatel-00/auth-service/internal/application"
	"github.com/adityapatel-00/auth-service/internal/container"
	pginfra "github.com/adityapatel-00/auth-service/internal/infrastructure/postgres"
	handlers "github.com/adityapatel-00/auth-service/internal/interface/http"
	"github.com/adityapatel-00/auth-service/internal/router/modules"
)

// InitModules builds all application modules from the container singletons
// and registers them with the router registry. Called once at startup.
func InitModules(r *Registry) {
	repo := pginfra.NewUserRepository(container.GetPGPool())

	svc := application.NewService(repo, container.GetTokens(), container.GetLogger())

	authHandler := handlers.NewAuthHandler(svc, container.GetLogger(), container.GetConfig(), container.GetRabbitPub())
	userHandler := handlers.NewUserHandler(svc, container.GetLogger())

	r.Add(modules.NewAuthModule(authHandler))
	r.Add(modules.NewUserModule(userHandler, repo))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
