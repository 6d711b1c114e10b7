package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/adityapatel-00/auth-service/internal/application"
	"github.com/adityapatel-00/auth-service/internal/interface/middleware"
	"github.com/adityapatel-00/auth-service/pkg/response"
)

// UserHandler serves gated account endpoints. The identity it trusts is
// the one the auth middleware placed in the context.
type UserHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// Info GET /api/user/info
func (h *UserHandler) Info(c *gin.Context) {
	email := c.GetString(middleware.CtxUserEmailKey)

	u, err := h.Svc.Profile(c.Request.Context(), email)
	if err != nil {
		// the gate confirmed the account an instant ago; treat any miss
		// here as an auth failure, not a lookup miss
		h.Logger.WithError(err).WithField("email", email).Warn("profile lookup failed after auth")
		response.Error[any](c, http.StatusUnauthorized, response.CodeInvalidToken, "invalid user", nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"first_name":   u.FirstName,
		"last_name":    u.LastName,
		"email":        u.Email,
		"phone_number": u.PhoneNumber,
	}, "user info")
}
