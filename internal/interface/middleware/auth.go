package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adityapatel-00/auth-service/internal/domain/repository"
	"github.com/adityapatel-00/auth-service/pkg/helpers"
	"github.com/adityapatel-00/auth-service/pkg/response"
)

const (
	CtxUserIDKey    = "userID"
	CtxUserEmailKey = "userEmail"
)

// Auth validates the bearer access token and confirms the subject still
// exists. Handlers behind this gate may trust userEmail/userID in the
// context; no other identity source is honored.
//
// Token expiry is reported as TOKEN_EXPIRED so clients know to refresh;
// every other token failure is INVALID_TOKEN and requires a new login.
func Auth(repo repository.UserRepository, tokens *helpers.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, response.CodeInvalidToken, "missing access token", nil)
			return
		}

		claims, err := tokens.Parse(token, helpers.TokenAccess)
		if err != nil {
			if errors.Is(err, helpers.ErrTokenExpired) {
				response.AbortError(c, http.StatusUnauthorized, response.CodeTokenExpired, "token expired", nil)
				return
			}
			response.AbortError(c, http.StatusUnauthorized, response.CodeInvalidToken, "invalid token", nil)
			return
		}

		u, err := repo.GetByEmail(c.Request.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// token outlived the account; a 404 here would leak
				// account existence to an unauthenticated caller
				response.AbortError(c, http.StatusUnauthorized, response.CodeInvalidToken, "invalid token", nil)
				return
			}
			response.AbortError(c, http.StatusInternalServerError, response.CodeInternal, "authentication failed", nil)
			return
		}

		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUserEmailKey, u.Email)
		c.Next()
	}
}

// bearerToken pulls the credential from the Authorization header, falling
// back to the access_token cookie set at login for browser clients.
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return ""
		}
		return strings.TrimSpace(parts[1])
	}
	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie
	}
	return ""
}
