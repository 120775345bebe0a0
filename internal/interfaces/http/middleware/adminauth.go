package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/rolegate/rolegate/internal/shared/constants"
	"github.com/rolegate/rolegate/internal/shared/logger"
	"github.com/rolegate/rolegate/internal/shared/utils"
)

// AdminAuthMiddleware guards the admin API with a single bearer token whose
// bcrypt hash lives in configuration.
type AdminAuthMiddleware struct {
	tokenHash []byte
	logger    logger.Interface
}

func NewAdminAuthMiddleware(tokenHash string, logger logger.Interface) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{
		tokenHash: []byte(tokenHash),
		logger:    logger,
	}
}

// Enabled reports whether a token hash is configured.
func (m *AdminAuthMiddleware) Enabled() bool {
	return len(m.tokenHash) > 0
}

func (m *AdminAuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.Enabled() {
			utils.ErrorResponse(c, http.StatusForbidden, "admin API is disabled")
			c.Abort()
			return
		}

		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		if err := bcrypt.CompareHashAndPassword(m.tokenHash, []byte(parts[1])); err != nil {
			m.logger.Warnw("rejected admin token", "client_ip", c.ClientIP())
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyAdmin, true)
		c.Next()
	}
}
