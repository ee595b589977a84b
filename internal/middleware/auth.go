package middleware

import (
	"net/http"
	"strings"

	"github.com/MukamaJ-2/crypto-vault/internal/store"
	"github.com/MukamaJ-2/crypto-vault/internal/util"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	CtxUserID = "currentUserID"
	CtxToken  = "authToken"
)

// AuthMiddleware verifies the bearer token against the account service and
// puts the principal's user id and raw token into the request context.
// Revoked and expired sessions are rejected even when the token itself still
// parses.
func AuthMiddleware(accounts store.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// 1) Header: Authorization: Bearer xxx
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}

		// 2) query param ?token=xxx (for downloads where headers are awkward)
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
			c.Abort()
			return
		}

		sess, err := accounts.CurrentSession(c.Request.Context(), tokenStr)
		if err != nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "session expired, please log in again")
			c.Abort()
			return
		}

		c.Set(CtxUserID, sess.UserID)
		c.Set(CtxToken, tokenStr)
		c.Next()
	}
}

// CurrentUserID reads the authenticated user id set by AuthMiddleware.
func CurrentUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// CurrentToken reads the raw bearer token set by AuthMiddleware.
func CurrentToken(c *gin.Context) string {
	return c.GetString(CtxToken)
}
