package middleware

import (
	"bytes"
	"io"

	"github.com/MukamaJ-2/crypto-vault/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// maxAuditBody caps how much of a request body lands in the audit row.
const maxAuditBody = 2000

// AuditMiddleware records mutating requests of logged-in users.
func AuditMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// read and restore the request body
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		userID, ok := CurrentUserID(c)
		if !ok {
			return
		}
		if c.Request.Method == "GET" {
			return
		}

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(bodyBytes) > 0 && len(bodyBytes) < maxAuditBody {
			action += " " + string(bodyBytes)
		}

		log := models.AuditLog{
			UserID:    &userID,
			Method:    c.Request.Method,
			Path:      path,
			Action:    action,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}

		_ = db.Create(&log).Error
	}
}
