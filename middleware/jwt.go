// Package middleware contains the HTTP middleware guarding the
// protected routes
package middleware

import (
	"net/http"
	"strings"

	"myfuture/api/internal/model"
	"myfuture/api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const userKey = "user"

// NewJWTMiddleware authenticates requests with a bearer access token
// and loads the account behind it. Every failure is the same 401 so a
// caller can't probe which accounts exist.
func NewJWTMiddleware(d *gorm.DB, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		header := c.GetHeader("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Not authenticated",
				"requestID": requestID,
			})
			return
		}

		claims, err := security.ParseAccessToken(tokenStr, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Invalid token",
				"requestID": requestID,
			})
			return
		}

		var user model.User

		err = d.Where("id = ?", claims.Subject).First(&user).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":     "Invalid token",
					"requestID": requestID,
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to load user for token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("userID", user.ID)
		c.Set(userKey, &user)
		c.Next()
	}
}

// NewVerifiedMiddleware gates routes that need a verified email. Must
// run after the JWT middleware.
func NewVerifiedMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)

		if !user.Verified {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     "Please verify your email before starting orientation.",
				"requestID": c.MustGet("requestID").(string),
			})
			return
		}

		c.Next()
	}
}

// CurrentUser returns the account set by the JWT middleware.
func CurrentUser(c *gin.Context) *model.User {
	return c.MustGet(userKey).(*model.User)
}
