package api

import (
	"errors"
	"net/http"

	"myfuture/api/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) AuthVerifyEmail(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	token := c.Query("token")
	if len(token) < 10 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid or expired token",
			"requestID": requestID,
		})
		return
	}

	err := a.Auth.VerifyEmail(c.Request.Context(), token)
	if err != nil {
		// Missing, expired and already-used tokens all look the same
		if errors.Is(err, auth.ErrInvalidOrExpiredToken) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid or expired token",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to verify email", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
