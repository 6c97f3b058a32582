package api

import (
	"errors"
	"net/http"

	"myfuture/api/internal/auth"
	"myfuture/api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type resetPasswordBody struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (a *API) AuthResetPassword(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data resetPasswordBody
	if err := c.ShouldBind(&data); err != nil || len(data.Token) < 10 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	err := a.Auth.ResetPassword(c.Request.Context(), data.Token, data.NewPassword)
	if err != nil {
		switch {
		case validators.IsPolicyViolation(err):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
		case errors.Is(err, auth.ErrInvalidOrExpiredToken):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid or expired token",
				"requestID": requestID,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to reset password", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
