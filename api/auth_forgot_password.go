package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type forgotPasswordBody struct {
	Email string `json:"email"`
}

// AuthForgotPassword always answers with the same neutral message,
// whether or not the email maps to an account. Only infrastructure
// failures break that.
func (a *API) AuthForgotPassword(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data forgotPasswordBody
	if err := c.ShouldBind(&data); err != nil || data.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	token, err := a.Auth.RequestPasswordReset(c.Request.Context(), data.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to request password reset", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if token != "" {
		go func(email, token string) {
			if err := a.Mailer.SendPasswordResetMail(email, buildResetLink(token)); err != nil {
				zap.L().Error("Failed to send reset mail", zap.Error(err), zap.String("requestID", requestID))
			}
		}(data.Email, token)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "If an account exists, a reset link has been sent.",
	})
}
