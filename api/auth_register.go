package api

import (
	"errors"
	"net/http"

	"myfuture/api/internal/auth"
	"myfuture/api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type registerBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) AuthRegister(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data registerBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		zap.L().Debug("Invalid email", zap.Error(err), zap.String("requestID", requestID))

		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	user, rawToken, err := a.Auth.Register(c.Request.Context(), data.Email, data.Password, data.Username)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{
				"error":     "This email is already registered. Please login or use a different email",
				"requestID": requestID,
			})
		case errors.Is(err, auth.ErrUsernameTaken), errors.Is(err, auth.ErrUsernameInvalid):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
		case validators.IsPolicyViolation(err):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to register user", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	// Mail delivery must not hold up the response
	go func(email, token string) {
		if err := a.Mailer.SendVerificationMail(email, buildVerifyLink(token)); err != nil {
			zap.L().Error("Failed to send verification mail", zap.Error(err), zap.String("requestID", requestID))
		}
	}(user.Email, rawToken)

	c.JSON(http.StatusOK, gin.H{
		"message": "You will receive a confirmation email to activate your account.",
	})
}
