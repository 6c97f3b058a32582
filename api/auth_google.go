package api

import (
	"errors"
	"net/http"

	"myfuture/api/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type googleLoginBody struct {
	IDToken string `json:"id_token"`
}

func (a *API) AuthGoogle(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data googleLoginBody
	if err := c.ShouldBind(&data); err != nil || len(data.IDToken) < 10 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	user, err := a.Auth.LoginWithGoogle(c.Request.Context(), data.IDToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailNotVerified):
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":     "Google account email is not verified",
				"requestID": requestID,
			})
		case errors.Is(err, auth.ErrInvalidExternalToken):
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":     "Invalid Google token",
				"requestID": requestID,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to log in with Google", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	a.respondWithToken(c, requestID, user)
}
