package api

import (
	"net/http"

	"myfuture/api/middleware"

	"github.com/gin-gonic/gin"
)

func (a *API) AuthMe(c *gin.Context) {
	user := middleware.CurrentUser(c)

	c.JSON(http.StatusOK, gin.H{
		"id":            user.ID,
		"username":      user.Username,
		"email":         user.Email,
		"auth_provider": user.AuthProvider,
		"verified":      user.Verified,
	})
}
