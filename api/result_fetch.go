package api

import (
	"net/http"

	"myfuture/api/internal/model"
	"myfuture/api/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) ResultFetch(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	user := middleware.CurrentUser(c)

	var results []model.Result

	err := a.DB.
		Where("user_id = ?", user.ID).
		Order("created_at desc").
		Find(&results).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch results", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, results)
}
