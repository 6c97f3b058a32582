package api

import (
	"net/http"

	"myfuture/api/internal/model"
	"myfuture/api/middleware"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

type orientationBody struct {
	Level       string `json:"level" binding:"required,max=32"`
	InputMethod string `json:"input_method" binding:"required,max=32"`
}

func (a *API) OrientationCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	user := middleware.CurrentUser(c)

	var data orientationBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	orientation := model.Orientation{
		ID:          gonanoid.Must(16),
		UserID:      user.ID,
		Level:       data.Level,
		InputMethod: data.InputMethod,
	}

	if err := a.DB.Create(&orientation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create orientation", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, orientation)
}
