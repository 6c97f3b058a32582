package api

import (
	"net/http"

	"myfuture/api/internal/model"
	"myfuture/api/middleware"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

type resultBody struct {
	OrientationID *string `json:"orientation_id"`
	PayloadJSON   string  `json:"payload_json" binding:"required,min=2"`
}

func (a *API) ResultCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	user := middleware.CurrentUser(c)

	var data resultBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	result := model.Result{
		ID:            gonanoid.Must(16),
		UserID:        user.ID,
		OrientationID: data.OrientationID,
		PayloadJSON:   data.PayloadJSON,
	}

	if err := a.DB.Create(&result).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create result", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, result)
}
