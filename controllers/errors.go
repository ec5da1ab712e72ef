package controllers

import (
	"github.com/gin-gonic/gin"

	"signalbox/internal/models"
	"signalbox/services"
)

// abortWithError renders a core error as models.ErrorResponse with the mapped status.
func abortWithError(c *gin.Context, err error) {
	c.JSON(services.HTTPStatus(err), &models.ErrorResponse{
		Code:  services.ErrorCode(err),
		Error: err.Error(),
	})
}
