package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"signalbox/internal/models"
	"signalbox/services"
)

type SdrController struct {
	sdr *services.SdrManager
}

func NewSdrController(sdr *services.SdrManager) *SdrController {
	return &SdrController{sdr: sdr}
}

func (s *SdrController) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	api.GET("/sdrs", s.ListSdrs)
	api.POST("/sdrs/assign", s.Assign)
}

// ListSdrs rescans the bus and returns the annotated inventory
//
//	@Summary		List SDR devices
//	@Tags			SDR
//	@Produce		json
//	@Success		200	{array}		models.SdrDevice
//	@Failure		500	{object}	models.ErrorResponse
//	@Router			/api/v1/sdrs [get]
func (s *SdrController) ListSdrs(c *gin.Context) {
	devices, err := s.sdr.Inventory(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if devices == nil {
		devices = []models.SdrDevice{}
	}
	c.JSON(http.StatusOK, devices)
}

// Assign binds a dongle to a service, an empty serial unassigns
//
//	@Summary		Assign SDR to service
//	@Tags			SDR
//	@Accept			json
//	@Param			body	body		models.AssignRequest	true	"Service id and serial"
//	@Success		200		{array}		models.SdrDevice
//	@Failure		400		{object}	models.ErrorResponse	"Service does not use an SDR"
//	@Failure		404		{object}	models.ErrorResponse	"Unknown service or serial"
//	@Router			/api/v1/sdrs/assign [post]
func (s *SdrController) Assign(c *gin.Context) {
	var req models.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, &models.ErrorResponse{Code: "request.invalid", Error: err.Error()})
		return
	}
	if err := s.sdr.Assign(c.Request.Context(), req.Service, req.Serial); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.sdr.Devices())
}
