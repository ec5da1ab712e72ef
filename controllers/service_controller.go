package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"signalbox/internal/models"
	"signalbox/services"
)

type ServiceController struct {
	service *services.ServiceManager
}

/**
 * Create new Service controller instance
 * @param {*services.ServiceManager} service - Service registry
 * @returns {*ServiceController} New Service controller instance
 */
func NewServiceController(service *services.ServiceManager) *ServiceController {
	return &ServiceController{
		service: service,
	}
}

/**
 * Register all service API routes
 * @param {*gin.Engine} r - Gin engine
 * @description
 * - list/get/start/stop/restart and placeholder overrides
 */
func (s *ServiceController) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	api.GET("/services", s.ListServices)
	api.GET("/services/:name", s.GetService)
	api.POST("/services/:name/start", s.StartService)
	api.POST("/services/:name/stop", s.StopService)
	api.POST("/services/:name/restart", s.RestartService)
	api.PUT("/services/:name/params", s.SetParam)
}

// ListServices lists all configured services with a fresh status
//
//	@Summary		List all services
//	@Tags			Services
//	@Produce		json
//	@Success		200	{array}		models.ServiceDetail
//	@Router			/api/v1/services [get]
func (s *ServiceController) ListServices(c *gin.Context) {
	results := []models.ServiceDetail{}
	for _, si := range s.service.GetInstances() {
		d, err := s.service.GetDetail(c.Request.Context(), si.ID)
		if err != nil {
			continue
		}
		results = append(results, d)
	}
	c.JSON(http.StatusOK, results)
}

// GetService returns one service
//
//	@Summary		Get service
//	@Tags			Services
//	@Produce		json
//	@Param			name	path		string	true	"Service id"
//	@Success		200		{object}	models.ServiceDetail
//	@Failure		404		{object}	models.ErrorResponse
//	@Router			/api/v1/services/{name} [get]
func (s *ServiceController) GetService(c *gin.Context) {
	d, err := s.service.GetDetail(c.Request.Context(), c.Param("name"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// StartService starts a service
//
//	@Summary		Start service
//	@Tags			Services
//	@Param			name	path		string	true	"Service id"
//	@Success		200		{object}	models.ServiceDetail
//	@Failure		404		{object}	models.ErrorResponse	"Service not found"
//	@Failure		409		{object}	models.ErrorResponse	"Already running"
//	@Failure		500		{object}	models.ErrorResponse
//	@Router			/api/v1/services/{name}/start [post]
func (s *ServiceController) StartService(c *gin.Context) {
	s.act(c, s.service.StartService)
}

// StopService stops a service
//
//	@Summary		Stop service
//	@Tags			Services
//	@Param			name	path		string	true	"Service id"
//	@Success		200		{object}	models.ServiceDetail
//	@Failure		404		{object}	models.ErrorResponse	"Service not found"
//	@Failure		409		{object}	models.ErrorResponse	"Not running"
//	@Router			/api/v1/services/{name}/stop [post]
func (s *ServiceController) StopService(c *gin.Context) {
	s.act(c, s.service.StopService)
}

// RestartService restarts a service
//
//	@Summary		Restart service
//	@Tags			Services
//	@Param			name	path		string	true	"Service id"
//	@Success		200		{object}	models.ServiceDetail
//	@Failure		404		{object}	models.ErrorResponse	"Service not found"
//	@Router			/api/v1/services/{name}/restart [post]
func (s *ServiceController) RestartService(c *gin.Context) {
	s.act(c, s.service.RestartService)
}

func (s *ServiceController) act(c *gin.Context, action func(ctx context.Context, id string) error) {
	name := c.Param("name")
	if err := action(c.Request.Context(), name); err != nil {
		abortWithError(c, err)
		return
	}
	d, err := s.service.GetDetail(c.Request.Context(), name)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// SetParam overrides one command placeholder of a cli service
//
//	@Summary		Set service parameter
//	@Tags			Services
//	@Accept			json
//	@Param			name	path		string				true	"Service id"
//	@Param			body	body		models.ParamRequest	true	"Placeholder and value"
//	@Success		200		{object}	models.ServiceDetail
//	@Failure		400		{object}	models.ErrorResponse
//	@Router			/api/v1/services/{name}/params [put]
func (s *ServiceController) SetParam(c *gin.Context) {
	var req models.ParamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, &models.ErrorResponse{Code: "request.invalid", Error: err.Error()})
		return
	}
	name := c.Param("name")
	if err := s.service.SetParam(name, req.Name, req.Value); err != nil {
		abortWithError(c, err)
		return
	}
	d, err := s.service.GetDetail(c.Request.Context(), name)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
