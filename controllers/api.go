package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"signalbox/internal/models"
	"signalbox/services"
)

type APIController struct {
	server *services.Server
}

/**
 * Create new API controller instance
 * @param {*services.Server} server - Keeper server
 * @returns {*APIController} New API controller instance
 */
func NewAPIController(server *services.Server) *APIController {
	return &APIController{
		server: server,
	}
}

/**
 * Register system routes to Gin engine
 * @param {*gin.Engine} r - Gin router instance
 * @description
 * - Health probe and prometheus scrape endpoint
 * - Config reload
 * - Host actions and external links
 */
func (a *APIController) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", a.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.POST("/reload", a.ReloadConfig)
	api.GET("/actions", a.ListActions)
	api.POST("/actions/:name", a.RunAction)
	api.GET("/links", a.ListLinks)
}

// @Summary Reload configuration
// @Description Re-read the config file, stop owned children and rebuild the registry
// @Tags System
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/reload [post]
func (a *APIController) ReloadConfig(c *gin.Context) {
	if err := a.server.ReloadFromDisk(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Configuration reloaded successfully",
	})
}

// @Summary Readiness probe
// @Description Version, start time and key counters
// @Tags System
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /healthz [get]
func (a *APIController) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, a.server.Health())
}

// @Summary List host actions
// @Tags System
// @Produce json
// @Success 200 {array} models.Action
// @Router /api/v1/actions [get]
func (a *APIController) ListActions(c *gin.Context) {
	c.JSON(http.StatusOK, a.server.Actions().List())
}

// @Summary Run a host action
// @Tags System
// @Param name path string true "Action name"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/actions/{name} [post]
func (a *APIController) RunAction(c *gin.Context) {
	output, err := a.server.Actions().Run(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(services.HTTPStatus(err), gin.H{
			"code":   services.ErrorCode(err),
			"error":  err.Error(),
			"output": output,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"output": output})
}

// @Summary List external links
// @Tags System
// @Produce json
// @Success 200 {array} models.Link
// @Router /api/v1/links [get]
func (a *APIController) ListLinks(c *gin.Context) {
	links := a.server.Links()
	if links == nil {
		links = []models.Link{}
	}
	c.JSON(http.StatusOK, links)
}
