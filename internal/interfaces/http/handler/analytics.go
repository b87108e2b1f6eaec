package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/techlogistics/backend/internal/application/pipeline"
	"github.com/techlogistics/backend/internal/interfaces/http/dto"
	"github.com/techlogistics/backend/internal/interfaces/http/router"
)

// AnalyticsHandler handles analytical query endpoints
type AnalyticsHandler struct {
	BaseHandler
	service *pipeline.Service
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(service *pipeline.Service) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// RegisterRoutes registers the analytics routes
func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewDomainGroup("/analytics").
		POST("/query", h.Query).
		RegisterRoutes(rg)
}

// Query godoc
//
//	@Summary		Run the analytical engine over the last pipeline run
//	@Description	Applies the filter and returns the KPI set plus the five fixed analyses
//	@Tags			analytics
//	@Accept			json
//	@Produce		json
//	@Param			filter	body		dto.FilterRequest	false	"Analysis filter"
//	@Success		200		{object}	dto.Response
//	@Failure		400		{object}	dto.Response
//	@Failure		409		{object}	dto.Response
//	@Router			/analytics/query [post]
func (h *AnalyticsHandler) Query(c *gin.Context) {
	var req dto.FilterRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, "invalid filter: "+err.Error())
			return
		}
	}

	result, err := h.service.Query(c.Request.Context(), req.ToFilterSpec())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
