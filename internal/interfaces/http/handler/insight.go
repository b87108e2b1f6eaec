package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/techlogistics/backend/internal/application/insight"
	"github.com/techlogistics/backend/internal/application/pipeline"
	"github.com/techlogistics/backend/internal/interfaces/http/dto"
	"github.com/techlogistics/backend/internal/interfaces/http/router"
)

// InsightHandler handles narrative insight generation. It sits behind the
// read-only KPI boundary: a generator failure never affects analytical
// results, it only fails this endpoint.
type InsightHandler struct {
	BaseHandler
	pipelines *pipeline.Service
	insights  *insight.Service
}

// NewInsightHandler creates a new InsightHandler
func NewInsightHandler(pipelines *pipeline.Service, insights *insight.Service) *InsightHandler {
	return &InsightHandler{pipelines: pipelines, insights: insights}
}

// RegisterRoutes registers the insight routes
func (h *InsightHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewDomainGroup("/insights").
		POST("", h.Generate).
		RegisterRoutes(rg)
}

// Generate godoc
//
//	@Summary		Generate a narrative insight for the filtered results
//	@Description	Runs the analytical engine with the given filter and asks the external generator for an executive summary
//	@Tags			insights
//	@Accept			json
//	@Produce		json
//	@Param			filter	body		dto.FilterRequest	false	"Analysis filter"
//	@Success		200		{object}	dto.Response
//	@Failure		409		{object}	dto.Response
//	@Failure		502		{object}	dto.Response
//	@Router			/insights [post]
func (h *InsightHandler) Generate(c *gin.Context) {
	var req dto.FilterRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, "invalid filter: "+err.Error())
			return
		}
	}

	result, err := h.pipelines.Query(c.Request.Context(), req.ToFilterSpec())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	summary, err := h.insights.Generate(c.Request.Context(), result)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
