package metrics

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"requests_total":    GetRequests(),
		"resolutions_total": GetResolutions(),
		"resolution_misses": GetResolutionMisses(),
		"stage_hits":        GetStageHits(),
		"upstream":          GetUpstreamMetrics(),
	})
}
