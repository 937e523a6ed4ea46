package anime

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/animebridge/anime-proxy/pkg/logger"
	"github.com/animebridge/anime-proxy/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// Handler exposes the proxy's /api endpoints.
type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Handler{service: service, log: log.WithContext("component", "anime_handler")}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")
	{
		api.GET("/search", h.Search)
		api.GET("/sources/:id", h.Sources)
		api.GET("/:id", h.GetAnime)
	}
}

// Search answers GET /api/search?query=
func (h *Handler) Search(c *gin.Context) {
	metrics.IncrementRequests()
	query := c.Query("query")
	h.log.Info("search_request", "query", query)

	result, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Search query is required"})
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "No episodes found"})
		default:
			h.fail(c, "Error fetching episodes", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// GetAnime answers GET /api/:id for bare ids and -<digits> slugs.
func (h *Handler) GetAnime(c *gin.Context) {
	metrics.IncrementRequests()
	id := c.Param("id")
	h.log.Info("episode_request", "id", id)

	result, err := h.service.AnimeByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Anime not found"})
			return
		}
		h.fail(c, "Error fetching episodes", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// Sources answers GET /api/sources/:id?ep=
func (h *Handler) Sources(c *gin.Context) {
	metrics.IncrementRequests()
	id := c.Param("id")
	ep, err := strconv.Atoi(c.Query("ep"))
	if err != nil || ep < 0 {
		ep = 0
	}
	h.log.Info("sources_request", "id", id, "ep", ep)

	result, err := h.service.EpisodeSources(c.Request.Context(), id, ep)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Episode number required. Use: ?ep={number}"})
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Anime not found"})
		case errors.Is(err, ErrEpisodeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Episode not found"})
		default:
			h.fail(c, "Error fetching sources", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

func (h *Handler) fail(c *gin.Context, message string, err error) {
	h.log.Error("request_failed", "path", c.Request.URL.Path, "message", message, "error", err.Error())
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"message": message,
		"error":   err.Error(),
	})
}
