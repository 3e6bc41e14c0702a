package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/avataa-hq/avataa-events/docs"
	"github.com/avataa-hq/avataa-events/internal/dto"
	"github.com/avataa-hq/avataa-events/internal/query"
	"github.com/avataa-hq/avataa-events/internal/service"
)

type Handler struct {
	eventService service.EventServicer
	router       *gin.Engine
	log          *zap.Logger
}

func NewHandler(eventService service.EventServicer, log *zap.Logger) *Handler {
	h := &Handler{
		eventService: eventService,
		router:       gin.Default(),
		log:          log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.POST("/events/get_events_by_filter", h.getEventsByFilter)
	h.router.POST("/events/get_parameter_by_object_ids", h.getParameterByObjectIDs)
	h.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheck handles health check requests
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// getEventsByFilter handles POST /events/get_events_by_filter
// @Summary Query the event trail
// @Description Filter and sort attribute events across the inventory kinds. A filter on the pseudo-field "instance" routes the query to that kind's index.
// @Tags events
// @Accept json
// @Produce json
// @Param request body dto.GetEventsRequest true "Filter request"
// @Success 200 {object} dto.GetEventsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /events/get_events_by_filter [post]
func (h *Handler) getEventsByFilter(c *gin.Context) {
	var req dto.GetEventsRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid events request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	token := c.GetHeader("Authorization")

	response, err := h.eventService.GetEventsByFilter(c.Request.Context(), &req, token)
	if err != nil {
		if errors.Is(err, query.ErrInvalidColumn) {
			h.log.Warn("Rejected events request", zap.Error(err))
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "validation_error",
				Message: err.Error(),
			})
			return
		}

		h.log.Error("Failed to query events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// getParameterByObjectIDs handles POST /events/get_parameter_by_object_ids
// @Summary Parameter history by objects
// @Description Reconstruct each requested object's parameter value history, grouped by object id.
// @Tags events
// @Accept json
// @Produce json
// @Param request body dto.GetParameterHistoryRequest true "History request"
// @Success 200 {object} dto.GetParameterHistoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /events/get_parameter_by_object_ids [post]
func (h *Handler) getParameterByObjectIDs(c *gin.Context) {
	var req dto.GetParameterHistoryRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid parameter history request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	token := c.GetHeader("Authorization")

	response, err := h.eventService.GetParameterHistoryByObjectIDs(c.Request.Context(), &req, token)
	if err != nil {
		h.log.Error("Failed to query parameter history",
			zap.Int("object_count", len(req.ObjectIDs)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}
