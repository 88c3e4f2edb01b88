package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/cosmium2004/Customer-Insights-sub000/docs"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/dto"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/realtime"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/service"
)

// Handler serves the HTTP API of the ingestion service
type Handler struct {
	interactions service.InteractionServicer
	insights     service.InsightsServicer
	hub          *realtime.Hub
	metrics      http.Handler
	router       *gin.Engine
	log          *zap.Logger
}

// NewHandler wires the routes. A nil metrics handler serves the default Prometheus registry.
func NewHandler(interactions service.InteractionServicer, insights service.InsightsServicer, hub *realtime.Hub, metrics http.Handler, log *zap.Logger) *Handler {
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	h := &Handler{
		interactions: interactions,
		insights:     insights,
		hub:          hub,
		metrics:      metrics,
		router:       gin.New(),
		log:          log,
	}
	h.router.Use(gin.Recovery())

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.GET("/metrics", gin.WrapH(h.metrics))
	h.router.POST("/interactions", h.ingestInteraction)
	h.router.POST("/interactions/batch", h.ingestBatch)
	h.router.GET("/customers/:id", h.getCustomer)
	h.router.GET("/dashboard", h.getDashboard)
	h.router.GET("/ws", h.streamInteractions())
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

// ingestInteraction handles POST /interactions
// @Summary Ingest a single interaction
// @Description Validate, enrich and store one interaction, then dispatch its analysis job
// @Tags interactions
// @Accept json
// @Produce json
// @Param interaction body dto.InteractionRequest true "Interaction"
// @Success 201 {object} dto.IngestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /interactions [post]
func (h *Handler) ingestInteraction(c *gin.Context) {
	var req dto.InteractionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid interaction request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	interactionID, err := h.interactions.Ingest(c.Request.Context(), &req)
	if err != nil {
		h.writeIngestError(c, &req, err)
		return
	}

	h.log.Info("Interaction ingested",
		zap.String("interaction_id", interactionID),
		zap.String("customer_id", req.CustomerID))

	c.JSON(http.StatusCreated, dto.IngestResponse{
		Success:       true,
		InteractionID: interactionID,
	})
}

func (h *Handler) writeIngestError(c *gin.Context, req *dto.InteractionRequest, err error) {
	var validationErr *domain.ValidationError
	var enrichErr *domain.EnrichmentError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: "interaction failed validation",
			Details: validationErr.Fields,
		})
	case errors.As(err, &enrichErr) && errors.Is(err, domain.ErrCustomerNotFound):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_customer",
			Message: "customer not found",
		})
	default:
		h.log.Error("Failed to ingest interaction",
			zap.Error(err),
			zap.String("customer_id", req.CustomerID))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: "failed to ingest interaction",
		})
	}
}

// ingestBatch handles POST /interactions/batch
// @Summary Ingest a batch of interactions
// @Description Ingest interactions in chunks of at most 100; each chunk commits or rolls back as a unit
// @Tags interactions
// @Accept json
// @Produce json
// @Param batch body dto.BatchInteractionRequest true "Interactions"
// @Success 200 {object} dto.BatchIngestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /interactions/batch [post]
func (h *Handler) ingestBatch(c *gin.Context) {
	var req dto.BatchInteractionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid batch request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	response, err := h.interactions.IngestBatch(c.Request.Context(), req.Interactions)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "invalid_request",
				Message: err.Error(),
			})
			return
		}
		h.log.Error("Failed to ingest batch",
			zap.Error(err),
			zap.Int("items", len(req.Interactions)))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: "failed to ingest batch",
		})
		return
	}

	h.log.Info("Batch processed",
		zap.Int("total", response.Summary.Total),
		zap.Int("successful", response.Summary.Successful),
		zap.Int("failed", response.Summary.Failed))

	c.JSON(http.StatusOK, response)
}

// getCustomer handles GET /customers/:id
// @Summary Get a customer view
// @Description Customer row with its most recent interactions
// @Tags insights
// @Produce json
// @Param id path string true "Customer ID"
// @Param organization_id query string true "Organization ID"
// @Success 200 {object} domain.CustomerProfile
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /customers/{id} [get]
func (h *Handler) getCustomer(c *gin.Context) {
	customerID := c.Param("id")
	organizationID := c.Query("organization_id")
	if organizationID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "organization_id is required",
		})
		return
	}
	if _, err := uuid.Parse(customerID); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "customer id must be a UUID",
		})
		return
	}

	profile, err := h.insights.GetCustomerProfile(c.Request.Context(), customerID, organizationID)
	if errors.Is(err, domain.ErrCustomerNotFound) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "not_found",
			Message: "customer not found",
		})
		return
	}
	if err != nil {
		h.log.Error("Failed to get customer profile",
			zap.Error(err),
			zap.String("customer_id", customerID),
			zap.String("organization_id", organizationID))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: "failed to get customer profile",
		})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// getDashboard handles GET /dashboard
// @Summary Get the organization dashboard
// @Description Aggregated interaction metrics of one organization within a time range
// @Tags insights
// @Produce json
// @Param organization_id query string true "Organization ID"
// @Param from query int true "Start of the range (unix seconds)"
// @Param to query int true "End of the range (unix seconds)"
// @Param group_by query string false "Grouping" Enums(channel, hour, day)
// @Success 200 {object} dto.DashboardResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /dashboard [get]
func (h *Handler) getDashboard(c *gin.Context) {
	var req dto.DashboardRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid dashboard request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	response, err := h.insights.GetDashboard(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "invalid_request",
				Message: err.Error(),
			})
			return
		}
		h.log.Error("Failed to get dashboard",
			zap.Error(err),
			zap.String("organization_id", req.OrganizationID),
			zap.Int64("from", req.From),
			zap.Int64("to", req.To))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: "failed to get dashboard",
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// streamInteractions handles GET /ws
// @Summary Subscribe to new interactions
// @Description Websocket stream of interaction.created events for one organization
// @Tags realtime
// @Param organization_id query string true "Organization ID"
// @Success 101 "Switching Protocols"
// @Failure 400 {object} dto.ErrorResponse
// @Router /ws [get]
func (h *Handler) streamInteractions() gin.HandlerFunc {
	return realtime.ServeWS(h.hub, h.log)
}
