package handlers

import (
	"failureguard/internal/logger"
	"failureguard/internal/service"

	"github.com/gin-gonic/gin"

	_ "failureguard/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), corsMiddleware)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/", h.root)

	// Dashboard read model
	h.registerReadingRoutes(router)

	// LLM-backed assistant
	router.POST("/query", h.query)

	// Versioned history endpoints
	h.registerAPIRoutes(router)

	// Live push for the dashboard, same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerReadingRoutes(r *gin.Engine) {
	r.GET("/sensors", h.getSensors)
	r.GET("/alerts", h.getAlerts)
	r.GET("/health", h.getHealth)
	r.GET("/summary", h.getSummary)
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/machines", h.getMachines)
		api.GET("/events", h.getEvents)
	}
}
