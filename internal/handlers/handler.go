package handlers

import (
	"time"

	"ac_watchdog/internal/logger"
	"ac_watchdog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	gatherer prometheus.Gatherer
	log      *logger.Logger
	now      func() time.Time
}

// NewHandler constructs a new HTTP handler with dependencies.
// A nil gatherer leaves /metrics unregistered.
func NewHandler(services *service.Service, gatherer prometheus.Gatherer, log *logger.Logger) *Handler {
	return &Handler{services: services, gatherer: gatherer, log: log, now: time.Now}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	if h.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}

	// Device surface served by the original firmware
	h.registerDeviceRoutes(router)

	h.registerAPIRoutes(router)

	router.GET("/ws", h.wsConnect)
	router.NoRoute(h.notFound)

	return router
}

func (h *Handler) registerDeviceRoutes(r *gin.Engine) {
	r.GET("/", h.index)
	r.GET("/sensData", h.sensData)
	r.GET("/aux", h.aux)
	r.POST("/aux", h.aux)
	r.GET("/jscript.js", h.jscript)
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/status", h.getStatus)
		h.registerWatchdogRoutes(api)
		api.GET("/logs", h.getLogs)
	}
}

func (h *Handler) registerWatchdogRoutes(api *gin.RouterGroup) {
	wd := api.Group("/watchdog")
	{
		wd.POST("/start", h.startWatchdog)
		wd.POST("/stop", h.stopWatchdog)
	}
}
