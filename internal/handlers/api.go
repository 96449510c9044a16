package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK      = "ok"
	statusStarted = "started"
	statusStopped = "stopped"

	errStartWatchdog = "failed to start watchdog"
	errStopWatchdog  = "failed to stop watchdog"
	errGetStatus     = "failed to load status"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	h.logError(logKey, err, kv...)
	c.JSON(httpCode, gin.H{"error": userMsg})
}

func (h *Handler) logError(logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
}

// Respond with a status and include the watchdog state if available (best-effort).
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string) {
	resp := gin.H{"status": status}
	if st, err := h.services.WatchdogControl.Snapshot(c.Request.Context()); err == nil {
		resp["watchdog"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Detailed status
// @Description  Sensors with offending flags, thresholds, run state and alarm counters
// @Tags         watchdog
// @Produce      json
// @Success      200  {object}  models.StatusSnapshot
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/status [get]
func (h *Handler) getStatus(c *gin.Context) {
	snap, err := h.services.Monitoring.Detailed(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStatus, "status_failed", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary      Start watchdog
// @Tags         watchdog
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, watchdog"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/watchdog/start [post]
func (h *Handler) startWatchdog(c *gin.Context) {
	if err := h.services.WatchdogControl.Start(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errStartWatchdog, "watchdog_start_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusStarted)
}

// @Summary      Stop watchdog
// @Tags         watchdog
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, watchdog"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/watchdog/stop [post]
func (h *Handler) stopWatchdog(c *gin.Context) {
	if err := h.services.WatchdogControl.Stop(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errStopWatchdog, "watchdog_stop_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusStopped)
}
