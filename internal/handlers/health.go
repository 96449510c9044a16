package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

const hostInfoTimeout = 2 * time.Second

// hostInfo is overridden in tests.
var hostInfo = func(ctx context.Context) (gin.H, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := gin.H{
		"hostname":       info.Hostname,
		"uptime_seconds": info.Uptime,
		"booted":         humanize.Time(time.Unix(int64(info.BootTime), 0)),
		"platform":       info.Platform + " " + info.PlatformVersion,
		"kernel":         info.KernelVersion,
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		out["memory_used_percent"] = vm.UsedPercent
	}
	return out, nil
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	resp := gin.H{"status": statusOK}

	ctx, cancel := context.WithTimeout(c.Request.Context(), hostInfoTimeout)
	defer cancel()
	info, err := hostInfo(ctx)
	if err != nil {
		h.logError("host_info_failed", err)
	} else {
		resp["host"] = info
	}
	c.JSON(http.StatusOK, resp)
}
