package handlers

import (
	"net/http"
	"time"

	"pickupwatch/pkg/response"

	"github.com/gin-gonic/gin"
)

// GetStatus returns the latest availability check per model
func (h *HandlerService) GetStatus(c *gin.Context) {
	body := gin.H{
		"service":   ServiceName,
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
		"timestamp": getCurrentTimestamp(),
		"last_run":  nil,
	}

	if h.checker != nil {
		if run := h.checker.Status(); run != nil {
			body["last_run"] = run
		}
	}
	if h.IsSchedulerAvailable() {
		body["scheduler"] = h.scheduler.GetStatus()
	}

	response.JSON(c, http.StatusOK, body)
}
