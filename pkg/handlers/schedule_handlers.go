package handlers

import (
	"net/http"

	"pickupwatch/pkg/logger"
	"pickupwatch/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetScheduledJobs returns all scheduled jobs
func (h *HandlerService) GetScheduledJobs(c *gin.Context) {
	if !h.IsSchedulerAvailable() {
		HandleError(c, NewServiceUnavailableError("Scheduler not available", ErrServiceUnavailable))
		return
	}

	jobs := h.scheduler.GetJobs()
	response.JSON(c, http.StatusOK, gin.H{
		"jobs":      jobs,
		"count":     len(jobs),
		"timestamp": getCurrentTimestamp(),
	})
}

// TriggerJob starts a scheduled check immediately
func (h *HandlerService) TriggerJob(c *gin.Context) {
	if !h.IsSchedulerAvailable() {
		HandleError(c, NewServiceUnavailableError("Scheduler not available", ErrServiceUnavailable))
		return
	}

	jobID := c.Param("id")
	if _, err := h.scheduler.GetJob(jobID); err != nil {
		HandleError(c, NewNotFoundError("Job not found", err))
		return
	}

	requestID := c.GetString("RequestID")
	go func() {
		if err := h.scheduler.TriggerJob(jobID); err != nil {
			logger.Error("Failed to trigger job", zap.String("job_id", jobID), zap.String("request_id", requestID), zap.Error(err))
		}
	}()

	response.JSON(c, http.StatusAccepted, gin.H{
		"message": "Check triggered",
		"job_id":  jobID,
	})
}
