package handlers

import (
	"net/http"
	"time"

	"pickupwatch/pkg/apple"
	"pickupwatch/pkg/config"
	"pickupwatch/pkg/logger"
	"pickupwatch/pkg/scheduler"
)

// StatusProvider exposes the latest availability check
type StatusProvider interface {
	Status() *apple.RunStatus
}

// JobController lists and triggers scheduled checks
type JobController interface {
	GetJobs() []*scheduler.ScheduledJob
	GetJob(jobID string) (*scheduler.ScheduledJob, error)
	TriggerJob(jobID string) error
	GetStatus() map[string]interface{}
}

// HandlerService provides HTTP handlers for the API
type HandlerService struct {
	config    *config.Config
	checker   StatusProvider
	scheduler JobController
	metrics   http.Handler
	startedAt time.Time
}

// NewHandlerService creates a new handler service
func NewHandlerService(cfg *config.Config, checker StatusProvider) *HandlerService {
	logger.Info("Initializing handler service")

	return &HandlerService{
		config:    cfg,
		checker:   checker,
		startedAt: time.Now(),
	}
}

// SetScheduler sets the scheduler reference (called after scheduler is created)
func (h *HandlerService) SetScheduler(s JobController) {
	h.scheduler = s
}

// SetMetrics sets the Prometheus exposition handler
func (h *HandlerService) SetMetrics(handler http.Handler) {
	h.metrics = handler
}

// IsSchedulerAvailable checks if scheduler is available
func (h *HandlerService) IsSchedulerAvailable() bool {
	return h.scheduler != nil
}

func getCurrentTimestamp() int64 {
	return time.Now().Unix()
}
