package handlers

import (
	"net/http"
	"time"

	"pickupwatch/pkg/response"

	"github.com/gin-gonic/gin"
)

// Service identity reported by the health endpoints
const (
	ServiceName    = "pickupwatch"
	ServiceVersion = "1.0.0"
)

// Health reports liveness
func (h *HandlerService) Health(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   ServiceName,
		"version":   ServiceVersion,
	})
}

// Metrics serves Prometheus metrics when enabled
func (h *HandlerService) Metrics(c *gin.Context) {
	if h.metrics == nil {
		HandleError(c, NewServiceUnavailableError("Metrics not enabled", ErrServiceUnavailable))
		return
	}
	h.metrics.ServeHTTP(c.Writer, c.Request)
}

// GetAppConfig returns the current configuration with secrets masked
func (h *HandlerService) GetAppConfig(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.sanitizeConfig())
}

func (h *HandlerService) sanitizeConfig() gin.H {
	cfg := h.config
	out := gin.H{
		"app":       cfg.App,
		"selection": cfg.Selection,
		"countries": cfg.Countries,
	}
	if cfg.Apple != nil {
		out["apple"] = gin.H{
			"cookie_url":        cfg.Apple.CookieURL,
			"verification_url":  cfg.Apple.VerificationURL,
			"static_cookie":     cfg.Apple.Cookie != "",
			"step_delay_ms":     cfg.Apple.StepDelayMs,
			"max_solver_visits": cfg.Apple.MaxSolverVisits,
		}
	}
	if cfg.Telegram != nil {
		out["telegram"] = gin.H{
			"enabled":    cfg.Telegram.Enabled,
			"configured": cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "",
			"on_error":   cfg.Telegram.OnError,
		}
	}
	if cfg.WeCom != nil {
		out["wecom"] = gin.H{
			"enabled":    cfg.WeCom.Enabled,
			"configured": cfg.WeCom.WebhookURL != "",
			"on_error":   cfg.WeCom.OnError,
		}
	}
	if cfg.Watch != nil {
		out["watch"] = cfg.Watch
	}
	return out
}
