package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gathergrove/internal/cache"
)

type HealthHandler struct {
	Cache cache.Store
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)
}

func (h *HealthHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) ready(c *gin.Context) {
	if h.Cache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "cache_missing"})
		return
	}
	if _, _, err := h.Cache.Get(c.Request.Context(), "healthcheck"); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "cache_unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
