package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"gathergrove/internal/models"
	"gathergrove/internal/rsvp"
	"gathergrove/internal/service"
)

type FeedHandler struct {
	Feed  *service.FeedService
	Rsvps *rsvp.Store
}

func (h *FeedHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1")
	group.GET("/feed", h.getFeed)
	group.POST("/feed/refresh", h.refresh)
	group.POST("/events", h.createDraft)
}

func (h *FeedHandler) getFeed(c *gin.Context) {
	now := time.Now().UTC()
	if at := strings.TrimSpace(c.Query("at")); at != "" {
		if parsed, err := time.Parse(time.RFC3339, at); err == nil {
			now = parsed.UTC()
		}
	}
	buckets := h.Feed.Snapshot(now)

	var states map[string]models.RsvpState
	if h.Rsvps != nil {
		states = h.Rsvps.Snapshot()
	}
	Ok(c, gin.H{
		"happeningNow": buckets.HappeningNow,
		"future":       buckets.Future,
		"rsvps":        states,
	}, map[string]any{"now": now.Format(time.RFC3339)})
}

func (h *FeedHandler) refresh(c *gin.Context) {
	if err := h.Feed.Refresh(c.Request.Context()); err != nil {
		// Stale data is still served; tell the caller the fetch failed.
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"events": len(h.Feed.Events())}, nil)
}

type createDraftRequest struct {
	Kind            string   `json:"kind"`
	Title           string   `json:"title"`
	Details         string   `json:"details"`
	When            string   `json:"when"`
	Category        string   `json:"category"`
	RecipientIDs    []string `json:"recipientIds"`
	RecipientLabels []string `json:"recipientLabels"`
}

func (h *FeedHandler) createDraft(c *gin.Context) {
	var req createDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		Error(c, http.StatusBadRequest, "title is required", nil)
		return
	}

	e := models.Event{
		Kind:            models.KindFuture,
		Title:           strings.TrimSpace(req.Title),
		Details:         req.Details,
		Category:        models.Category(req.Category),
		RecipientIDs:    req.RecipientIDs,
		RecipientLabels: req.RecipientLabels,
	}
	if strings.EqualFold(req.Kind, string(models.KindHappening)) {
		e.Kind = models.KindHappening
	}
	if req.When != "" {
		when, err := time.Parse(time.RFC3339, req.When)
		if err != nil {
			Error(c, http.StatusBadRequest, "when must be RFC3339", nil)
			return
		}
		when = when.UTC()
		e.When = &when
	}

	draft := h.Feed.AddDraft(c.Request.Context(), e)
	Ok(c, draft, nil)
}
