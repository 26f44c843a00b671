package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gathergrove/internal/models"
	"gathergrove/internal/rsvp"
	"gathergrove/internal/service"
)

type RsvpHandler struct {
	Feed  *service.FeedService
	Rsvps *rsvp.Store
}

func (h *RsvpHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/events/:id/rsvp")
	group.POST("", h.setChoice)
	group.DELETE("", h.clearChoice)
}

type setChoiceRequest struct {
	Choice string `json:"choice"`
}

func (h *RsvpHandler) setChoice(c *gin.Context) {
	var req setChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	choice := models.Choice(req.Choice)
	if !choice.Valid() || choice == models.ChoiceNone {
		Error(c, http.StatusBadRequest, "choice must be going, maybe or cant", nil)
		return
	}
	h.apply(c, choice)
}

func (h *RsvpHandler) clearChoice(c *gin.Context) {
	h.apply(c, models.ChoiceNone)
}

func (h *RsvpHandler) apply(c *gin.Context, choice models.Choice) {
	event, ok := h.Feed.Event(c.Param("id"))
	if !ok {
		Error(c, http.StatusNotFound, "unknown event", nil)
		return
	}
	// Optimistic: the response carries the local state; the backend sync
	// runs behind it and reconciles counts later.
	state := h.Rsvps.SetChoice(c.Request.Context(), event, choice)
	Ok(c, state, map[string]any{"eventId": event.ID})
}
