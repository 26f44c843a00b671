package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gathergrove/internal/models"
	"gathergrove/internal/service"
	"gathergrove/internal/threads"
)

type ThreadsHandler struct {
	Feed    *service.FeedService
	Threads *threads.Store
}

func (h *ThreadsHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/threads")
	group.GET("", h.listThreads)
	group.GET("/:id/messages", h.listMessages)
	group.POST("/:id/messages", h.postMessage)
}

func (h *ThreadsHandler) listThreads(c *gin.Context) {
	list := h.Threads.Threads()
	out := make([]gin.H, 0, len(list))
	for _, th := range list {
		out = append(out, gin.H{
			"thread": th,
			"unread": h.Threads.Unread(th.ID),
		})
	}
	Ok(c, out, nil)
}

func (h *ThreadsHandler) listMessages(c *gin.Context) {
	id := c.Param("id")
	msgs := h.Threads.Messages(id)
	h.Threads.MarkRead(c.Request.Context(), id)
	Ok(c, msgs, nil)
}

type postMessageRequest struct {
	Body string `json:"body"`
}

func (h *ThreadsHandler) postMessage(c *gin.Context) {
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Body) == "" {
		Error(c, http.StatusBadRequest, "body is required", nil)
		return
	}
	from := models.Person{}
	if viewer := h.Feed.Viewer(); viewer != nil {
		from = models.Person{ID: viewer.ID, Label: viewer.Label}
	}
	msg := h.Threads.Append(c.Request.Context(), c.Param("id"), from, req.Body)
	Ok(c, msg, nil)
}
