package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rdrlink/shortener/internal/models"
)

// ClickRecorder stores one click. It never fails from the caller's side.
type ClickRecorder interface {
	Record(ctx context.Context, linkID uuid.UUID, meta models.ClickMetadata)
}

// ClickHandler records clicks observed outside this process, e.g. by an
// edge redirector.
type ClickHandler struct {
	recorder ClickRecorder
}

// NewClickHandler creates a new click handler.
func NewClickHandler(recorder ClickRecorder) *ClickHandler {
	return &ClickHandler{recorder: recorder}
}

// ===========================================
// POST /api/clicks
// ===========================================
// Request: {"link_id": "...", "ip": "...", "user_agent": "...", ...}
// Response (202): {"success": true}
//
// Storage failures are logged by the recorder and still acknowledged.
func (h *ClickHandler) Record(c *gin.Context) {
	var req models.RecordClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	h.recorder.Record(c.Request.Context(), req.LinkID, req.Metadata())
	c.JSON(http.StatusAccepted, gin.H{"success": true})
}
