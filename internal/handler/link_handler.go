package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/rdrlink/shortener/internal/middleware"
	"github.com/rdrlink/shortener/internal/models"
	"github.com/rdrlink/shortener/internal/service"
)

const (
	defaultQRSize = 256
	minQRSize     = 64
	maxQRSize     = 1024
)

// LinkHandler handles link management requests.
type LinkHandler struct {
	links  *service.LinkService
	logger *zap.Logger
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(links *service.LinkService, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{links: links, logger: logger}
}

// ===========================================
// POST /api/links
// ===========================================
// Creates a new short link. An API key is optional; when present its ID
// becomes the link owner.
//
// Request:
//
//	{
//	  "url": "https://example.com/very/long/url",
//	  "custom_code": "spring",     // optional, 3-20 chars
//	  "domain": "go.example.com",  // optional, defaults to the primary domain
//	  "expires_at": "2030-01-01T00:00:00Z"
//	}
//
// Response (201): the link plus "short_url".
func (h *LinkHandler) Create(c *gin.Context) {
	var req models.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	resp, err := h.links.Create(c.Request.Context(), service.CreateLinkInput{
		URL:         req.URL,
		Domain:      req.Domain,
		CustomCode:  req.CustomCode,
		Title:       req.Title,
		Description: req.Description,
		Password:    req.Password,
		ExpiresAt:   req.ExpiresAt,
		ProjectID:   req.ProjectID,
		OwnerID:     middleware.OwnerID(c),
	})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	// 201 Created for new resources (not 200 OK)
	c.JSON(http.StatusCreated, resp)
}

// ===========================================
// GET /api/links/lookup?code=&domain=
// ===========================================
// Public lookup in exactly one domain (primary when omitted).
// Response: 200 link, 404 not found, 410 expired.
func (h *LinkHandler) Lookup(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		badRequest(c, "Query parameter \"code\" is required", nil)
		return
	}

	link, err := h.links.GetByShortCode(c.Request.Context(), code, c.Query("domain"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.LinkResponse{
		Link:        link,
		ShortURL:    h.links.ShortURL(link),
		HasPassword: link.HasPassword(),
	})
}

// ===========================================
// GET /api/links?limit=&cursor=&project_id=&search=
// ===========================================
// Lists the caller's links, newest first. Pass "next_cursor" from one
// page as "cursor" to get the next.
func (h *LinkHandler) List(c *gin.Context) {
	owner := middleware.OwnerID(c)
	if owner == nil {
		unauthorized(c)
		return
	}

	in := service.ListLinksInput{OwnerID: *owner, Search: c.Query("search")}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "Invalid limit", err)
			return
		}
		in.Limit = limit
	}
	if raw := c.Query("cursor"); raw != "" {
		cursor, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "Invalid cursor", err)
			return
		}
		in.Cursor = &cursor
	}
	if raw := c.Query("project_id"); raw != "" {
		project, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "Invalid project_id", err)
			return
		}
		in.ProjectID = &project
	}

	resp, err := h.links.List(c.Request.Context(), in)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET /api/links/:id
func (h *LinkHandler) Get(c *gin.Context) {
	owner, id, ok := ownerAndLinkID(c)
	if !ok {
		return
	}

	resp, err := h.links.GetOwned(c.Request.Context(), owner, id)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ===========================================
// PATCH /api/links/:id
// ===========================================
// Changes title, description, password or expiry. Omitted fields are
// left as they are.
func (h *LinkHandler) Update(c *gin.Context) {
	owner, id, ok := ownerAndLinkID(c)
	if !ok {
		return
	}

	var req models.UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	resp, err := h.links.Update(c.Request.Context(), owner, id, service.UpdateLinkInput{
		Title:       req.Title,
		Description: req.Description,
		Password:    req.Password,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ===========================================
// DELETE /api/links/:id
// ===========================================
// Deletes a link and its click history.
//
// Response: 204 No Content (success, no body)
func (h *LinkHandler) Delete(c *gin.Context) {
	owner, id, ok := ownerAndLinkID(c)
	if !ok {
		return
	}

	if err := h.links.Delete(c.Request.Context(), owner, id); err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===========================================
// GET /api/links/:id/qr?size=
// ===========================================
// PNG QR code of the short URL. size is the edge length in pixels.
func (h *LinkHandler) QRCode(c *gin.Context) {
	owner, id, ok := ownerAndLinkID(c)
	if !ok {
		return
	}

	size := defaultQRSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < minQRSize || n > maxQRSize {
			badRequest(c, "Invalid size", nil)
			return
		}
		size = n
	}

	link, err := h.links.GetOwned(c.Request.Context(), owner, id)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	png, err := qrcode.Encode(link.ShortURL, qrcode.Medium, size)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// ownerAndLinkID reads the caller and the :id path parameter, writing the
// error response itself when either is missing.
func ownerAndLinkID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	owner := middleware.OwnerID(c)
	if owner == nil {
		unauthorized(c)
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// Malformed IDs cannot name a link.
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "Link not found",
			Code:  models.ErrCodeNotFound,
		})
		return uuid.Nil, uuid.Nil, false
	}
	return *owner, id, true
}
