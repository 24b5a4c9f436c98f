package feedback

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-feedback/internal/shared/metrics"
	"resume-feedback/internal/shared/server/middleware"
	"resume-feedback/internal/shared/server/respond"
	"resume-feedback/internal/shared/telemetry"
)

const maxBodySize = 1 << 20 // 1MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches feedback routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/feedback", h.submit)
	rg.POST("/feedback/preview", h.preview)
	rg.GET("/feedback", h.list)
	rg.GET("/feedback/:id", h.get)
	rg.GET("/feedback/:id/details", h.details)
}

func (h *Handler) submit(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	rec, err := h.Svc.Submit(c.Request.Context(), userID, req.DocumentID, req.Feedback)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store feedback", nil)
		}
		return
	}
	c.Set("feedbackId", rec.ID)
	respond.JSON(c, http.StatusCreated, rec)
}

func (h *Handler) get(c *gin.Context) {
	rec, ok := h.load(c)
	if !ok {
		return
	}
	respond.OK(c, rec)
}

func (h *Handler) details(c *gin.Context) {
	rec, ok := h.load(c)
	if !ok {
		return
	}
	writeHTML(c, &rec.Feedback)
}

// preview renders an ad-hoc body without storing it. Malformed category
// fields degrade to defaults; only a body that is not JSON at all is rejected.
func (h *Handler) preview(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read body", nil)
		return
	}
	var fb Feedback
	if len(bytes.TrimSpace(body)) > 0 {
		if !json.Valid(body) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "body must be JSON", nil)
			return
		}
		if err := json.Unmarshal(body, &fb); err != nil {
			telemetry.Debug("feedback.preview.degraded", map[string]any{"error": err})
			fb = Feedback{}
		}
	}
	writeHTML(c, &fb)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	recs, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list feedback", nil)
		}
		return
	}

	resp := make([]recordSummary, 0, len(recs))
	for _, rec := range recs {
		resp = append(resp, toSummary(rec))
	}
	respond.OK(c, resp)
}

func (h *Handler) load(c *gin.Context) (Record, bool) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set("feedbackId", id)

	rec, err := h.Svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "feedback not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch feedback", nil)
		}
		return Record{}, false
	}
	return rec, true
}

func writeHTML(c *gin.Context, fb *Feedback) {
	var buf bytes.Buffer
	if err := Render(&buf, fb); err != nil {
		respond.Error(c, http.StatusInternalServerError, "render_error", "failed to render feedback", nil)
		return
	}
	metrics.IncFeedbackRender()
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
