package rasterize

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-feedback/internal/shared/server/respond"
)

const defaultMaxUploadBytes = 10 << 20

// Handler exposes the rasterizer over HTTP.
type Handler struct {
	Rasterizer     *Rasterizer
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(r *Rasterizer, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Rasterizer: r, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches rasterize routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/rasterize", h.rasterize)
}

func (h *Handler) rasterize(c *gin.Context) {
	if err := h.Rasterizer.Available(); err != nil {
		WriteResult(c, Result{Stage: StageUninitialized, Err: err}, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	res, err := h.Rasterizer.Convert(c.Request.Context(), file)
	WriteResult(c, res, err)
}

// WriteResult writes a conversion outcome: the PNG on success, 422 with
// {"file": null} on pipeline failure, 503 when no engine can run.
func WriteResult(c *gin.Context, res Result, err error) {
	c.Set("rasterizeStage", string(res.Stage))

	if err != nil {
		if errors.Is(err, ErrPrecondition) {
			respond.Error(c, http.StatusServiceUnavailable, "renderer_unavailable", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render document", nil)
		return
	}

	if res.File == nil {
		message := "unable to render document"
		if res.Err != nil {
			message = res.Err.Error()
		}
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"file": nil,
			"error": respond.ErrorBody{
				Code:    "render_failed",
				Message: message,
				Details: gin.H{"stage": res.Stage},
			},
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", res.File.Name))
	c.Header("Content-Length", strconv.Itoa(len(res.File.Data)))
	c.Data(http.StatusOK, res.File.ContentType, res.File.Data)
}
