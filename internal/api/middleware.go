package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doccompliance/internal/service/assistant"
	"doccompliance/internal/storage"
)

var errTooLarge = errors.New("request body too large")

// limitBody rejects oversized uploads up front and caps the body reader for
// clients that do not announce a length.
func (h *Handler) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.maxUploadBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > h.maxUploadBytes {
			_ = c.Error(errTooLarge)
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
		c.Next()
	}
}

// errorMiddleware turns the last handler error into the uniform {"error": msg} body.
func (h *Handler) errorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, msg := h.translateError(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		}
		c.JSON(status, gin.H{"error": msg})
	}
}

func (h *Handler) translateError(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, errTooLarge), errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "File too large. Maximum size is " + sizeLabel(h.maxUploadBytes) + "."
	case errors.Is(err, assistant.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, storage.ErrSessionNotFound):
		return http.StatusNotFound, "Session not found"
	case errors.Is(err, assistant.ErrNoModification):
		return http.StatusNotFound, "Modified document not found"
	case errors.Is(err, storage.ErrArtifactNotFound):
		return http.StatusNotFound, "Modified file not found"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// sizeLabel rounds n bytes up to whole megabytes, or kilobytes below 1MB.
func sizeLabel(n int64) string {
	if n >= 1<<20 {
		return fmt.Sprintf("%dMB", (n+1<<20-1)>>20)
	}
	return fmt.Sprintf("%dKB", (n+1<<10-1)>>10)
}

func (h *Handler) recoverPanic(c *gin.Context, recovered any) {
	h.logger.Error("panic recovered", zap.String("path", c.Request.URL.Path), zap.Any("panic", recovered))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
