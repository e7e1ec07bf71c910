package api

import (
	_ "embed"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doccompliance/internal/logging"
	"doccompliance/internal/service/assistant"
)

//go:embed web/index.html
var indexHTML []byte

// Handler wires HTTP routes to the assistant service.
type Handler struct {
	assistant      *assistant.Service
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewHandler constructs a Handler instance.
func NewHandler(service *assistant.Service, maxUploadBytes int64, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		assistant:      service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// NewRouter builds the gin engine with logging, recovery and error translation installed.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(
		logging.GinLogger(h.logger),
		gin.CustomRecovery(h.recoverPanic),
		h.errorMiddleware(),
	)
	h.RegisterRoutes(router)
	return router
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.index)
	router.GET("/healthz", h.healthz)
	router.POST("/upload", h.limitBody(), h.uploadDocument)
	router.POST("/modify/:file_id", h.modifyDocument)
	router.GET("/download/:file_id", h.downloadModified)
	router.GET("/status/:file_id", h.getStatus)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	})
}

func (h *Handler) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (h *Handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) uploadDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			_ = c.Error(errTooLarge)
		case emptyFilePart(c):
			_ = c.Error(assistant.ErrNoFileSelected)
		default:
			_ = c.Error(assistant.ErrNoFileProvided)
		}
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer file.Close()

	sess, err := h.assistant.ProcessUpload(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"file_id":           sess.ID,
		"filename":          sess.OriginalFilename,
		"compliance_report": sess.ComplianceReport,
		"message":           "Document processed successfully",
	})
}

// emptyFilePart reports whether the form carried a "file" field without a
// filename, which is what browsers send when nothing was selected.
func emptyFilePart(c *gin.Context) bool {
	form := c.Request.MultipartForm
	if form == nil {
		return false
	}
	_, ok := form.Value["file"]
	return ok
}

func (h *Handler) modifyDocument(c *gin.Context) {
	fileID := c.Param("file_id")
	sess, err := h.assistant.Modify(c.Request.Context(), fileID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"file_id":           sess.ID,
		"modified_filename": sess.ModifiedFilename,
		"message":           "Document modified successfully",
		"preview":           assistant.Preview(*sess.ModifiedText),
	})
}

func (h *Handler) downloadModified(c *gin.Context) {
	path, name, err := h.assistant.Download(c.Request.Context(), c.Param("file_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.FileAttachment(path, name)
}

func (h *Handler) getStatus(c *gin.Context) {
	sess, err := h.assistant.Status(c.Request.Context(), c.Param("file_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"file_id":           sess.ID,
		"original_filename": sess.OriginalFilename,
		"compliance_report": sess.ComplianceReport,
		"has_modified":      sess.HasModified(),
		"timestamp":         sess.CreatedAt,
	})
}
