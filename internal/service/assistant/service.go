package assistant

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"doccompliance/internal/models"
	"doccompliance/internal/storage"
)

// ErrInvalidInput marks every rejection caused by the uploaded file itself.
var ErrInvalidInput = errors.New("invalid input")

// inputError carries the user-facing message of a rejected upload.
type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Is(target error) bool { return target == ErrInvalidInput }

var (
	ErrNoFileProvided     error = &inputError{msg: "No file provided"}
	ErrNoFileSelected     error = &inputError{msg: "No file selected"}
	ErrFileTypeNotAllowed error = &inputError{msg: "File type not allowed. Please upload PDF or DOCX files."}
	ErrNoTextExtracted    error = &inputError{msg: "No text could be extracted from the document"}
)

// ErrNoModification is returned when a download is requested before any rewrite.
var ErrNoModification = errors.New("modified document not found")

// Extractor turns a stored upload into plain text.
type Extractor interface {
	Extract(ctx context.Context, path, ext string) (string, error)
}

// Checker grades and rewrites document text.
type Checker interface {
	CheckCompliance(ctx context.Context, documentText string) (models.ComplianceReport, error)
	RewriteDocument(ctx context.Context, documentText string, report models.ComplianceReport) (string, error)
}

// Service drives the upload, modify, download and status lifecycle of a session.
type Service struct {
	store     storage.Store
	extractor Extractor
	checker   Checker
	uploadDir string
	logger    *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewService builds the orchestrator and makes sure the upload directory exists.
func NewService(store storage.Store, extractor Extractor, checker Checker, uploadDir string, logger *zap.Logger) (*Service, error) {
	if store == nil || extractor == nil || checker == nil {
		return nil, errors.New("assistant dependencies are required")
	}
	if uploadDir == "" {
		return nil, errors.New("upload directory must be configured")
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		extractor: extractor,
		checker:   checker,
		uploadDir: uploadDir,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}, nil
}
