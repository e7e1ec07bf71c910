package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/document/loader/file"
	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/components/document/parser"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrExtractionFailed  = errors.New("failed to extract text")
)

var allowedExtensions = map[string]struct{}{
	"pdf":  {},
	"docx": {},
	"doc":  {},
}

// Extension returns the lower-cased extension after the last dot, or "".
func Extension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

// Allowed reports whether filename carries one of the accepted extensions.
func Allowed(filename string) bool {
	_, ok := allowedExtensions[Extension(filename)]
	return ok
}

// Extractor turns stored documents into plain text. One eino file loader is
// kept per format so the declared extension, not the path, picks the parser.
type Extractor struct {
	loaders map[string]*file.FileLoader
	logger  *zap.Logger
}

// NewExtractor wires the PDF and Word parsers into file loaders.
func NewExtractor(ctx context.Context, logger *zap.Logger) (*Extractor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pdfParser, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: true})
	if err != nil {
		return nil, fmt.Errorf("init pdf parser: %w", err)
	}
	wordParser := &DocxParser{}

	byFormat := map[string]parser.Parser{
		"pdf":  pdfParser,
		"docx": wordParser,
		"doc":  wordParser,
	}
	loaders := make(map[string]*file.FileLoader, len(byFormat))
	for ext, p := range byFormat {
		loader, err := file.NewFileLoader(ctx, &file.FileLoaderConfig{
			UseNameAsID: true,
			Parser:      p,
		})
		if err != nil {
			return nil, fmt.Errorf("init %s loader: %w", ext, err)
		}
		loaders[ext] = loader
	}
	return &Extractor{loaders: loaders, logger: logger}, nil
}

// Extract reads the file at path as the declared format and returns its trimmed text.
// PDF pages and Word paragraphs are each followed by a newline before trimming.
func (e *Extractor) Extract(ctx context.Context, path, ext string) (text string, err error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	loader, ok := e.loaders[ext]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	// The PDF reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("document parser panicked", zap.String("format", ext), zap.Any("panic", r))
			text, err = "", fmt.Errorf("%w from %s: %v", ErrExtractionFailed, strings.ToUpper(ext), r)
		}
	}()

	docs, err := loader.Load(ctx, document.Source{URI: path})
	if err != nil {
		e.logger.Error("extract document text", zap.String("format", ext), zap.Error(err))
		return "", fmt.Errorf("%w from %s: %v", ErrExtractionFailed, strings.ToUpper(ext), err)
	}

	var builder strings.Builder
	for _, doc := range docs {
		if doc == nil {
			builder.WriteString("\n")
			continue
		}
		builder.WriteString(doc.Content)
		builder.WriteString("\n")
	}
	return strings.TrimSpace(builder.String()), nil
}
