package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
	"github.com/fumiama/go-docx"
)

var errNoDocumentPart = errors.New("docx archive has no word/document.xml")

// DocxParser implements parser.Parser for Office Open XML documents.
// It emits one schema.Document per top-level body paragraph.
type DocxParser struct{}

var _ parser.Parser = (*DocxParser)(nil)

func (p *DocxParser) Parse(ctx context.Context, reader io.Reader, opts ...parser.Option) ([]*schema.Document, error) {
	options := parser.GetCommonOptions(&parser.Options{}, opts...)

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}
	// The name is only filled in when word/document.xml was present.
	if doc.Document.XMLName.Local == "" {
		return nil, errNoDocumentPart
	}

	docs := make([]*schema.Document, 0, len(doc.Document.Body.Items))
	for _, item := range doc.Document.Body.Items {
		// Tables nest their own paragraphs and are skipped.
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		meta := map[string]any{"paragraph": len(docs)}
		if options.URI != "" {
			meta["_source"] = options.URI
		}
		for k, v := range options.ExtraMeta {
			meta[k] = v
		}
		docs = append(docs, &schema.Document{Content: paragraphText(para), MetaData: meta})
	}
	return docs, nil
}

// paragraphText joins the visible text of a paragraph's runs, hyperlinks included.
func paragraphText(para *docx.Paragraph) string {
	var sb strings.Builder
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			writeRun(&sb, c)
		case *docx.Hyperlink:
			writeRun(&sb, &c.Run)
		}
	}
	return sb.String()
}

func writeRun(sb *strings.Builder, run *docx.Run) {
	for _, child := range run.Children {
		switch c := child.(type) {
		case *docx.Text:
			sb.WriteString(c.Text)
		case *docx.Tab:
			sb.WriteByte('\t')
		case *docx.BarterRabbet:
			sb.WriteByte('\n')
		}
	}
}
