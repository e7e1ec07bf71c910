package assistant

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"doccompliance/internal/extract"
)

const (
	previewChars     = 500
	modifiedPrefix   = "modified_"
	modifiedExt      = ".txt"
	fallbackBaseName = "document"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename reduces a client supplied name to a flat file name built
// from [A-Za-z0-9_.-]. Path separators never survive. The result may be empty.
func SanitizeFilename(name string) string {
	decomposed := norm.NFKD.String(name)
	ascii := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		if r == '/' || r == '\\' {
			return ' '
		}
		return r
	}, decomposed)
	joined := strings.Join(strings.Fields(ascii), "_")
	return strings.Trim(unsafeFilenameChars.ReplaceAllString(joined, ""), "._")
}

// storedFilename sanitizes name and keeps the extension the upload was accepted for.
func storedFilename(name, ext string) string {
	safe := SanitizeFilename(name)
	if extract.Extension(safe) != ext || strings.TrimSuffix(safe, "."+extract.Extension(safe)) == "" {
		return fallbackBaseName + "." + ext
	}
	return safe
}

// ModifiedFilename names the rewrite artifact after the original's stem.
func ModifiedFilename(original string) string {
	stem := original
	if idx := strings.LastIndex(original, "."); idx >= 0 {
		stem = original[:idx]
	}
	return modifiedPrefix + stem + modifiedExt
}

// Preview returns the first 500 characters of text, with "..." appended when it was cut.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewChars {
		return text
	}
	return string(runes[:previewChars]) + "..."
}
