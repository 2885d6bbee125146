package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadedPage is one page of raw text from a source file. Plain-text formats
// carry no page structure, so everything lands on page 1.
type LoadedPage struct {
	Source     string
	SourceName string
	Page       int
	Content    string
}

// LoadFile reads a .txt or .md file into pages. Other extensions are
// rejected: binary formats would need a dedicated parser, not a best-effort
// byte dump into the index.
func LoadFile(path string) ([]LoadedPage, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md", ".markdown":
	default:
		return nil, fmt.Errorf("unsupported file type %q (only .txt and .md are ingestable)", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return nil, fmt.Errorf("file %s is empty", path)
	}

	name := strings.TrimSuffix(filepath.Base(path), ext)
	return []LoadedPage{{
		Source:     filepath.Base(path),
		SourceName: name,
		Page:       1,
		Content:    content,
	}}, nil
}
