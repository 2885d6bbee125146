package retrieval

import (
	"fmt"

	"rag-chat-be/pkg/store"
)

// dedupKey identifies one logical chunk regardless of which search pass
// found it. ChunkUID wins when present; otherwise a composite of the
// locator metadata plus a content prefix stands in for it.
func dedupKey(d store.Document) string {
	if d.ChunkUID != "" {
		return d.ChunkUID
	}
	prefix := d.Content
	if len(prefix) > 50 {
		prefix = prefix[:50]
	}
	return fmt.Sprintf("%s|%d|%d|%s", d.Source, d.Page, d.ChunkID, prefix)
}

// Merge combines dense and lexical candidates so that each logical chunk
// appears at most once. Later entries overwrite earlier ones with the same
// key. Result order follows first appearance of each key.
func Merge(dense, lexical []store.Document) []store.Document {
	seen := make(map[string]int)
	var merged []store.Document

	for _, d := range append(append([]store.Document{}, dense...), lexical...) {
		key := dedupKey(d)
		if idx, ok := seen[key]; ok {
			merged[idx] = d
			continue
		}
		seen[key] = len(merged)
		merged = append(merged, d)
	}

	return merged
}
