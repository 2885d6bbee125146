package retrieval

import (
	"sort"
	"strings"

	"rag-chat-be/pkg/store"
)

// Reranker orders candidate documents by relevance to a query and truncates
// to topK. The interface exists so a learned or embedding-similarity
// reranker can replace the heuristic without touching the retriever.
type Reranker func(docs []store.Document, query string, topK int) []store.Document

// TermOverlapRerank is a deterministic placeholder reranker: documents are
// scored by how many distinct lowercase query terms their content contains,
// with content length as the tiebreak. No external calls.
func TermOverlapRerank(docs []store.Document, query string, topK int) []store.Document {
	if len(docs) == 0 {
		return nil
	}

	terms := make(map[string]bool)
	for _, t := range strings.Fields(query) {
		if t != "" {
			terms[strings.ToLower(t)] = true
		}
	}

	type scored struct {
		doc  store.Document
		hits int
		size int
	}

	ranked := make([]scored, len(docs))
	for i, d := range docs {
		text := strings.ToLower(d.Content)
		hits := 0
		for t := range terms {
			if strings.Contains(text, t) {
				hits++
			}
		}
		ranked[i] = scored{doc: d, hits: hits, size: len(d.Content)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].hits != ranked[j].hits {
			return ranked[i].hits > ranked[j].hits
		}
		return ranked[i].size > ranked[j].size
	})

	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}

	out := make([]store.Document, len(ranked))
	for i, r := range ranked {
		out[i] = r.doc
	}
	return out
}
