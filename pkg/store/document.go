package store

// Document is one retrieved evidence chunk as the pipeline sees it.
type Document struct {
	Content    string  `json:"content"`
	Source     string  `json:"source"`
	SourceName string  `json:"source_name,omitempty"`
	Page       int     `json:"page"`
	Section    string  `json:"section,omitempty"`
	DocID      string  `json:"doc_id"`
	ChunkID    int     `json:"chunk_id"`
	ChunkUID   string  `json:"chunk_uid,omitempty"`
	Score      float32 `json:"score,omitempty"`
}

// Citation ties one answer reference back to its evidence chunk.
type Citation struct {
	Index      int    `json:"index"`
	DocID      string `json:"doc_id"`
	Source     string `json:"source"`
	SourceName string `json:"source_name,omitempty"`
	Page       int    `json:"page"`
	Snippet    string `json:"snippet"`
}
