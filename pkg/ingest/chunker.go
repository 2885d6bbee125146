package ingest

// Chunk is one overlapping slice of a loaded page, positioned for stable
// identification on re-ingest.
type Chunk struct {
	Source     string
	SourceName string
	Page       int
	ChunkIndex int
	Content    string
}

// SplitPage cuts a page into chunks of roughly chunkSize characters with an
// overlap to preserve context at boundaries. Character-based on purpose: a
// tokenizer-aware splitter would tie chunking to one model family.
func SplitPage(page LoadedPage, chunkSize, overlap int) []Chunk {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}

	runes := []rune(page.Content)
	totalLen := len(runes)

	if totalLen <= chunkSize {
		return []Chunk{{
			Source:     page.Source,
			SourceName: page.SourceName,
			Page:       page.Page,
			ChunkIndex: 0,
			Content:    page.Content,
		}}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	var chunks []Chunk
	index := 0
	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, Chunk{
			Source:     page.Source,
			SourceName: page.SourceName,
			Page:       page.Page,
			ChunkIndex: index,
			Content:    string(runes[i:end]),
		})
		index++

		if end == totalLen {
			break
		}
	}

	return chunks
}
