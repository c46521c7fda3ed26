package retrieval

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// SplitterConfig controls how documents are cleaned and chunked.
type SplitterConfig struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int
	// ChunkOverlap is how many trailing characters of one chunk reappear at
	// the start of the next. Must be smaller than ChunkSize.
	ChunkOverlap int
	// MinChunkLength drops chunks shorter than this after trimming.
	MinChunkLength int
}

// DefaultSplitterConfig returns the standard chunking parameters.
func DefaultSplitterConfig() SplitterConfig {
	return SplitterConfig{
		ChunkSize:      1000,
		ChunkOverlap:   200,
		MinChunkLength: 20,
	}
}

// Validate checks that the chunking parameters are usable.
func (c SplitterConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk overlap %d must be in [0, %d)", c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

// CleanText collapses runs of whitespace (including newlines) into single
// spaces and trims the result.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// SplitText splits cleaned text into overlapping chunks of at most
// cfg.ChunkSize characters. Breaks prefer the last whitespace inside the
// chunk so words stay intact; when a chunk has no whitespace it is cut at
// the size limit. Each chunk after the first starts cfg.ChunkOverlap
// characters before the previous chunk's end.
func SplitText(text string, cfg SplitterConfig) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= cfg.ChunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + cfg.ChunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		// Prefer breaking at whitespace within the chunk's final stretch.
		cut := end
		for i := end; i > start+cfg.ChunkSize/2; i-- {
			if unicode.IsSpace(runes[i-1]) {
				cut = i
				break
			}
		}

		chunks = append(chunks, string(runes[start:cut]))

		next := cut - cfg.ChunkOverlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

// SplitMarkdown splits markdown text into chunks of at most cfg.ChunkSize
// characters, preferring breaks at heading lines and blank-line paragraph
// boundaries. Adjacent sections are packed into one chunk while they fit.
// A single section longer than the chunk size falls back to SplitText.
func SplitMarkdown(text string, cfg SplitterConfig) []string {
	var chunks []string
	var cur string
	flush := func() {
		if cur != "" {
			chunks = append(chunks, cur)
			cur = ""
		}
	}

	for _, sec := range markdownSections(text) {
		sec = CleanText(sec)
		if sec == "" {
			continue
		}
		if len([]rune(sec)) > cfg.ChunkSize {
			flush()
			chunks = append(chunks, SplitText(sec, cfg)...)
			continue
		}
		switch {
		case cur == "":
			cur = sec
		case len([]rune(cur))+len([]rune(sec))+1 <= cfg.ChunkSize:
			cur += " " + sec
		default:
			flush()
			cur = sec
		}
	}
	flush()
	return chunks
}

// markdownSections cuts text at heading lines and blank lines. A heading
// stays attached to the lines that follow it until the next boundary.
func markdownSections(text string) []string {
	var sections []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			sections = append(sections, strings.Join(cur, "\n"))
			cur = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush()
		case strings.HasPrefix(trimmed, "#"):
			flush()
			cur = append(cur, line)
		default:
			cur = append(cur, line)
		}
	}
	flush()
	return sections
}

// ChunkDocuments cleans and splits each document into chunk documents.
//
// Markdown documents (file_type ".md" or ".markdown") split at heading and
// paragraph boundaries via SplitMarkdown; everything else is cleaned and
// split by SplitText. Each chunk gets a fresh UUID, a copy of the parent's
// metadata, and chunk bookkeeping: parent_id, chunk_index, chunk_total and
// chunk_size. Chunks shorter than cfg.MinChunkLength after trimming are
// dropped. Input order is preserved: all chunks of doc i precede chunks of
// doc i+1.
func ChunkDocuments(docs []Document, cfg SplitterConfig) ([]Document, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var out []Document
	for _, doc := range docs {
		var pieces []string
		if ext, _ := doc.Metadata["file_type"].(string); ext == ".md" || ext == ".markdown" {
			pieces = SplitMarkdown(doc.Content, cfg)
		} else {
			pieces = SplitText(CleanText(doc.Content), cfg)
		}

		kept := make([]string, 0, len(pieces))
		for _, piece := range pieces {
			piece = strings.TrimSpace(piece)
			if len(piece) >= cfg.MinChunkLength {
				kept = append(kept, piece)
			}
		}

		for i, piece := range kept {
			meta := make(map[string]any, len(doc.Metadata)+4)
			for k, v := range doc.Metadata {
				meta[k] = v
			}
			meta["parent_id"] = doc.ID
			meta["chunk_index"] = i
			meta["chunk_total"] = len(kept)
			meta["chunk_size"] = len(piece)

			out = append(out, Document{
				ID:       uuid.NewString(),
				Content:  piece,
				Metadata: meta,
				Created:  doc.Created,
				Updated:  doc.Updated,
			})
		}
	}
	return out, nil
}
