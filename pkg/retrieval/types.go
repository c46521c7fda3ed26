// Package retrieval defines the document model and vector store contract
// shared by every storage backend and pipeline component.
package retrieval

import "time"

// Document represents a document with metadata for retrieval operations.
//
// Contains the document content, metadata for filtering and ranking,
// and a similarity score populated by vector search operations.
type Document struct {
	ID       string         `json:"id"`                 // Unique document identifier
	Content  string         `json:"content"`            // Document text content
	Metadata map[string]any `json:"metadata,omitempty"` // Additional document metadata
	Score    float64        `json:"score,omitempty"`    // Similarity score, higher is more similar
	Created  time.Time      `json:"created,omitempty"`  // Document creation timestamp
	Updated  time.Time      `json:"updated,omitempty"`  // Last update timestamp
}

// EmbeddingVector represents a vector embedding.
type EmbeddingVector []float32

// SearchResult represents the result of a vector search operation.
//
// Contains the matching documents ranked by similarity score
// along with search metadata.
type SearchResult struct {
	Documents []Document `json:"documents"` // Matching documents ranked by score
	Query     string     `json:"query"`     // Original search query
	Total     int        `json:"total"`     // Total number of matches found
	Threshold float64    `json:"threshold"` // Similarity threshold used
}

// SearchQuery represents a vector search query.
//
// Vector must be populated by the caller; stores never embed text
// themselves.
type SearchQuery struct {
	Vector    EmbeddingVector `json:"vector"`              // Query vector
	Text      string          `json:"text,omitempty"`      // Query text, kept for result metadata
	Limit     int             `json:"limit,omitempty"`     // Maximum results to return
	Threshold float64         `json:"threshold,omitempty"` // Minimum similarity score to include; zero means no threshold
	Filter    map[string]any  `json:"filter,omitempty"`    // Metadata equality filters
}

// ContentType classifies a document for routing in multimodal pipelines.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
	ContentAudio ContentType = "audio"
	ContentVideo ContentType = "video"
)

// ContentClassifier decides how a document should be treated by a
// multimodal pipeline. Implementations inspect the document's metadata
// (file extension, explicit content_type) and content.
type ContentClassifier interface {
	Classify(doc Document) ContentType
}

// ExtensionClassifier classifies documents by the file extension recorded
// in their metadata. Unknown extensions classify as text.
type ExtensionClassifier struct{}

var extensionTypes = map[string]ContentType{
	".png":  ContentImage,
	".jpg":  ContentImage,
	".jpeg": ContentImage,
	".gif":  ContentImage,
	".webp": ContentImage,
	".bmp":  ContentImage,
	".mp3":  ContentAudio,
	".wav":  ContentAudio,
	".flac": ContentAudio,
	".ogg":  ContentAudio,
	".m4a":  ContentAudio,
	".mp4":  ContentVideo,
	".mov":  ContentVideo,
	".avi":  ContentVideo,
	".mkv":  ContentVideo,
	".webm": ContentVideo,
}

// Classify returns the content type for doc. It prefers an explicit
// "content_type" metadata value and falls back to the "file_type"
// extension recorded by the loaders.
func (ExtensionClassifier) Classify(doc Document) ContentType {
	if v, ok := doc.Metadata["content_type"].(string); ok {
		switch ContentType(v) {
		case ContentText, ContentImage, ContentAudio, ContentVideo:
			return ContentType(v)
		}
	}
	if ext, ok := doc.Metadata["file_type"].(string); ok {
		if ct, ok := extensionTypes[ext]; ok {
			return ct
		}
	}
	return ContentText
}
