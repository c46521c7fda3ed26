// Package rag assembles the indexing and query pipelines from the six
// standard components: loader, processor, embedder, store, retriever and
// generator. Components communicate through well-known record keys.
package rag

import (
	"github.com/ragify-ai/ragify/pkg/ragify"
	"github.com/ragify-ai/ragify/pkg/retrieval"
)

// Record keys written and read by the standard components. Keys beginning
// with an underscore are bookkeeping only and never feed back into control
// flow.
const (
	// KeyFilePaths optionally overrides a loader's configured sources with
	// an explicit file list.
	KeyFilePaths = "file_paths"

	// KeyDirectoryPath optionally points the loader at a directory for a
	// single run; KeyGlobPattern filters its file names.
	KeyDirectoryPath = "directory_path"
	KeyGlobPattern   = "glob_pattern"

	// KeyDocuments holds the loaded []retrieval.Document.
	KeyDocuments = "documents"

	// KeyProcessedDocuments holds the cleaned, chunked documents.
	KeyProcessedDocuments = "processed_documents"

	// KeyEmbeddings holds the []retrieval.EmbeddingVector paired with
	// KeyDocumentsWithEmbeddings.
	KeyEmbeddings = "embeddings"

	// KeyDocumentsWithEmbeddings holds the documents in the same order as
	// their vectors under KeyEmbeddings.
	KeyDocumentsWithEmbeddings = "documents_with_embeddings"

	// KeyClearVectorStore, when true, makes the store component wipe the
	// backend before indexing.
	KeyClearVectorStore = "clear_vectorstore"

	// KeyVectorStoreInfo holds backend statistics written after indexing.
	KeyVectorStoreInfo = "vectorstore_info"

	// KeyQuery holds the user's query string.
	KeyQuery = "query"

	// KeyTopK and KeyScoreThreshold override the retriever's configured
	// values for a single run.
	KeyTopK           = "k"
	KeyScoreThreshold = "score_threshold"

	// KeyImageURLs and KeyAudioURLs carry non-text inputs on a query. The
	// query summary flags their presence as multimodal_input.
	KeyImageURLs = "image_urls"
	KeyAudioURLs = "audio_urls"

	// KeyRetrievedDocuments holds the documents returned by the retriever.
	KeyRetrievedDocuments = "retrieved_documents"

	// KeyRetrievalScores holds the similarity scores parallel to
	// KeyRetrievedDocuments.
	KeyRetrievalScores = "retrieval_scores"

	// KeyResponse holds the generated answer text. KeyResponseGenerated is
	// set true by the generator once the model replied, even when the reply
	// is empty.
	KeyResponse          = "response"
	KeyResponseGenerated = "response_generated"

	// KeyLoaderInfo and KeyProcessorInfo hold per-stage statistics.
	KeyLoaderInfo    = "_loader_info"
	KeyProcessorInfo = "_processor_info"

	// KeyIndexingSummary and KeyQuerySummary hold the pipeline summaries.
	KeyIndexingSummary = "indexing_summary"
	KeyQuerySummary    = "query_summary"
)

// MetaRetrievalScore is the document metadata key carrying the similarity
// score of a retrieved document.
const MetaRetrievalScore = "retrieval_score"

// Documents returns the document slice stored under key, or nil when the
// key is absent or holds something else.
func Documents(rec ragify.Record, key string) []retrieval.Document {
	docs, _ := rec[key].([]retrieval.Document)
	return docs
}
