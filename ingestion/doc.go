// Package ingestion provides pipeline orchestration for indexing content chunks.
//
// The Pipeline type manages the ingestion workflow, including:
//   - Classifying each chunk's content type
//   - Adding chunks to storage and the vocabulary index
//   - Generating embedding vectors asynchronously
//
// Chunks become keyword-searchable as soon as ingestion returns; semantic
// search follows once the background embedding work completes. Errors during
// async processing are logged but do not fail the ingestion operation.
//
// Re-ingesting a source through IngestSource retires every chunk of the
// previous version before the new ones land, so a source is never indexed
// twice.
package ingestion
