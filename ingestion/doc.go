// Package ingestion provides the pipeline that turns a parsed document
// into retrievable state.
//
// The Pipeline type manages the ingestion workflow for documents:
//   - Splitting document text into overlapping chunks
//   - Generating an embedding per chunk
//   - Writing the chunk vectors into a per-document vector collection
//   - Writing the chunk sequence into a per-document graph partition
//
// Embeddings are generated concurrently using a worker pool; the two
// store writes run in parallel. A failure in one store does not stop
// the write to the other, and the returned error reports which stages
// completed so callers can decide whether to mark the document usable.
package ingestion
