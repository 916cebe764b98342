// Package memory provides a local, in-process vector store for conversation
// memories. Entries are embedded text snippets namespaced by scope (the
// conversation/room id) and carry a category that governs their lifetime.
//
// Architecture:
//   - Store: scope-partitioned vector storage with chromem-go as the
//     nearest-neighbor backend (embedded vector database)
//   - Embedder: text-to-vector conversion (ONNX locally, mock in tests,
//     ristretto-cached decorator for repeated text)
//
// Lifecycle rules per category:
//   - event, boundary: kept forever
//   - emotion: sliding window of the 10 most recent entries per scope
//   - preference: a new preference deletes older preferences similar to it
//   - general: no rule beyond the duplicate guard
//
// Every insertion runs a similarity-based duplicate check before anything is
// written; near-identical text is rejected rather than stored twice.
package memory
