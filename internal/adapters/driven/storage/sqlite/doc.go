// Package sqlite provides the durable evidence store backed by SQLite.
//
// Documents, chunks and chunk embeddings are persisted so the vector
// index can be rebuilt without re-embedding. The store runs embedded
// SQL migrations at open time and uses WAL mode for concurrent readers.
package sqlite
