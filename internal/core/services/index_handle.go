package services

import (
	"sync"

	"github.com/lomnlabs/lomn-cli/internal/core/ports/driven"
)

// IndexHandle is a shared, swappable reference to the live vector index.
//
// Rebuilds produce a fresh index and swap it in atomically; queries that
// already fetched the old index finish against it unchanged. The handle
// may hold nil when no index has been built yet.
type IndexHandle struct {
	mu    sync.RWMutex
	index driven.VectorIndex
}

// NewIndexHandle creates a handle holding the given index, which may be nil.
func NewIndexHandle(index driven.VectorIndex) *IndexHandle {
	return &IndexHandle{index: index}
}

// Get returns the current index, or nil if none is set.
func (h *IndexHandle) Get() driven.VectorIndex {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.index
}

// Swap replaces the current index and returns the previous one. The
// previous index must stay usable: queries that fetched it before the
// swap finish against that snapshot.
func (h *IndexHandle) Swap(index driven.VectorIndex) driven.VectorIndex {
	h.mu.Lock()
	defer h.mu.Unlock()
	old := h.index
	h.index = index
	return old
}
