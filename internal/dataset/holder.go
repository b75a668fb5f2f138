package dataset

import (
	"sync"

	"github.com/fantasylab/fantasy-lab/internal/model"
)

// Holder owns the dataset currently being served. Version increases on every
// swap so callers can key memoized results on it.
type Holder struct {
	mu      sync.RWMutex
	ds      *model.Dataset
	version uint64
}

func NewHolder(ds *model.Dataset) *Holder {
	return &Holder{ds: ds, version: 1}
}

// Current returns the dataset and its version. The dataset must be treated as
// read-only.
func (h *Holder) Current() (*model.Dataset, uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ds, h.version
}

func (h *Holder) Swap(ds *model.Dataset) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ds = ds
	h.version++
	return h.version
}
