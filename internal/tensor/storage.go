package tensor

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
)

// Storage is a reference-counted flat buffer shared by every Tensor view over it.
//
// Views (reshape, permute, expand, slice) add a reference instead of copying.
// Writing through one view is visible through all the others: callers that
// need private data must call Tensor.CopyOnWrite first.
//
// The count only goes down through Tensor.Release or CopyOnWrite; a view
// that is simply dropped is reclaimed by the garbage collector but keeps its
// reference counted. Kernels and operations release the temporary views
// they create. Views held by a live graph (e.g. a transposed weight saved
// for backward) stay counted, so IsShared is conservative: it may report
// true while no other view is reachable, in which case CopyOnWrite copies.
type Storage struct {
	data     []float64
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

// NewStorage allocates a zeroed buffer of n elements with refCount = 1.
func NewStorage(n int) *Storage {
	s := &Storage{data: make([]float64, n)}
	s.refCount.Store(1)
	return s
}

// storageFrom wraps data without copying.
func storageFrom(data []float64) *Storage {
	s := &Storage{data: data}
	s.refCount.Store(1)
	return s
}

// Len returns the number of elements in the buffer.
func (s *Storage) Len() int {
	return len(s.data)
}

// Data returns the underlying buffer.
// WARNING: Direct access to memory shared by all views. Use with caution.
func (s *Storage) Data() []float64 {
	return s.data
}

// addRef increments the reference count (for views).
func (s *Storage) addRef() {
	s.refCount.Add(1)
}

// release decrements the reference count and drops the buffer if it reaches 0.
func (s *Storage) release() {
	if s.refCount.Add(-1) == 0 {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.data = nil
	}
}

// RefCount returns the number of live views referencing the buffer.
func (s *Storage) RefCount() int {
	return int(s.refCount.Load())
}

// IsShared returns true if more than one view references this buffer.
func (s *Storage) IsShared() bool {
	return s.refCount.Load() > 1
}

// String implements fmt.Stringer.
func (s *Storage) String() string {
	return fmt.Sprintf("Storage(len=%d, %s, refs=%d)",
		len(s.data), humanize.IBytes(uint64(len(s.data))*8), s.RefCount())
}
