package parser

import (
	"container/heap"
	"context"
	"io"
)

// MergedSource combines multiple Sources into one stream ordered by
// timestamp, oldest first. Upserts make ingestion order irrelevant
// for correctness, but a chronological stream keeps run logs readable
// and makes dry-run output deterministic across input files.
type MergedSource struct {
	sources     []Source
	heap        *obsHeap
	initialized bool
}

// NewMergedSource creates a Source that merges multiple sources by
// timestamp.
func NewMergedSource(sources ...Source) *MergedSource {
	return &MergedSource{
		sources: sources,
		heap:    &obsHeap{},
	}
}

// Next returns the next observation in timestamp order across all
// sources. Returns io.EOF when every source is exhausted.
func (m *MergedSource) Next(ctx context.Context) (*Observation, error) {
	if !m.initialized {
		if err := m.initHeap(ctx); err != nil {
			return nil, err
		}
	}

	if m.heap.Len() == 0 {
		return nil, io.EOF
	}

	item := heap.Pop(m.heap).(*heapItem)

	// Refill from the source that produced the popped observation.
	if next, err := m.sources[item.sourceIdx].Next(ctx); err == nil {
		heap.Push(m.heap, &heapItem{obs: next, sourceIdx: item.sourceIdx})
	} else if err != io.EOF {
		return nil, err
	}

	return item.obs, nil
}

func (m *MergedSource) initHeap(ctx context.Context) error {
	heap.Init(m.heap)
	m.initialized = true

	for i, src := range m.sources {
		obs, err := src.Next(ctx)
		if err == io.EOF {
			continue
		}
		if err != nil {
			return err
		}
		heap.Push(m.heap, &heapItem{obs: obs, sourceIdx: i})
	}

	return nil
}

// Close releases all source resources.
func (m *MergedSource) Close() error {
	var firstErr error
	for _, src := range m.sources {
		if err := src.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type heapItem struct {
	obs       *Observation
	sourceIdx int
}

type obsHeap []*heapItem

func (h obsHeap) Len() int { return len(h) }

func (h obsHeap) Less(i, j int) bool {
	return h[i].obs.Timestamp.Before(h[j].obs.Timestamp)
}

func (h obsHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *obsHeap) Push(x interface{}) {
	*h = append(*h, x.(*heapItem))
}

func (h *obsHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}
