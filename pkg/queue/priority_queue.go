package queue

import (
	"container/heap"
	"fmt"
	"strings"
)

// MinHeap is a binary min-heap with a position index, so every item is contained at most once.
// The order is given by less. The heap itself is not stable, callers that need first-in ties encode an insertion counter in less.
type MinHeap[T comparable] struct {
	queue priorityQueue[T]
}

// Create a new, empty heap ordered by less
func NewMinHeap[T comparable](less func(a, b T) bool) *MinHeap[T] {
	return &MinHeap[T]{queue: priorityQueue[T]{less: less, index: make(map[T]int)}}
}

// Implements heap.Interface
type priorityQueue[T comparable] struct {
	items []T
	index map[T]int // position of each item in items
	less  func(a, b T) bool
}

func (q *priorityQueue[T]) Len() int           { return len(q.items) }
func (q *priorityQueue[T]) Less(i, j int) bool { return q.less(q.items[i], q.items[j]) }
func (q *priorityQueue[T]) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.index[q.items[i]] = i
	q.index[q.items[j]] = j
}
func (q *priorityQueue[T]) Push(item any) {
	t := item.(T)
	q.index[t] = len(q.items)
	q.items = append(q.items, t)
}
func (q *priorityQueue[T]) Pop() any {
	n := len(q.items)
	item := q.items[n-1]
	var zero T
	q.items[n-1] = zero
	q.items = q.items[:n-1]
	delete(q.index, item)
	return item
}

func (h *MinHeap[T]) Len() int { return h.queue.Len() }

// Push the item. If it is already contained, its position is restored instead (the key changed).
func (h *MinHeap[T]) Push(item T) {
	if h.Contains(item) {
		h.Update(item)
		return
	}
	heap.Push(&h.queue, item)
}

// Remove and return the minimum. Panics on an empty heap.
func (h *MinHeap[T]) Pop() T {
	if h.Len() == 0 {
		panic("pop from empty heap")
	}
	return heap.Pop(&h.queue).(T)
}

// Return the minimum without removing it. Panics on an empty heap.
func (h *MinHeap[T]) Peek() T {
	if h.Len() == 0 {
		panic("peek into empty heap")
	}
	return h.queue.items[0]
}

func (h *MinHeap[T]) PeekAt(index int) T {
	if index >= h.Len() {
		panic("index out of bounds")
	}
	return h.queue.items[index]
}

// Return true if the item is in the heap. O(1).
func (h *MinHeap[T]) Contains(item T) bool {
	_, ok := h.queue.index[item]
	return ok
}

// Re-establish the heap order after the key of item changed.
// Returns false if the item is not contained.
func (h *MinHeap[T]) Update(item T) bool {
	i, ok := h.queue.index[item]
	if !ok {
		return false
	}
	heap.Fix(&h.queue, i)
	return true
}

// Remove the item from the heap. Returns false if the item is not contained.
func (h *MinHeap[T]) Remove(item T) bool {
	i, ok := h.queue.index[item]
	if !ok {
		return false
	}
	heap.Remove(&h.queue, i)
	return true
}

// Remove all items
func (h *MinHeap[T]) Clear() {
	h.queue.items = h.queue.items[:0]
	clear(h.queue.index)
}

// Return the items in heap order (not sorted)
func (h *MinHeap[T]) Items() []T {
	items := make([]T, len(h.queue.items))
	copy(items, h.queue.items)
	return items
}

func (h *MinHeap[T]) String() string {
	var sb strings.Builder
	for i := 0; i < h.Len(); i++ {
		sb.WriteString(fmt.Sprintf("%v: %v\n", i, h.PeekAt(i)))
	}
	return sb.String()
}
