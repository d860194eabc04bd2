package evictingqueue

import "sync"

//
// EvictingQueue is a thread-safe queue structure that automatically maintains the desired maximum
// size by evicting its oldest element if a new element is being added when at capacity. It is
// modeled after the EvictingQueue class from the Google Guava library for Java.
//
type EvictingQueue[T any] struct {
	mu    *sync.Mutex
	size  int
	queue []T
}

//
// New instantiates a new evicting queue with the specified maximum size.
//
func New[T any](maxSize int) *EvictingQueue[T] {
	return &EvictingQueue[T]{
		mu:    &sync.Mutex{},
		size:  maxSize,
		queue: make([]T, 0, maxSize),
	}
}

//
// Add appends the provided element to the evicting queue and evicts the oldest element if necessary
// to maintain its maximum size.
//
func (o *EvictingQueue[T]) Add(e T) {
	o.mu.Lock()
	defer o.mu.Unlock()

	//
	// Remove the oldest element from the tail of the queue if we are currently at capacity.
	//
	if len(o.queue) == o.size {
		o.drop(1)
	}

	//
	// Append the new element to head of the queue.
	//
	o.queue = append(o.queue, e)
}

//
// Get returns the element that exists at the specified index of the queue and a true sentinel, or
// the zero value and a false sentinel if the index is out-of-range.
//
func (o *EvictingQueue[T]) Get(index int) (T, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if index < 0 || index >= len(o.queue) {
		var zero T

		return zero, false
	}

	return o.queue[index], true
}

//
// Set replaces the element at the specified index. A false sentinel is returned if the index is
// out-of-range, in which case the queue is left untouched.
//
func (o *EvictingQueue[T]) Set(index int, e T) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if index < 0 || index >= len(o.queue) {
		return false
	}

	o.queue[index] = e

	return true
}

//
// Drop evicts up to n of the oldest elements from the queue.
//
func (o *EvictingQueue[T]) Drop(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.drop(n)
}

//
// Clear evicts every element from the queue.
//
func (o *EvictingQueue[T]) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.queue = o.queue[:0]
}

//
// Slice returns a copy of the queue's elements, oldest first.
//
func (o *EvictingQueue[T]) Slice() []T {
	o.mu.Lock()
	defer o.mu.Unlock()

	ret := make([]T, len(o.queue))
	copy(ret, o.queue)

	return ret
}

//
// Len returns the current length of the queue.
//
func (o *EvictingQueue[T]) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.queue)
}

//
// Cap returns the maximum length of the queue.
//
func (o *EvictingQueue[T]) Cap() int {
	return o.size
}

func (o *EvictingQueue[T]) drop(n int) {
	if n > len(o.queue) {
		n = len(o.queue)
	}

	// NOTE ~> Shift in place rather than re-slicing so that the backing array does not creep
	//  forward and reallocate on every eviction.

	copy(o.queue, o.queue[n:])
	o.queue = o.queue[:len(o.queue)-n]
}
