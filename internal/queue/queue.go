// Package queue holds the row buffers between the recording backend and its
// database writer.
package queue

import "sync"

// Queue buffers rows in arrival order until the writer takes them. Safe for
// concurrent use.
type Queue[T any] struct {
	mu   sync.Mutex
	rows []T
}

// New returns an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends rows behind everything already queued.
func (w *Queue[T]) Push(rows ...T) {
	w.mu.Lock()
	w.rows = append(w.rows, rows...)
	w.mu.Unlock()
}

// Requeue returns a batch that failed to write. The batch goes back in front
// of rows pushed after it was taken, in its original order.
func (w *Queue[T]) Requeue(batch ...T) {
	if len(batch) == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	rows := make([]T, 0, len(batch)+len(w.rows))
	rows = append(rows, batch...)
	w.rows = append(rows, w.rows...)
}

// Take removes up to n rows from the front and returns them. n <= 0 takes
// everything. The returned slice never shares memory with the queue.
func (w *Queue[T]) Take(n int) []T {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.rows) == 0 {
		return nil
	}
	if n <= 0 || n > len(w.rows) {
		n = len(w.rows)
	}
	batch := make([]T, n)
	copy(batch, w.rows)
	w.rows = append(w.rows[:0:0], w.rows[n:]...)
	return batch
}

// Len reports how many rows are waiting.
func (w *Queue[T]) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.rows)
}
