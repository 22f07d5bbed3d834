package executor

import "sync"

// Buffer accumulates written chunks and joins them in a single allocation
// when Bytes is called. It is safe for concurrent use.
type Buffer struct {
	mu     sync.Mutex
	chunks [][]byte
	n      int
}

// Write stores a copy of p.
func (b *Buffer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	chunk := make([]byte, len(p))
	copy(chunk, p)

	b.mu.Lock()
	b.chunks = append(b.chunks, chunk)
	b.n += len(p)
	b.mu.Unlock()
	return len(p), nil
}

// Bytes returns all written bytes in order. An empty buffer returns an
// empty, non-nil slice.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]byte, 0, b.n)
	for _, c := range b.chunks {
		out = append(out, c...)
	}
	return out
}
