package vectorstore

import "fundqa/internal/domain"

// Index is a read-only view over the built passage index. Implementations
// must be safe for concurrent readers without locking.
type Index interface {
	Passages() []domain.Passage
	Products() []string
	Len() int
	Dimension() int
}
