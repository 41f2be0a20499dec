// README: Pagination value objects shared by stores and HTTP handlers.
package types

import "math"

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Order is a single sort criterion. Property uses the JSON field name.
type Order struct {
	Property  string
	Direction Direction
}

// Pageable describes a zero-based page request.
type Pageable struct {
	Page int
	Size int
	Sort []Order
}

// Offset saturates at math.MaxInt instead of overflowing.
func (p Pageable) Offset() int {
	if p.Size > 0 && p.Page > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Page * p.Size
}

type Page[T any] struct {
	Content  []T
	Total    int64
	Pageable Pageable
}

func (p Page[T]) TotalPages() int {
	if p.Pageable.Size <= 0 {
		return 1
	}
	return int((p.Total + int64(p.Pageable.Size) - 1) / int64(p.Pageable.Size))
}

// Number is the zero-based index of this page.
func (p Page[T]) Number() int {
	return p.Pageable.Page
}
