package models

import "gorm.io/gorm"

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// Page describes offset pagination as requested by the caller, clamped to
// sane bounds so a single request cannot drag the whole table over the wire.
type Page struct {
	Number int
	Size   int
}

func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Apply(db *gorm.DB) *gorm.DB {
	return db.Offset((p.Number - 1) * p.Size).Limit(p.Size)
}

// PaginatedResult is the generic list envelope returned by listing endpoints.
type PaginatedResult[T any] struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  []T   `json:"results"`
}
