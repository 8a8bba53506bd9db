package store

import (
	"fmt"

	"foodmap/internal/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50
)

// Page 分頁參數；Number 從 1 開始
type Page struct {
	Number int
	Limit  int
}

// NewPage validates page >= 1 and 1 <= limit <= MaxLimit.
func NewPage(page, limit int) (Page, error) {
	if page < 1 {
		return Page{}, apperr.Validation("page must be >= 1")
	}
	if limit < 1 || limit > MaxLimit {
		return Page{}, apperr.Validation(fmt.Sprintf("limit must be between 1 and %d", MaxLimit))
	}
	return Page{Number: page, Limit: limit}, nil
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}
