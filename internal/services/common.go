package services

import (
	"errors"
	"math"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/store"
)

const MaxPageSize = 100

// PageRequest is a 1-indexed page of Size items.
type PageRequest struct {
	Page int64
	Size int64
}

// NewPageRequest falls back to page 1 and defaultSize on invalid input.
func NewPageRequest(page, size, defaultSize int64) PageRequest {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return PageRequest{Page: page, Size: size}
}

func (p PageRequest) skip() int64 {
	return (p.Page - 1) * p.Size
}

type Page[T any] struct {
	Items       []T   `json:"items"`
	Total       int64 `json:"total"`
	TotalPages  int64 `json:"totalPages"`
	CurrentPage int64 `json:"currentPage"`
}

// TotalPages is ceil(total / size).
func TotalPages(total, size int64) int64 {
	if size <= 0 {
		return 0
	}
	return int64(math.Ceil(float64(total) / float64(size)))
}

// storeErr labels persistence failures for the caller. what names the
// entity in not-found messages.
func storeErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(what)
	case errors.Is(err, store.ErrVersionConflict):
		return apperr.Conflict(what + " was modified concurrently, please retry")
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Conflict(what + " already exists")
	}
	return apperr.Internal("Server error", err)
}
