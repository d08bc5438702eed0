// Package store defines the persistence contract shared by the Mongo and
// in-memory drivers.
package store

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/AnshRaj112/graceway-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound        = errors.New("store: document not found")
	ErrVersionConflict = errors.New("store: document changed concurrently")
	// ErrDuplicate is returned by Insert when a unique index rejects the document.
	ErrDuplicate = errors.New("store: duplicate key")
)

// MaxMutateAttempts bounds the compare-and-swap retry loop in Mutate.
const MaxMutateAttempts = 8

// Filter matches documents by exact value on (dotted) field paths. Values
// may also be operator documents using $gte, $gt, $lte, $lt, $ne or $in.
type Filter = bson.M

// Document is implemented by every stored model through models.Base.
type Document interface {
	Meta() *models.Base
}

// DocumentPtr constrains PT to be a pointer to T carrying document metadata.
type DocumentPtr[T any] interface {
	*T
	Document
}

type SortField struct {
	Field string
	Desc  bool
}

type ListOptions struct {
	Sort  []SortField
	Skip  int64
	Limit int64
}

// Bucket is one group of a CountBy aggregation. Key is nil for documents
// missing the field.
type Bucket struct {
	Key   any   `bson:"_id" json:"_id"`
	Count int64 `bson:"count" json:"count"`
}

type MonthBucket struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

type Aggregator interface {
	CountBy(ctx context.Context, field string, filter Filter) ([]Bucket, error)
	Sum(ctx context.Context, field string, filter Filter) (float64, error)
	Avg(ctx context.Context, field string, filter Filter) (float64, error)
	// CountByMonth groups by the year and month of a date field, oldest first.
	CountByMonth(ctx context.Context, field string, filter Filter) ([]MonthBucket, error)
}

type Repository[T any] interface {
	// Insert assigns an id when missing, stamps timestamps and sets version 1.
	Insert(ctx context.Context, doc *T) error
	Get(ctx context.Context, id primitive.ObjectID) (*T, error)
	// GetMany returns the documents in the order of ids, skipping missing ones.
	GetMany(ctx context.Context, ids []primitive.ObjectID) ([]T, error)
	List(ctx context.Context, filter Filter, opts ListOptions) ([]T, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	// Mutate applies fn to the current document and writes it back only if
	// nobody else wrote in between, re-reading and retrying otherwise. An
	// error from fn aborts without writing.
	Mutate(ctx context.Context, id primitive.ObjectID, fn func(*T) error) (*T, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Aggregator
}

// Transactor runs fn as one unit when the backend supports it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// Atomic reports whether WithTransaction rolls back on error. Callers
	// compensate by hand when it does not.
	Atomic() bool
}

// NoTransactions runs fn directly.
type NoTransactions struct{}

func (NoTransactions) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (NoTransactions) Atomic() bool { return false }

// Backoff sleeps before retry attempt n of a conflicting mutation.
func Backoff(ctx context.Context, n int) error {
	d := time.Duration(n*n)*time.Millisecond + rand.N(time.Millisecond)
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
