// Package memory is an in-process store driver. Documents live in a keyed
// table as encoded BSON so every read hands out an independent copy.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/AnshRaj112/graceway-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type entry struct {
	raw     []byte
	version int64
}

type Repository[T any, PT store.DocumentPtr[T]] struct {
	mu   sync.RWMutex
	docs map[primitive.ObjectID]entry
	now  func() time.Time
}

func NewRepository[T any, PT store.DocumentPtr[T]]() *Repository[T, PT] {
	return &Repository[T, PT]{
		docs: make(map[primitive.ObjectID]entry),
		now:  time.Now,
	}
}

// stamp matches the millisecond precision of BSON dates.
func (r *Repository[T, PT]) stamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

func (r *Repository[T, PT]) decode(raw []byte) (*T, error) {
	doc := new(T)
	if err := bson.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("memory: decode: %w", err)
	}
	return doc, nil
}

func (r *Repository[T, PT]) Insert(ctx context.Context, doc *T) error {
	meta := PT(doc).Meta()
	if meta.ID.IsZero() {
		meta.ID = primitive.NewObjectID()
	}
	now := r.stamp()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	meta.CreatedAt = meta.CreatedAt.UTC().Truncate(time.Millisecond)
	meta.UpdatedAt = now
	meta.Version = 1

	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("memory: encode: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.docs[meta.ID]; exists {
		return fmt.Errorf("memory: id %s: %w", meta.ID.Hex(), store.ErrDuplicate)
	}
	r.docs[meta.ID] = entry{raw: raw, version: meta.Version}
	return nil
}

func (r *Repository[T, PT]) Get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	r.mu.RLock()
	e, ok := r.docs[id]
	r.mu.RUnlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	return r.decode(e.raw)
}

func (r *Repository[T, PT]) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		e, ok := r.docs[id]
		if !ok {
			continue
		}
		doc, err := r.decode(e.raw)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, nil
}

type row struct {
	id  primitive.ObjectID
	raw []byte
	doc bson.M
}

// scan returns the rows matching filter ordered by _id.
func (r *Repository[T, PT]) scan(filter store.Filter) ([]row, error) {
	normalized, err := normalize(filter)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var rows []row
	for id, e := range r.docs {
		var m bson.M
		if err := bson.Unmarshal(e.raw, &m); err != nil {
			return nil, fmt.Errorf("memory: decode: %w", err)
		}
		if matches(m, normalized) {
			rows = append(rows, row{id: id, raw: e.raw, doc: m})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return bytes.Compare(rows[i].id[:], rows[j].id[:]) < 0
	})
	return rows, nil
}

// normalize runs the filter through the BSON codec so its values have the
// same Go types as decoded documents.
func normalize(filter store.Filter) (bson.M, error) {
	if len(filter) == 0 {
		return bson.M{}, nil
	}
	raw, err := bson.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("memory: encode filter: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("memory: decode filter: %w", err)
	}
	return m, nil
}

func (r *Repository[T, PT]) List(ctx context.Context, filter store.Filter, opts store.ListOptions) ([]T, error) {
	rows, err := r.scan(filter)
	if err != nil {
		return nil, err
	}
	if len(opts.Sort) > 0 {
		sort.SliceStable(rows, func(i, j int) bool {
			for _, s := range opts.Sort {
				c := compareForSort(sortValue(rows[i].doc, s.Field), sortValue(rows[j].doc, s.Field))
				if c == 0 {
					continue
				}
				if s.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	if opts.Skip > 0 {
		if opts.Skip >= int64(len(rows)) {
			rows = nil
		} else {
			rows = rows[opts.Skip:]
		}
	}
	if opts.Limit > 0 && int64(len(rows)) > opts.Limit {
		rows = rows[:opts.Limit]
	}

	out := make([]T, 0, len(rows))
	for _, rw := range rows {
		doc, err := r.decode(rw.raw)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, nil
}

func (r *Repository[T, PT]) Count(ctx context.Context, filter store.Filter) (int64, error) {
	rows, err := r.scan(filter)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

func (r *Repository[T, PT]) Mutate(ctx context.Context, id primitive.ObjectID, fn func(*T) error) (*T, error) {
	for attempt := 0; attempt < store.MaxMutateAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.mu.RLock()
		e, ok := r.docs[id]
		r.mu.RUnlock()
		if !ok {
			return nil, store.ErrNotFound
		}
		doc, err := r.decode(e.raw)
		if err != nil {
			return nil, err
		}
		if err := fn(doc); err != nil {
			return nil, err
		}

		meta := PT(doc).Meta()
		meta.ID = id
		meta.Version = e.version + 1
		meta.UpdatedAt = r.stamp()
		raw, err := bson.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("memory: encode: %w", err)
		}

		r.mu.Lock()
		current, ok := r.docs[id]
		switch {
		case !ok:
			r.mu.Unlock()
			return nil, store.ErrNotFound
		case current.version != e.version:
			r.mu.Unlock()
			if err := store.Backoff(ctx, attempt+1); err != nil {
				return nil, err
			}
			continue
		}
		r.docs[id] = entry{raw: raw, version: meta.Version}
		r.mu.Unlock()
		return doc, nil
	}
	return nil, store.ErrVersionConflict
}

func (r *Repository[T, PT]) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *Repository[T, PT]) CountBy(ctx context.Context, field string, filter store.Filter) ([]store.Bucket, error) {
	rows, err := r.scan(filter)
	if err != nil {
		return nil, err
	}
	var buckets []store.Bucket
	for _, rw := range rows {
		key := sortValue(rw.doc, field)
		found := false
		for i := range buckets {
			if equal(buckets[i].Key, key) {
				buckets[i].Count++
				found = true
				break
			}
		}
		if !found {
			buckets = append(buckets, store.Bucket{Key: key, Count: 1})
		}
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Count > buckets[j].Count
	})
	return buckets, nil
}

func (r *Repository[T, PT]) numbers(field string, filter store.Filter) ([]float64, error) {
	rows, err := r.scan(filter)
	if err != nil {
		return nil, err
	}
	var out []float64
	for _, rw := range rows {
		if n, ok := number(sortValue(rw.doc, field)); ok {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *Repository[T, PT]) Sum(ctx context.Context, field string, filter store.Filter) (float64, error) {
	values, err := r.numbers(field, filter)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total, nil
}

func (r *Repository[T, PT]) Avg(ctx context.Context, field string, filter store.Filter) (float64, error) {
	values, err := r.numbers(field, filter)
	if err != nil || len(values) == 0 {
		return 0, err
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values)), nil
}

func (r *Repository[T, PT]) CountByMonth(ctx context.Context, field string, filter store.Filter) ([]store.MonthBucket, error) {
	rows, err := r.scan(filter)
	if err != nil {
		return nil, err
	}
	counts := make(map[[2]int]int64)
	for _, rw := range rows {
		dt, ok := sortValue(rw.doc, field).(primitive.DateTime)
		if !ok {
			continue
		}
		t := dt.Time().UTC()
		counts[[2]int{t.Year(), int(t.Month())}]++
	}
	out := make([]store.MonthBucket, 0, len(counts))
	for k, n := range counts {
		out = append(out, store.MonthBucket{Year: k[0], Month: k[1], Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}
