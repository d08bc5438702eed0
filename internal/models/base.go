package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxTitleLength   = 200
	MaxNameLength    = 50
	MaxCommentLength = 1000
)

// Base is embedded inline in every stored document. Version is bumped by
// the store on each successful write and is never exposed to clients.
type Base struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Version   int64              `bson:"version" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (b *Base) Meta() *Base { return b }

func required(field, value, message string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Validation(field, message)
	}
	return nil
}

func maxLength(field, value string, n int, message string) error {
	if utf8.RuneCountInString(value) > n {
		return apperr.Validation(field, message)
	}
	return nil
}

func oneOf[T ~string](field string, value T, allowed []T, message string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return apperr.Validation(field, message)
}

// firstErr returns the first non-nil error in order.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
