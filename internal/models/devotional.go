package models

import (
	"time"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var DevotionalCategories = []string{"Faith", "Hope", "Love", "Peace", "Strength", "Wisdom", "Gratitude", "Other"}

type Devotional struct {
	Base        `bson:",inline"`
	Title       string             `bson:"title" json:"title"`
	Content     string             `bson:"content" json:"content"`
	Verse       string             `bson:"verse" json:"verse"`
	VerseText   string             `bson:"verseText,omitempty" json:"verseText,omitempty"`
	Date        time.Time          `bson:"date" json:"date"`
	Status      Status             `bson:"status" json:"status"`
	Category    string             `bson:"category" json:"category"`
	Author      primitive.ObjectID `bson:"author" json:"author"`
	Tags        []string           `bson:"tags" json:"tags"`
	ReadCount   int64              `bson:"readCount" json:"readCount"`
	Likes       LikeSet            `bson:"likes" json:"likes"`
	Reflections Reflections        `bson:"reflections" json:"reflections"`
}

func NewDevotional() *Devotional {
	return &Devotional{Category: "Other"}
}

func (d *Devotional) Kind() Kind                           { return KindDevotional }
func (d *Devotional) Owner() primitive.ObjectID            { return d.Author }
func (d *Devotional) SetOwner(id primitive.ObjectID)       { d.Author = id }
func (d *Devotional) CurrentStatus() Status                { return d.Status }
func (d *Devotional) SetStatus(s Status)                   { d.Status = s }
func (d *Devotional) ToggleLike(u primitive.ObjectID) bool { return d.Likes.Toggle(u) }
func (d *Devotional) LikeCount() int                       { return len(d.Likes) }
func (d *Devotional) ReflectionLog() *Reflections          { return &d.Reflections }

// Devotionals have no flagged state; a flag archives them and an unflag
// publishes them again.
func (d *Devotional) Flag()   { d.Status = StatusArchived }
func (d *Devotional) Unflag() { d.Status = StatusPublished }

func (d *Devotional) Increment(c Counter) (int64, bool) {
	if c != CounterReadCount {
		return 0, false
	}
	d.ReadCount++
	return d.ReadCount, true
}

func (d *Devotional) Normalize() {
	if d.Category == "" {
		d.Category = "Other"
	}
}

func (d *Devotional) Validate() error {
	var date error
	if d.Date.IsZero() {
		date = apperr.Validation("date", "Date is required")
	}
	return firstErr(
		required("title", d.Title, "Title is required"),
		maxLength("title", d.Title, MaxTitleLength, "Title cannot exceed 200 characters"),
		required("content", d.Content, "Content is required"),
		required("verse", d.Verse, "Verse reference is required"),
		date,
		oneOf("category", d.Category, DevotionalCategories, "Invalid devotional category"),
	)
}

func (d *Devotional) Preserve(prev *Devotional) {
	d.Base = prev.Base
	d.Author = prev.Author
	d.Status = prev.Status
	d.ReadCount = prev.ReadCount
	d.Likes = prev.Likes
	d.Reflections = prev.Reflections
}
