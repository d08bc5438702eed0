package models

import (
	"time"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var VerseThemes = []string{"Faith", "Hope", "Love", "Peace", "Courage", "Wisdom", "Gratitude", "Other"}

// VerseOfDay is scheduled for a single calendar day. Date is always
// stored as midnight UTC.
type VerseOfDay struct {
	Base            `bson:",inline"`
	Verse           string             `bson:"verse" json:"verse"`
	Reference       string             `bson:"reference" json:"reference"`
	Date            time.Time          `bson:"date" json:"date"`
	Status          Status             `bson:"status" json:"status"`
	Translation     string             `bson:"translation" json:"translation"`
	Theme           string             `bson:"theme" json:"theme"`
	ImageURL        string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	BackgroundColor string             `bson:"backgroundColor" json:"backgroundColor"`
	Shares          int64              `bson:"shares" json:"shares"`
	Likes           LikeSet            `bson:"likes" json:"likes"`
	Reflections     Reflections        `bson:"reflections" json:"reflections"`
	CreatedBy       primitive.ObjectID `bson:"createdBy" json:"createdBy"`
}

func NewVerseOfDay() *VerseOfDay {
	return &VerseOfDay{Translation: "NIV", Theme: "Other", BackgroundColor: "#161d49"}
}

func (v *VerseOfDay) Kind() Kind                           { return KindVerseOfDay }
func (v *VerseOfDay) Owner() primitive.ObjectID            { return v.CreatedBy }
func (v *VerseOfDay) SetOwner(id primitive.ObjectID)       { v.CreatedBy = id }
func (v *VerseOfDay) CurrentStatus() Status                { return v.Status }
func (v *VerseOfDay) SetStatus(s Status)                   { v.Status = s }
func (v *VerseOfDay) ToggleLike(u primitive.ObjectID) bool { return v.Likes.Toggle(u) }
func (v *VerseOfDay) LikeCount() int                       { return len(v.Likes) }
func (v *VerseOfDay) ReflectionLog() *Reflections          { return &v.Reflections }

func (v *VerseOfDay) Increment(c Counter) (int64, bool) {
	if c != CounterShares {
		return 0, false
	}
	v.Shares++
	return v.Shares, true
}

func (v *VerseOfDay) Normalize() {
	if !v.Date.IsZero() {
		v.Date = Day(v.Date)
	}
	if v.Translation == "" {
		v.Translation = "NIV"
	}
	if v.Theme == "" {
		v.Theme = "Other"
	}
}

func (v *VerseOfDay) Validate() error {
	var date error
	if v.Date.IsZero() {
		date = apperr.Validation("date", "Date is required")
	}
	return firstErr(
		required("verse", v.Verse, "Verse text is required"),
		required("reference", v.Reference, "Verse reference is required"),
		date,
		oneOf("theme", v.Theme, VerseThemes, "Invalid verse theme"),
	)
}

func (v *VerseOfDay) Preserve(prev *VerseOfDay) {
	v.Base = prev.Base
	v.CreatedBy = prev.CreatedBy
	v.Status = prev.Status
	v.Shares = prev.Shares
	v.Likes = prev.Likes
	v.Reflections = prev.Reflections
}
