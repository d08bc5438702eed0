package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var PrayerCategories = []string{"Personal", "Family", "Friends", "Health", "Guidance", "Gratitude", "World", "Other"}

type PrayerRecord struct {
	User     primitive.ObjectID `bson:"user" json:"user"`
	PrayedAt time.Time          `bson:"prayedAt" json:"prayedAt"`
}

type Position struct {
	X float64 `bson:"x" json:"x"`
	Y float64 `bson:"y" json:"y"`
}

// Prayer is a node in the prayer forest. ParentNode is nil for roots and
// every id in ChildNodes points back at this prayer through its ParentNode.
type Prayer struct {
	Base         `bson:",inline"`
	User         primitive.ObjectID   `bson:"user" json:"user"`
	Title        string               `bson:"title" json:"title"`
	Content      string               `bson:"content" json:"content"`
	Category     string               `bson:"category" json:"category"`
	IsPrivate    bool                 `bson:"isPrivate" json:"isPrivate"`
	IsAnswered   bool                 `bson:"isAnswered" json:"isAnswered"`
	AnsweredAt   *time.Time           `bson:"answeredAt,omitempty" json:"answeredAt,omitempty"`
	AnsweredNote string               `bson:"answeredNote,omitempty" json:"answeredNote,omitempty"`
	PrayerCount  int64                `bson:"prayerCount" json:"prayerCount"`
	PrayedBy     []PrayerRecord       `bson:"prayedBy" json:"prayedBy"`
	Likes        LikeSet              `bson:"likes" json:"likes"`
	Comments     Comments             `bson:"comments" json:"comments"`
	Status       Status               `bson:"status" json:"status"`
	ParentNode   *primitive.ObjectID  `bson:"parentNode" json:"parentNode"`
	ChildNodes   []primitive.ObjectID `bson:"childNodes" json:"childNodes"`
	Position     Position             `bson:"position" json:"position"`
}

// NewPrayer returns a prayer carrying the defaults a request body may omit.
func NewPrayer() *Prayer {
	return &Prayer{Category: "Personal", IsPrivate: true}
}

func (p *Prayer) Kind() Kind                           { return KindPrayer }
func (p *Prayer) Owner() primitive.ObjectID            { return p.User }
func (p *Prayer) SetOwner(id primitive.ObjectID)       { p.User = id }
func (p *Prayer) CurrentStatus() Status                { return p.Status }
func (p *Prayer) SetStatus(s Status)                   { p.Status = s }
func (p *Prayer) ToggleLike(u primitive.ObjectID) bool { return p.Likes.Toggle(u) }
func (p *Prayer) LikeCount() int                       { return len(p.Likes) }
func (p *Prayer) Thread() *Comments                    { return &p.Comments }
func (p *Prayer) DisplayTitle() string                 { return p.Title }
func (p *Prayer) Flag()                                { p.Status = StatusFlagged }
func (p *Prayer) Unflag()                              { p.Status = StatusActive }

// VisibleTo hides private prayers from everyone but the owner and staff.
func (p *Prayer) VisibleTo(a Actor) bool {
	return !p.IsPrivate || p.User == a.ID || a.Elevated()
}

// RecordPrayedFor adds user once and bumps PrayerCount. It reports false
// when user had already prayed.
func (p *Prayer) RecordPrayedFor(user primitive.ObjectID, now time.Time) bool {
	for _, r := range p.PrayedBy {
		if r.User == user {
			return false
		}
	}
	p.PrayedBy = append(p.PrayedBy, PrayerRecord{User: user, PrayedAt: now})
	p.PrayerCount++
	return true
}

func (p *Prayer) MarkAnswered(note string, now time.Time) {
	p.IsAnswered = true
	p.AnsweredAt = &now
	p.AnsweredNote = note
}

// AttachChild appends id unless it is already linked.
func (p *Prayer) AttachChild(id primitive.ObjectID) {
	for _, c := range p.ChildNodes {
		if c == id {
			return
		}
	}
	p.ChildNodes = append(p.ChildNodes, id)
}

func (p *Prayer) Normalize() {
	if p.Category == "" {
		p.Category = "Personal"
	}
}

func (p *Prayer) Validate() error {
	return firstErr(
		required("title", p.Title, "Prayer title is required"),
		maxLength("title", p.Title, MaxTitleLength, "Title cannot exceed 200 characters"),
		required("content", p.Content, "Prayer content is required"),
		oneOf("category", p.Category, PrayerCategories, "Invalid prayer category"),
	)
}

// Preserve copies back everything an owner's edit must not touch.
func (p *Prayer) Preserve(prev *Prayer) {
	p.Base = prev.Base
	p.User = prev.User
	p.Status = prev.Status
	p.IsAnswered = prev.IsAnswered
	p.AnsweredAt = prev.AnsweredAt
	p.AnsweredNote = prev.AnsweredNote
	p.PrayerCount = prev.PrayerCount
	p.PrayedBy = prev.PrayedBy
	p.Likes = prev.Likes
	p.Comments = prev.Comments
	p.ParentNode = prev.ParentNode
	p.ChildNodes = prev.ChildNodes
}
