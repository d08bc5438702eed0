package models

import (
	"time"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	PlanCategories   = []string{"Faith", "Mental Health", "Relationships", "Purpose", "Character", "Wisdom", "Other"}
	PlanDifficulties = []string{"beginner", "intermediate", "advanced"}
)

type Passage struct {
	Day        int    `bson:"day" json:"day"`
	Reference  string `bson:"reference" json:"reference"`
	VerseText  string `bson:"verseText,omitempty" json:"verseText,omitempty"`
	Reflection string `bson:"reflection,omitempty" json:"reflection,omitempty"`
}

type PlanProgress struct {
	CurrentDay    int     `bson:"currentDay" json:"currentDay"`
	CompletedDays []int   `bson:"completedDays" json:"completedDays"`
	Percentage    float64 `bson:"percentage" json:"percentage"`
}

type Enrollment struct {
	User        primitive.ObjectID `bson:"user" json:"user"`
	Progress    PlanProgress       `bson:"progress" json:"progress"`
	StartedAt   time.Time          `bson:"startedAt" json:"startedAt"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	IsCompleted bool               `bson:"isCompleted" json:"isCompleted"`
}

type Rating struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	Rating    int                `bson:"rating" json:"rating"`
	Review    string             `bson:"review,omitempty" json:"review,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type ReadingPlan struct {
	Base             `bson:",inline"`
	Title            string             `bson:"title" json:"title"`
	Description      string             `bson:"description" json:"description"`
	Duration         string             `bson:"duration" json:"duration"`
	DurationDays     int                `bson:"durationDays" json:"durationDays"`
	Topic            string             `bson:"topic" json:"topic"`
	Category         string             `bson:"category" json:"category"`
	Passages         []Passage          `bson:"passages" json:"passages"`
	Status           Status             `bson:"status" json:"status"`
	Difficulty       string             `bson:"difficulty" json:"difficulty"`
	Icon             string             `bson:"icon" json:"icon"`
	ImageURL         string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	EnrolledUsers    []Enrollment       `bson:"enrolledUsers" json:"enrolledUsers"`
	TotalEnrollments int64              `bson:"totalEnrollments" json:"totalEnrollments"`
	CompletionRate   float64            `bson:"completionRate" json:"completionRate"`
	AverageRating    float64            `bson:"averageRating" json:"averageRating"`
	Ratings          []Rating           `bson:"ratings" json:"ratings"`
	CreatedBy        primitive.ObjectID `bson:"createdBy" json:"createdBy"`
}

func NewReadingPlan() *ReadingPlan {
	return &ReadingPlan{Category: "Other", Difficulty: "beginner", Icon: "BookMarked"}
}

func (p *ReadingPlan) Kind() Kind                     { return KindReadingPlan }
func (p *ReadingPlan) Owner() primitive.ObjectID      { return p.CreatedBy }
func (p *ReadingPlan) SetOwner(id primitive.ObjectID) { p.CreatedBy = id }
func (p *ReadingPlan) CurrentStatus() Status          { return p.Status }
func (p *ReadingPlan) SetStatus(s Status)             { p.Status = s }

func (p *ReadingPlan) Enrollment(user primitive.ObjectID) *Enrollment {
	for i := range p.EnrolledUsers {
		if p.EnrolledUsers[i].User == user {
			return &p.EnrolledUsers[i]
		}
	}
	return nil
}

// Enroll appends a fresh enrollment and keeps the derived counters in step.
func (p *ReadingPlan) Enroll(user primitive.ObjectID, now time.Time) *Enrollment {
	p.EnrolledUsers = append(p.EnrolledUsers, Enrollment{
		User:      user,
		Progress:  PlanProgress{CurrentDay: 1, CompletedDays: []int{}},
		StartedAt: now,
	})
	p.refreshCounters()
	return &p.EnrolledUsers[len(p.EnrolledUsers)-1]
}

// Rate records one rating per user, replacing an earlier one, and
// recomputes the average.
func (p *ReadingPlan) Rate(user primitive.ObjectID, rating int, review string, now time.Time) {
	replaced := false
	for i := range p.Ratings {
		if p.Ratings[i].User == user {
			p.Ratings[i] = Rating{User: user, Rating: rating, Review: review, CreatedAt: now}
			replaced = true
			break
		}
	}
	if !replaced {
		p.Ratings = append(p.Ratings, Rating{User: user, Rating: rating, Review: review, CreatedAt: now})
	}
	total := 0
	for _, r := range p.Ratings {
		total += r.Rating
	}
	p.AverageRating = float64(total) / float64(len(p.Ratings))
}

func (p *ReadingPlan) refreshCounters() {
	p.TotalEnrollments = int64(len(p.EnrolledUsers))
	if p.TotalEnrollments == 0 {
		p.CompletionRate = 0
		return
	}
	completed := 0
	for _, e := range p.EnrolledUsers {
		if e.IsCompleted {
			completed++
		}
	}
	p.CompletionRate = float64(completed) / float64(p.TotalEnrollments) * 100
}

// Complete marks the user's enrollment finished. It reports false when the
// enrollment was already complete.
func (p *ReadingPlan) Complete(e *Enrollment, now time.Time) bool {
	if e.IsCompleted {
		return false
	}
	e.IsCompleted = true
	e.CompletedAt = &now
	p.refreshCounters()
	return true
}

func (p *ReadingPlan) Normalize() {
	if p.Category == "" {
		p.Category = "Other"
	}
	if p.Difficulty == "" {
		p.Difficulty = "beginner"
	}
	if p.Icon == "" {
		p.Icon = "BookMarked"
	}
}

func (p *ReadingPlan) Validate() error {
	var days error
	if p.DurationDays <= 0 {
		days = apperr.Validation("durationDays", "Duration in days is required")
	}
	return firstErr(
		required("title", p.Title, "Title is required"),
		maxLength("title", p.Title, MaxTitleLength, "Title cannot exceed 200 characters"),
		required("description", p.Description, "Description is required"),
		required("duration", p.Duration, "Duration is required"),
		days,
		required("topic", p.Topic, "Topic is required"),
		oneOf("category", p.Category, PlanCategories, "Invalid reading plan category"),
		oneOf("difficulty", p.Difficulty, PlanDifficulties, "Invalid difficulty"),
	)
}

func (p *ReadingPlan) Preserve(prev *ReadingPlan) {
	p.Base = prev.Base
	p.CreatedBy = prev.CreatedBy
	p.Status = prev.Status
	p.EnrolledUsers = prev.EnrolledUsers
	p.TotalEnrollments = prev.TotalEnrollments
	p.CompletionRate = prev.CompletionRate
	p.AverageRating = prev.AverageRating
	p.Ratings = prev.Ratings
}
