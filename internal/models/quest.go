package models

import (
	"time"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	QuestDifficulties    = []string{"easy", "medium", "hard"}
	QuestCategories      = []string{"Old Testament", "New Testament", "Wisdom", "Prophets", "Gospels", "Letters", "Other"}
	QuestRequirementType = []string{"read", "memorize", "reflect", "quiz", "discuss"}
)

type Requirement struct {
	Type        string `bson:"type" json:"type"`
	Description string `bson:"description" json:"description"`
	Completed   bool   `bson:"completed" json:"completed"`
}

type Milestone struct {
	Chapter int    `bson:"chapter" json:"chapter"`
	Points  int    `bson:"points" json:"points"`
	Title   string `bson:"title" json:"title"`
}

type QuestProgress struct {
	ChaptersCompleted int     `bson:"chaptersCompleted" json:"chaptersCompleted"`
	Percentage        float64 `bson:"percentage" json:"percentage"`
	PointsEarned      int     `bson:"pointsEarned" json:"pointsEarned"`
}

type QuestParticipant struct {
	User        primitive.ObjectID `bson:"user" json:"user"`
	Progress    QuestProgress      `bson:"progress" json:"progress"`
	StartedAt   time.Time          `bson:"startedAt" json:"startedAt"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	IsCompleted bool               `bson:"isCompleted" json:"isCompleted"`
}

type Quest struct {
	Base             `bson:",inline"`
	Title            string             `bson:"title" json:"title"`
	Book             string             `bson:"book" json:"book"`
	Chapters         string             `bson:"chapters" json:"chapters"`
	Description      string             `bson:"description" json:"description"`
	Points           int                `bson:"points" json:"points"`
	Difficulty       string             `bson:"difficulty" json:"difficulty"`
	Status           Status             `bson:"status" json:"status"`
	Icon             string             `bson:"icon" json:"icon"`
	Category         string             `bson:"category" json:"category"`
	Requirements     []Requirement      `bson:"requirements" json:"requirements"`
	Milestones       []Milestone        `bson:"milestones" json:"milestones"`
	Participants     []QuestParticipant `bson:"participants" json:"participants"`
	TotalCompletions int64              `bson:"totalCompletions" json:"totalCompletions"`
	AverageRating    float64            `bson:"averageRating" json:"averageRating"`
	CreatedBy        primitive.ObjectID `bson:"createdBy" json:"createdBy"`
}

func NewQuest() *Quest {
	return &Quest{Points: 100, Difficulty: "easy", Icon: "BookOpen", Category: "Other"}
}

func (q *Quest) Kind() Kind                     { return KindQuest }
func (q *Quest) Owner() primitive.ObjectID      { return q.CreatedBy }
func (q *Quest) SetOwner(id primitive.ObjectID) { q.CreatedBy = id }
func (q *Quest) CurrentStatus() Status          { return q.Status }
func (q *Quest) SetStatus(s Status)             { q.Status = s }

// Participant returns the user's participation record, or nil.
func (q *Quest) Participant(user primitive.ObjectID) *QuestParticipant {
	for i := range q.Participants {
		if q.Participants[i].User == user {
			return &q.Participants[i]
		}
	}
	return nil
}

func (q *Quest) Normalize() {
	if q.Difficulty == "" {
		q.Difficulty = "easy"
	}
	if q.Category == "" {
		q.Category = "Other"
	}
	if q.Icon == "" {
		q.Icon = "BookOpen"
	}
}

func (q *Quest) Validate() error {
	var points, reqs error
	if q.Points < 0 {
		points = apperr.Validation("points", "Points cannot be negative")
	}
	for _, r := range q.Requirements {
		if err := oneOf("requirements.type", r.Type, QuestRequirementType, "Invalid requirement type"); err != nil {
			reqs = err
			break
		}
	}
	return firstErr(
		required("title", q.Title, "Title is required"),
		maxLength("title", q.Title, MaxTitleLength, "Title cannot exceed 200 characters"),
		required("book", q.Book, "Book is required"),
		required("chapters", q.Chapters, "Chapters are required"),
		required("description", q.Description, "Description is required"),
		points,
		oneOf("difficulty", q.Difficulty, QuestDifficulties, "Invalid difficulty"),
		oneOf("category", q.Category, QuestCategories, "Invalid quest category"),
		reqs,
	)
}

func (q *Quest) Preserve(prev *Quest) {
	q.Base = prev.Base
	q.CreatedBy = prev.CreatedBy
	q.Status = prev.Status
	q.Participants = prev.Participants
	q.TotalCompletions = prev.TotalCompletions
	q.AverageRating = prev.AverageRating
}

func (q *Quest) Join(user primitive.ObjectID, now time.Time) *QuestParticipant {
	q.Participants = append(q.Participants, QuestParticipant{User: user, StartedAt: now})
	return &q.Participants[len(q.Participants)-1]
}

// Complete finishes the participant's run and counts it once.
func (q *Quest) Complete(p *QuestParticipant, now time.Time) bool {
	if p.IsCompleted {
		return false
	}
	p.IsCompleted = true
	p.CompletedAt = &now
	q.TotalCompletions++
	return true
}
