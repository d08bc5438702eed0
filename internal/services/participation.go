package services

import (
	"context"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Participation tracks users working through quests and reading plans.
// A user appears at most once in a quest's participants and once in a
// plan's enrollments.
type Participation struct {
	quests *EntityService[models.Quest, *models.Quest]
	plans  *EntityService[models.ReadingPlan, *models.ReadingPlan]
	users  store.Repository[models.User]
	log    *zap.Logger
}

func NewParticipation(c *Catalog, users store.Repository[models.User], log *zap.Logger) *Participation {
	return &Participation{
		quests: c.Quests,
		plans:  c.ReadingPlans,
		users:  users,
		log:    log.Named("participation"),
	}
}

func notJoined() error {
	return apperr.Validation("quest", "You have not joined this quest")
}

func notEnrolled() error {
	return apperr.Validation("plan", "You are not enrolled in this plan")
}

func validPercentage(p float64) error {
	if p < 0 || p > 100 {
		return apperr.Validation("percentage", "Percentage must be between 0 and 100")
	}
	return nil
}

func (p *Participation) JoinQuest(ctx context.Context, questID, user primitive.ObjectID) (*models.Quest, error) {
	return p.quests.Apply(ctx, questID, func(q *models.Quest) error {
		if q.Participant(user) != nil {
			return apperr.Conflict("Already joined this quest")
		}
		q.Join(user, now())
		return nil
	})
}

func (p *Participation) UpdateQuestProgress(ctx context.Context, questID, user primitive.ObjectID, progress models.QuestProgress) (models.QuestProgress, error) {
	if progress.ChaptersCompleted < 0 || progress.PointsEarned < 0 {
		return models.QuestProgress{}, apperr.Validation("progress", "Progress values cannot be negative")
	}
	if err := validPercentage(progress.Percentage); err != nil {
		return models.QuestProgress{}, err
	}
	_, err := p.quests.Apply(ctx, questID, func(q *models.Quest) error {
		part := q.Participant(user)
		if part == nil {
			return notJoined()
		}
		part.Progress = progress
		return nil
	})
	if err != nil {
		return models.QuestProgress{}, err
	}
	return progress, nil
}

// CompleteQuest counts a participant's completion once and credits the
// quest's points to the user's stats.
func (p *Participation) CompleteQuest(ctx context.Context, questID, user primitive.ObjectID) (*models.Quest, error) {
	q, err := p.quests.Apply(ctx, questID, func(q *models.Quest) error {
		part := q.Participant(user)
		if part == nil {
			return notJoined()
		}
		if !q.Complete(part, now()) {
			return apperr.Conflict("Quest already completed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_, err = p.users.Mutate(ctx, user, func(u *models.User) error {
		u.Stats.QuestsCompleted++
		u.Stats.TotalPoints += q.Points
		return nil
	})
	if err != nil {
		p.log.Warn("credit quest completion",
			zap.String("quest", questID.Hex()),
			zap.String("user", user.Hex()),
			zap.Error(err))
	}
	return q, nil
}

func (p *Participation) MyQuestProgress(ctx context.Context, questID, user primitive.ObjectID) (*models.QuestParticipant, error) {
	q, err := p.quests.Get(ctx, questID)
	if err != nil {
		return nil, err
	}
	part := q.Participant(user)
	if part == nil {
		return nil, apperr.NotFound("Quest participation")
	}
	return part, nil
}

func (p *Participation) Enroll(ctx context.Context, planID, user primitive.ObjectID) (*models.ReadingPlan, error) {
	return p.plans.Apply(ctx, planID, func(plan *models.ReadingPlan) error {
		if plan.Enrollment(user) != nil {
			return apperr.Conflict("Already enrolled in this plan")
		}
		plan.Enroll(user, now())
		return nil
	})
}

func (p *Participation) UpdatePlanProgress(ctx context.Context, planID, user primitive.ObjectID, progress models.PlanProgress) (models.PlanProgress, error) {
	if progress.CurrentDay < 1 {
		return models.PlanProgress{}, apperr.Validation("currentDay", "Current day must be at least 1")
	}
	if err := validPercentage(progress.Percentage); err != nil {
		return models.PlanProgress{}, err
	}
	if progress.CompletedDays == nil {
		progress.CompletedDays = []int{}
	}
	_, err := p.plans.Apply(ctx, planID, func(plan *models.ReadingPlan) error {
		e := plan.Enrollment(user)
		if e == nil {
			return notEnrolled()
		}
		if plan.DurationDays > 0 && progress.CurrentDay > plan.DurationDays {
			return apperr.Validation("currentDay", "Current day is beyond the end of the plan")
		}
		e.Progress = progress
		return nil
	})
	if err != nil {
		return models.PlanProgress{}, err
	}
	return progress, nil
}

func (p *Participation) CompletePlan(ctx context.Context, planID, user primitive.ObjectID) (*models.ReadingPlan, error) {
	return p.plans.Apply(ctx, planID, func(plan *models.ReadingPlan) error {
		e := plan.Enrollment(user)
		if e == nil {
			return notEnrolled()
		}
		if !plan.Complete(e, now()) {
			return apperr.Conflict("Plan already completed")
		}
		return nil
	})
}

// RatePlan stores the user's 1 to 5 rating and returns the new average.
func (p *Participation) RatePlan(ctx context.Context, planID, user primitive.ObjectID, rating int, review string) (float64, error) {
	if rating < 1 || rating > 5 {
		return 0, apperr.Validation("rating", "Rating must be between 1 and 5")
	}
	plan, err := p.plans.Apply(ctx, planID, func(plan *models.ReadingPlan) error {
		plan.Rate(user, rating, review, now())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return plan.AverageRating, nil
}

func (p *Participation) MyPlanProgress(ctx context.Context, planID, user primitive.ObjectID) (*models.Enrollment, error) {
	plan, err := p.plans.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	e := plan.Enrollment(user)
	if e == nil {
		return nil, apperr.NotFound("Plan enrollment")
	}
	return e, nil
}

func (p *Participation) MyPlans(ctx context.Context, user primitive.ObjectID) ([]models.ReadingPlan, error) {
	return p.plans.Find(ctx, store.Filter{"enrolledUsers.user": user},
		[]store.SortField{{Field: "createdAt", Desc: true}}, 0)
}
