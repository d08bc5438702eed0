package services

import (
	"context"
	"time"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/store"
	"golang.org/x/sync/errgroup"
)

type TotalActive struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
}

type Dashboard struct {
	Users struct {
		Total        int64 `json:"total"`
		Active       int64 `json:"active"`
		NewThisMonth int64 `json:"newThisMonth"`
	} `json:"users"`
	Content struct {
		Devotionals struct {
			Total     int64 `json:"total"`
			Published int64 `json:"published"`
		} `json:"devotionals"`
		Quests       TotalActive `json:"quests"`
		ReadingPlans TotalActive `json:"readingPlans"`
		Prayers      int64       `json:"prayers"`
		VerseArt     int64       `json:"verseArt"`
	} `json:"content"`
}

type AverageStats struct {
	AvgStreak       float64 `json:"avgStreak"`
	AvgPoints       float64 `json:"avgPoints"`
	AvgChaptersRead float64 `json:"avgChaptersRead"`
}

type UserAnalytics struct {
	Users            []models.User  `json:"users"`
	RoleDistribution []store.Bucket `json:"roleDistribution"`
	AverageStats     AverageStats   `json:"averageStats"`
}

type EngagementAnalytics struct {
	TopDevotionals        []models.Devotional  `json:"topDevotionals"`
	TopQuests             []models.Quest       `json:"topQuests"`
	TopReadingPlans       []models.ReadingPlan `json:"topReadingPlans"`
	TotalReads            int64                `json:"totalReads"`
	TotalQuestCompletions int64                `json:"totalQuestCompletions"`
}

type ContentAnalytics struct {
	DevotionalsByStatus    []store.Bucket `json:"devotionalsByStatus"`
	QuestsByDifficulty     []store.Bucket `json:"questsByDifficulty"`
	ReadingPlansByCategory []store.Bucket `json:"readingPlansByCategory"`
	PrayersByCategory      []store.Bucket `json:"prayersByCategory"`
}

type GrowthAnalytics struct {
	UserGrowth       []store.MonthBucket `json:"userGrowth"`
	DailyActiveUsers int64               `json:"dailyActiveUsers"`
}

const topListSize = 10

// Analytics computes admin reports straight from the stores. Each report
// issues its queries concurrently.
type Analytics struct {
	r   Repositories
	now func() time.Time
}

func NewAnalytics(r Repositories) *Analytics {
	return &Analytics{r: r, now: now}
}

func analyticsErr(err error) error {
	if err == nil {
		return nil
	}
	return apperr.Internal("Server error", err)
}

func countInto[T any](g *errgroup.Group, ctx context.Context, repo store.Repository[T], filter store.Filter, dst *int64) {
	g.Go(func() error {
		n, err := repo.Count(ctx, filter)
		*dst = n
		return err
	})
}

func topInto[T any](g *errgroup.Group, ctx context.Context, repo store.Repository[T], status models.Status, field string, dst *[]T) {
	g.Go(func() error {
		items, err := repo.List(ctx, store.Filter{"status": status}, store.ListOptions{
			Sort:  []store.SortField{{Field: field, Desc: true}},
			Limit: topListSize,
		})
		*dst = items
		return err
	})
}

func bucketsInto(g *errgroup.Group, ctx context.Context, agg store.Aggregator, field string, dst *[]store.Bucket) {
	g.Go(func() error {
		b, err := agg.CountBy(ctx, field, nil)
		*dst = b
		return err
	})
}

func (a *Analytics) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)
	monthAgo := a.now().AddDate(0, 0, -30)

	countInto(g, ctx, a.r.Users, nil, &d.Users.Total)
	countInto(g, ctx, a.r.Users, store.Filter{"isActive": true}, &d.Users.Active)
	countInto(g, ctx, a.r.Users, store.Filter{"createdAt": store.Filter{"$gte": monthAgo}}, &d.Users.NewThisMonth)
	countInto(g, ctx, a.r.Devotionals, nil, &d.Content.Devotionals.Total)
	countInto(g, ctx, a.r.Devotionals, store.Filter{"status": models.StatusPublished}, &d.Content.Devotionals.Published)
	countInto(g, ctx, a.r.Quests, nil, &d.Content.Quests.Total)
	countInto(g, ctx, a.r.Quests, store.Filter{"status": models.StatusActive}, &d.Content.Quests.Active)
	countInto(g, ctx, a.r.ReadingPlans, nil, &d.Content.ReadingPlans.Total)
	countInto(g, ctx, a.r.ReadingPlans, store.Filter{"status": models.StatusActive}, &d.Content.ReadingPlans.Active)
	countInto(g, ctx, a.r.Prayers, nil, &d.Content.Prayers)
	countInto(g, ctx, a.r.VerseArt, nil, &d.Content.VerseArt)

	if err := g.Wait(); err != nil {
		return nil, analyticsErr(err)
	}
	return &d, nil
}

func (a *Analytics) Users(ctx context.Context) (*UserAnalytics, error) {
	var out UserAnalytics
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		users, err := a.r.Users.List(ctx, nil, store.ListOptions{
			Sort:  []store.SortField{{Field: "createdAt", Desc: true}},
			Limit: 100,
		})
		out.Users = users
		return err
	})
	bucketsInto(g, ctx, a.r.Users, "role", &out.RoleDistribution)
	for field, dst := range map[string]*float64{
		"stats.streak":       &out.AverageStats.AvgStreak,
		"stats.totalPoints":  &out.AverageStats.AvgPoints,
		"stats.chaptersRead": &out.AverageStats.AvgChaptersRead,
	} {
		g.Go(func() error {
			v, err := a.r.Users.Avg(ctx, field, nil)
			*dst = v
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, analyticsErr(err)
	}
	return &out, nil
}

func (a *Analytics) Engagement(ctx context.Context) (*EngagementAnalytics, error) {
	var out EngagementAnalytics
	g, ctx := errgroup.WithContext(ctx)

	topInto(g, ctx, a.r.Devotionals, models.StatusPublished, "readCount", &out.TopDevotionals)
	topInto(g, ctx, a.r.Quests, models.StatusActive, "totalCompletions", &out.TopQuests)
	topInto(g, ctx, a.r.ReadingPlans, models.StatusActive, "totalEnrollments", &out.TopReadingPlans)
	g.Go(func() error {
		v, err := a.r.Devotionals.Sum(ctx, "readCount", nil)
		out.TotalReads = int64(v)
		return err
	})
	g.Go(func() error {
		v, err := a.r.Quests.Sum(ctx, "totalCompletions", nil)
		out.TotalQuestCompletions = int64(v)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, analyticsErr(err)
	}
	return &out, nil
}

func (a *Analytics) Content(ctx context.Context) (*ContentAnalytics, error) {
	var out ContentAnalytics
	g, ctx := errgroup.WithContext(ctx)

	bucketsInto(g, ctx, a.r.Devotionals, "status", &out.DevotionalsByStatus)
	bucketsInto(g, ctx, a.r.Quests, "difficulty", &out.QuestsByDifficulty)
	bucketsInto(g, ctx, a.r.ReadingPlans, "category", &out.ReadingPlansByCategory)
	bucketsInto(g, ctx, a.r.Prayers, "category", &out.PrayersByCategory)

	if err := g.Wait(); err != nil {
		return nil, analyticsErr(err)
	}
	return &out, nil
}

// Growth reports sign-ups per month over the last year and the number of
// users active in the last 30 days.
func (a *Analytics) Growth(ctx context.Context) (*GrowthAnalytics, error) {
	var out GrowthAnalytics
	g, ctx := errgroup.WithContext(ctx)
	t := a.now()

	g.Go(func() error {
		b, err := a.r.Users.CountByMonth(ctx, "createdAt",
			store.Filter{"createdAt": store.Filter{"$gte": t.AddDate(0, -12, 0)}})
		out.UserGrowth = b
		return err
	})
	countInto(g, ctx, a.r.Users, store.Filter{"lastActive": store.Filter{"$gte": t.AddDate(0, 0, -30)}}, &out.DailyActiveUsers)

	if err := g.Wait(); err != nil {
		return nil, analyticsErr(err)
	}
	return &out, nil
}
