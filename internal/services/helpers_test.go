package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/store"
	"github.com/AnshRaj112/graceway-backend/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type testEnv struct {
	repos    Repositories
	catalog  *Catalog
	hub      *EventHub
	sessions *MemorySessions
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repos := Repositories{
		Users:        memory.NewRepository[models.User](),
		Devotionals:  memory.NewRepository[models.Devotional](),
		Prayers:      memory.NewRepository[models.Prayer](),
		Quests:       memory.NewRepository[models.Quest](),
		ReadingPlans: memory.NewRepository[models.ReadingPlan](),
		VerseArt:     memory.NewRepository[models.VerseArt](),
		VersesOfDay:  memory.NewRepository[models.VerseOfDay](),
		Tx:           store.NoTransactions{},
	}
	return &testEnv{
		repos:    repos,
		catalog:  NewCatalog(repos, zap.NewNop()),
		hub:      NewEventHub(nil, zap.NewNop()),
		sessions: NewMemorySessions(time.Hour),
	}
}

func (e *testEnv) user(t *testing.T, name string, role models.Role) models.Actor {
	t.Helper()
	u := models.NewUser(name, strings.ToLower(name)+"@example.com")
	u.Role = role
	require.NoError(t, e.repos.Users.Insert(context.Background(), u))
	return u.Actor()
}

func (e *testEnv) prayer(t *testing.T, owner models.Actor, title string) *models.Prayer {
	t.Helper()
	p := models.NewPrayer()
	p.Title = title
	p.Content = "Please pray for " + title
	p.IsPrivate = false
	created, err := e.catalog.Prayers.Create(context.Background(), p, owner)
	require.NoError(t, err)
	return created
}

func (e *testEnv) verseArt(t *testing.T, owner models.Actor) *models.VerseArt {
	t.Helper()
	v := models.NewVerseArt()
	v.Verse = "The Lord is my shepherd; I shall not want."
	v.Reference = "Psalm 23:1"
	created, err := e.catalog.VerseArt.Create(context.Background(), v, owner)
	require.NoError(t, err)
	return created
}

func (e *testEnv) devotional(t *testing.T, owner models.Actor, status models.Status, date time.Time) *models.Devotional {
	t.Helper()
	d := models.NewDevotional()
	d.Title = "Morning light"
	d.Content = "Rest in the promise."
	d.Verse = "Lamentations 3:22-23"
	d.Date = date
	d.Status = status
	created, err := e.catalog.Devotionals.Create(context.Background(), d, owner)
	require.NoError(t, err)
	return created
}

func (e *testEnv) quest(t *testing.T, owner models.Actor) *models.Quest {
	t.Helper()
	q := models.NewQuest()
	q.Title = "Walk through Genesis"
	q.Book = "Genesis"
	q.Chapters = "1-11"
	q.Description = "Creation to Babel"
	q.Points = 50
	created, err := e.catalog.Quests.Create(context.Background(), q, owner)
	require.NoError(t, err)
	return created
}

func (e *testEnv) plan(t *testing.T, owner models.Actor) *models.ReadingPlan {
	t.Helper()
	p := models.NewReadingPlan()
	p.Title = "Psalms of comfort"
	p.Description = "Two weeks in the Psalms"
	p.Duration = "14 days"
	p.DurationDays = 14
	p.Topic = "Comfort"
	created, err := e.catalog.ReadingPlans.Create(context.Background(), p, owner)
	require.NoError(t, err)
	return created
}

func assertKind(t *testing.T, want apperr.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, apperr.KindOf(err), "error: %v", err)
}

var missingID = primitive.NewObjectID()
