package services

import (
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/store"
	"go.uber.org/zap"
)

// Repositories bundles the per-kind stores a driver provides.
type Repositories struct {
	Users        store.Repository[models.User]
	Devotionals  store.Repository[models.Devotional]
	Prayers      store.Repository[models.Prayer]
	Quests       store.Repository[models.Quest]
	ReadingPlans store.Repository[models.ReadingPlan]
	VerseArt     store.Repository[models.VerseArt]
	VersesOfDay  store.Repository[models.VerseOfDay]
	Tx           store.Transactor
}

// Catalog holds one content service per kind.
type Catalog struct {
	Devotionals  *EntityService[models.Devotional, *models.Devotional]
	Prayers      *EntityService[models.Prayer, *models.Prayer]
	Quests       *EntityService[models.Quest, *models.Quest]
	ReadingPlans *EntityService[models.ReadingPlan, *models.ReadingPlan]
	VerseArt     *EntityService[models.VerseArt, *models.VerseArt]
	VersesOfDay  *EntityService[models.VerseOfDay, *models.VerseOfDay]
}

func NewCatalog(r Repositories, log *zap.Logger) *Catalog {
	return &Catalog{
		Devotionals:  NewEntityService[models.Devotional](r.Devotionals, log),
		Prayers:      NewEntityService[models.Prayer](r.Prayers, log),
		Quests:       NewEntityService[models.Quest](r.Quests, log),
		ReadingPlans: NewEntityService[models.ReadingPlan](r.ReadingPlans, log),
		VerseArt:     NewEntityService[models.VerseArt](r.VerseArt, log),
		VersesOfDay:  NewEntityService[models.VerseOfDay](r.VersesOfDay, log),
	}
}
