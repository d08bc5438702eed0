package services

import (
	"context"
	"time"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/store"
	"go.uber.org/zap"
)

const verseOfDayCache = "verse_of_day"

// Daily answers the "what is on today" questions for devotionals and the
// verse of the day.
type Daily struct {
	devotionals *EntityService[models.Devotional, *models.Devotional]
	verses      *EntityService[models.VerseOfDay, *models.VerseOfDay]
	cache       *Cache
	log         *zap.Logger
	now         func() time.Time
}

// NewDaily also hooks verse writes so the cached verse is dropped whenever
// a verse for that day changes.
func NewDaily(c *Catalog, cache *Cache, log *zap.Logger) *Daily {
	d := &Daily{
		devotionals: c.Devotionals,
		verses:      c.VersesOfDay,
		cache:       cache,
		log:         log.Named("daily"),
		now:         now,
	}
	c.VersesOfDay.OnChange(d.invalidate)
	return d
}

func dayKey(t time.Time) string {
	return CacheKey(verseOfDayCache, models.Day(t).Format(time.DateOnly))
}

func (d *Daily) invalidate(ctx context.Context, v *models.VerseOfDay) {
	if err := d.cache.Delete(ctx, dayKey(v.Date)); err != nil {
		d.log.Warn("invalidate verse cache", zap.Error(err))
	}
}

// VerseToday returns the published verse dated today (UTC).
func (d *Daily) VerseToday(ctx context.Context) (*models.VerseOfDay, error) {
	today := models.Day(d.now())
	key := dayKey(today)

	var cached models.VerseOfDay
	if hit, err := d.cache.Get(ctx, key, &cached); err != nil {
		d.log.Warn("read verse cache", zap.Error(err))
	} else if hit {
		return &cached, nil
	}

	found, err := d.verses.Find(ctx, store.Filter{"date": today, "status": models.StatusPublished}, nil, 1)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, apperr.NotFound("Verse for today")
	}
	v := &found[0]

	if err := d.cache.Set(ctx, key, v, today.Add(24*time.Hour).Sub(d.now())); err != nil {
		d.log.Warn("write verse cache", zap.Error(err))
	}
	return v, nil
}

// DevotionalToday picks the latest published devotional dated between
// yesterday and the end of today, which tolerates clients a timezone away.
func (d *Daily) DevotionalToday(ctx context.Context) (*models.Devotional, error) {
	today := models.Day(d.now())
	found, err := d.devotionals.Find(ctx, store.Filter{
		"status": models.StatusPublished,
		"date": store.Filter{
			"$gte": today.AddDate(0, 0, -1),
			"$lt":  today.AddDate(0, 0, 1),
		},
	}, []store.SortField{{Field: "date", Desc: true}}, 1)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, apperr.NotFound("Devotional for today")
	}
	return &found[0], nil
}
