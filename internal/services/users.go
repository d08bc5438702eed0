package services

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ProfileUpdate struct {
	Name   *string `json:"name"`
	Age    *int    `json:"age"`
	Avatar *string `json:"avatar"`
}

type PreferencesUpdate struct {
	Theme         *string               `json:"theme"`
	FontSize      *string               `json:"fontSize"`
	Translation   *string               `json:"translation"`
	Notifications *models.Notifications `json:"notifications"`
}

type VerseRef struct {
	Verse     string `json:"verse"`
	Reference string `json:"reference"`
	Note      string `json:"note"`
	Color     string `json:"color"`
}

func (v VerseRef) validate() error {
	if strings.TrimSpace(v.Verse) == "" {
		return apperr.Validation("verse", "Verse is required")
	}
	if strings.TrimSpace(v.Reference) == "" {
		return apperr.Validation("reference", "Reference is required")
	}
	return nil
}

type UserFilter struct {
	Role     models.Role
	IsActive *bool
}

// Users manages accounts: the caller's own profile data and the admin
// directory.
type Users struct {
	repo     store.Repository[models.User]
	sessions SessionStore
	log      *zap.Logger
}

func NewUsers(repo store.Repository[models.User], sessions SessionStore, log *zap.Logger) *Users {
	return &Users{repo: repo, sessions: sessions, log: log.Named("users")}
}

func (s *Users) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "User")
	}
	return u, nil
}

// Authors returns name and avatar for each id, keyed by hex id. Unknown ids
// are skipped.
func (s *Users) Authors(ctx context.Context, ids []primitive.ObjectID) (map[string]models.Author, error) {
	out := make(map[string]models.Author, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := s.repo.GetMany(ctx, ids)
	if err != nil {
		return nil, storeErr(err, "User")
	}
	for i := range users {
		out[users[i].ID.Hex()] = users[i].Author()
	}
	return out, nil
}

// mutate applies fn and re-validates the account before it is written.
func (s *Users) mutate(ctx context.Context, id primitive.ObjectID, fn func(u *models.User) error) (*models.User, error) {
	u, err := s.repo.Mutate(ctx, id, func(u *models.User) error {
		if err := fn(u); err != nil {
			return err
		}
		return u.Validate()
	})
	if err != nil {
		return nil, storeErr(err, "User")
	}
	return u, nil
}

func (s *Users) UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileUpdate) (*models.User, error) {
	return s.mutate(ctx, id, func(u *models.User) error {
		if in.Name != nil {
			u.Name = strings.TrimSpace(*in.Name)
		}
		if in.Age != nil {
			u.Age = in.Age
		}
		if in.Avatar != nil {
			u.Avatar = in.Avatar
		}
		return nil
	})
}

func (s *Users) UpdatePreferences(ctx context.Context, id primitive.ObjectID, in PreferencesUpdate) (models.Preferences, error) {
	u, err := s.mutate(ctx, id, func(u *models.User) error {
		p := &u.Preferences
		if in.Theme != nil {
			p.Theme = *in.Theme
		}
		if in.FontSize != nil {
			p.FontSize = *in.FontSize
		}
		if in.Translation != nil {
			p.Translation = *in.Translation
		}
		if in.Notifications != nil {
			p.Notifications = *in.Notifications
		}
		return nil
	})
	if err != nil {
		return models.Preferences{}, err
	}
	return u.Preferences, nil
}

func (s *Users) UpdateParentalControls(ctx context.Context, id primitive.ObjectID, pc models.ParentalControls) (models.ParentalControls, error) {
	pc.ParentEmail = models.NormalizeEmail(pc.ParentEmail)
	u, err := s.mutate(ctx, id, func(u *models.User) error {
		u.ParentalControls = pc
		return nil
	})
	if err != nil {
		return models.ParentalControls{}, err
	}
	return u.ParentalControls, nil
}

func (s *Users) AddBookmark(ctx context.Context, id primitive.ObjectID, in VerseRef) ([]models.Bookmark, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	u, err := s.mutate(ctx, id, func(u *models.User) error {
		u.Bookmarks = append(u.Bookmarks, models.Bookmark{
			ID:        primitive.NewObjectID(),
			Verse:     strings.TrimSpace(in.Verse),
			Reference: strings.TrimSpace(in.Reference),
			Note:      in.Note,
			CreatedAt: now(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u.Bookmarks, nil
}

// RemoveBookmark is a no-op for unknown bookmark ids.
func (s *Users) RemoveBookmark(ctx context.Context, id, bookmarkID primitive.ObjectID) ([]models.Bookmark, error) {
	u, err := s.mutate(ctx, id, func(u *models.User) error {
		u.Bookmarks = slices.DeleteFunc(u.Bookmarks, func(b models.Bookmark) bool { return b.ID == bookmarkID })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u.Bookmarks, nil
}

func (s *Users) AddHighlight(ctx context.Context, id primitive.ObjectID, in VerseRef) ([]models.Highlight, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	color := in.Color
	if color == "" {
		color = "yellow"
	}
	u, err := s.mutate(ctx, id, func(u *models.User) error {
		u.Highlights = append(u.Highlights, models.Highlight{
			ID:        primitive.NewObjectID(),
			Verse:     strings.TrimSpace(in.Verse),
			Reference: strings.TrimSpace(in.Reference),
			Color:     color,
			CreatedAt: now(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u.Highlights, nil
}

func (s *Users) RemoveHighlight(ctx context.Context, id, highlightID primitive.ObjectID) ([]models.Highlight, error) {
	u, err := s.mutate(ctx, id, func(u *models.User) error {
		u.Highlights = slices.DeleteFunc(u.Highlights, func(h models.Highlight) bool { return h.ID == highlightID })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u.Highlights, nil
}

func (s *Users) SetStreak(ctx context.Context, id primitive.ObjectID, streak int) (models.Stats, error) {
	if streak < 0 {
		return models.Stats{}, apperr.Validation("streak", "Streak cannot be negative")
	}
	u, err := s.mutate(ctx, id, func(u *models.User) error {
		u.Stats.Streak = streak
		return nil
	})
	if err != nil {
		return models.Stats{}, err
	}
	return u.Stats, nil
}

func (s *Users) AddPoints(ctx context.Context, id primitive.ObjectID, points int) (models.Stats, error) {
	if points <= 0 {
		return models.Stats{}, apperr.Validation("points", "Points must be positive")
	}
	u, err := s.mutate(ctx, id, func(u *models.User) error {
		u.Stats.TotalPoints += points
		return nil
	})
	if err != nil {
		return models.Stats{}, err
	}
	return u.Stats, nil
}

// LogMood records today's mood, replacing an earlier entry from the same day.
func (s *Users) LogMood(ctx context.Context, id primitive.ObjectID, mood string) (models.MoodEntry, error) {
	mood = strings.ToLower(strings.TrimSpace(mood))
	if mood == "" {
		return models.MoodEntry{}, apperr.Validation("mood", "Mood is required")
	}
	if !slices.Contains(models.Moods, mood) {
		return models.MoodEntry{}, apperr.Validation("mood", "Invalid mood value")
	}
	var entry models.MoodEntry
	_, err := s.mutate(ctx, id, func(u *models.User) error {
		entry = u.LogMood(mood, now())
		return nil
	})
	return entry, err
}

// TodayMood returns nil when nothing was logged today.
func (s *Users) TodayMood(ctx context.Context, id primitive.ObjectID) (*models.MoodEntry, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.MoodOn(now()), nil
}

// MoodHistory lists entries from the last days days, newest first.
func (s *Users) MoodHistory(ctx context.Context, id primitive.ObjectID, days int) ([]models.MoodEntry, error) {
	if days < 1 {
		days = 30
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cutoff := now().AddDate(0, 0, -days)
	out := []models.MoodEntry{}
	for _, e := range u.MoodTracking {
		if !e.Date.Before(cutoff) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// Touch records activity without failing the caller's request.
func (s *Users) Touch(ctx context.Context, id primitive.ObjectID) {
	_, err := s.repo.Mutate(ctx, id, func(u *models.User) error {
		if now().Sub(u.LastActive) < time.Minute {
			return errSkip
		}
		u.LastActive = now()
		return nil
	})
	if err != nil && !errors.Is(err, errSkip) {
		s.log.Debug("touch last active", zap.String("user", id.Hex()), zap.Error(err))
	}
}

var errSkip = errors.New("skip write")

func (s *Users) List(ctx context.Context, f UserFilter, page PageRequest) (Page[models.User], error) {
	filter := store.Filter{}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.IsActive != nil {
		filter["isActive"] = *f.IsActive
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return Page[models.User]{}, storeErr(err, "User")
	}
	items, err := s.repo.List(ctx, filter, store.ListOptions{
		Sort:  []store.SortField{{Field: "createdAt", Desc: true}},
		Skip:  page.skip(),
		Limit: page.Size,
	})
	if err != nil {
		return Page[models.User]{}, storeErr(err, "User")
	}
	return Page[models.User]{
		Items:       items,
		Total:       total,
		TotalPages:  TotalPages(total, page.Size),
		CurrentPage: page.Page,
	}, nil
}

// SetActive toggles the account. Deactivation also ends the session.
func (s *Users) SetActive(ctx context.Context, id primitive.ObjectID, active bool) (*models.User, error) {
	u, err := s.mutate(ctx, id, func(u *models.User) error {
		u.IsActive = active
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !active {
		s.revoke(ctx, id)
	}
	return u, nil
}

func (s *Users) SetRole(ctx context.Context, id primitive.ObjectID, role models.Role) (*models.User, error) {
	if !slices.Contains(models.Roles, role) {
		return nil, apperr.Validation("role", "Invalid role")
	}
	return s.mutate(ctx, id, func(u *models.User) error {
		u.Role = role
		return nil
	})
}

func (s *Users) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeErr(err, "User")
	}
	s.revoke(ctx, id)
	s.log.Info("user deleted", zap.String("user", id.Hex()))
	return nil
}

func (s *Users) revoke(ctx context.Context, id primitive.ObjectID) {
	if err := s.sessions.RevokeUser(ctx, id); err != nil {
		s.log.Error("revoke sessions", zap.String("user", id.Hex()), zap.Error(err))
	}
}
