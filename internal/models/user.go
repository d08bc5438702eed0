package models

import (
	"net/mail"
	"strings"
	"time"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

var Roles = []Role{RoleUser, RoleModerator, RoleAdmin}

var (
	Themes    = []string{"light", "dark", "pastel"}
	FontSizes = []string{"small", "medium", "large"}
	Moods     = []string{"joyful", "peaceful", "grateful", "hopeful", "struggling", "anxious"}
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   primitive.ObjectID
	Role Role
}

// Elevated reports whether the actor may bypass ownership checks.
func (a Actor) Elevated() bool {
	return a.Role == RoleModerator || a.Role == RoleAdmin
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanModify reports whether the actor may change an entity owned by owner.
func (a Actor) CanModify(owner primitive.ObjectID) bool {
	return a.ID == owner || a.Elevated()
}

type Notifications struct {
	DailyVerse    bool `bson:"dailyVerse" json:"dailyVerse"`
	Devotionals   bool `bson:"devotionals" json:"devotionals"`
	PrayerUpdates bool `bson:"prayerUpdates" json:"prayerUpdates"`
}

type Preferences struct {
	Theme         string        `bson:"theme" json:"theme"`
	FontSize      string        `bson:"fontSize" json:"fontSize"`
	Translation   string        `bson:"translation" json:"translation"`
	Notifications Notifications `bson:"notifications" json:"notifications"`
}

type Stats struct {
	Streak             int `bson:"streak" json:"streak"`
	TotalPoints        int `bson:"totalPoints" json:"totalPoints"`
	ChaptersRead       int `bson:"chaptersRead" json:"chaptersRead"`
	DevotionsCompleted int `bson:"devotionsCompleted" json:"devotionsCompleted"`
	QuestsCompleted    int `bson:"questsCompleted" json:"questsCompleted"`
}

type Bookmark struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Verse     string             `bson:"verse" json:"verse"`
	Reference string             `bson:"reference" json:"reference"`
	Note      string             `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Highlight struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Verse     string             `bson:"verse" json:"verse"`
	Reference string             `bson:"reference" json:"reference"`
	Color     string             `bson:"color,omitempty" json:"color,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Restrictions struct {
	Comments       bool `bson:"comments" json:"comments"`
	SocialFeatures bool `bson:"socialFeatures" json:"socialFeatures"`
}

type ParentalControls struct {
	Enabled      bool         `bson:"enabled" json:"enabled"`
	ParentEmail  string       `bson:"parentEmail,omitempty" json:"parentEmail,omitempty"`
	Restrictions Restrictions `bson:"restrictions" json:"restrictions"`
}

type MoodEntry struct {
	Mood string    `bson:"mood" json:"mood"`
	Date time.Time `bson:"date" json:"date"`
}

type User struct {
	Base             `bson:",inline"`
	Name             string           `bson:"name" json:"name"`
	Email            string           `bson:"email" json:"email"`
	Password         string           `bson:"password" json:"-"`
	Role             Role             `bson:"role" json:"role"`
	Age              *int             `bson:"age,omitempty" json:"age,omitempty"`
	Avatar           *string          `bson:"avatar" json:"avatar"`
	Preferences      Preferences      `bson:"preferences" json:"preferences"`
	Stats            Stats            `bson:"stats" json:"stats"`
	Bookmarks        []Bookmark       `bson:"bookmarks" json:"bookmarks"`
	Highlights       []Highlight      `bson:"highlights" json:"highlights"`
	ParentalControls ParentalControls `bson:"parentalControls" json:"parentalControls"`
	MoodTracking     []MoodEntry      `bson:"moodTracking" json:"moodTracking"`
	IsActive         bool             `bson:"isActive" json:"isActive"`
	LastActive       time.Time        `bson:"lastActive" json:"lastActive"`
}

// NewUser returns an active user with default preferences.
func NewUser(name, email string) *User {
	return &User{
		Name:  strings.TrimSpace(name),
		Email: NormalizeEmail(email),
		Role:  RoleUser,
		Preferences: Preferences{
			Theme:         "light",
			FontSize:      "medium",
			Translation:   "NIV",
			Notifications: Notifications{DailyVerse: true, Devotionals: true, PrayerUpdates: true},
		},
		Bookmarks:    []Bookmark{},
		Highlights:   []Highlight{},
		MoodTracking: []MoodEntry{},
		IsActive:     true,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// Author is the public face of a user shown next to their content.
type Author struct {
	ID     primitive.ObjectID `json:"id"`
	Name   string             `json:"name"`
	Avatar *string            `json:"avatar"`
}

func (u *User) Author() Author {
	return Author{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}

func (u *User) Validate() error {
	var email, age error
	if _, err := mail.ParseAddress(u.Email); err != nil || !strings.Contains(u.Email, ".") {
		email = apperr.Validation("email", "Please provide a valid email")
	}
	if u.Age != nil && (*u.Age < 1 || *u.Age > 150) {
		age = apperr.Validation("age", "Age must be between 1 and 150")
	}
	return firstErr(
		required("name", u.Name, "Name is required"),
		maxLength("name", u.Name, MaxNameLength, "Name cannot exceed 50 characters"),
		required("email", u.Email, "Email is required"),
		email,
		age,
		oneOf("role", u.Role, Roles, "Invalid role"),
		oneOf("preferences.theme", u.Preferences.Theme, Themes, "Invalid theme"),
		oneOf("preferences.fontSize", u.Preferences.FontSize, FontSizes, "Invalid font size"),
	)
}

// LogMood records mood for the day of now, replacing an entry already
// logged that day.
func (u *User) LogMood(mood string, now time.Time) MoodEntry {
	entry := MoodEntry{Mood: mood, Date: now}
	today := Day(now)
	for i := range u.MoodTracking {
		if Day(u.MoodTracking[i].Date).Equal(today) {
			u.MoodTracking[i] = entry
			return entry
		}
	}
	u.MoodTracking = append(u.MoodTracking, entry)
	return entry
}

// MoodOn returns the entry logged on the day of t, if any.
func (u *User) MoodOn(t time.Time) *MoodEntry {
	day := Day(t)
	for i := range u.MoodTracking {
		if Day(u.MoodTracking[i].Date).Equal(day) {
			return &u.MoodTracking[i]
		}
	}
	return nil
}
