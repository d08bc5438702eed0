package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LikeSet holds the users who liked an entity. Membership is unique.
type LikeSet []primitive.ObjectID

func (l LikeSet) Has(user primitive.ObjectID) bool {
	for _, id := range l {
		if id == user {
			return true
		}
	}
	return false
}

// Toggle removes user if present and adds it otherwise. It reports whether
// user likes the entity afterwards.
func (l *LikeSet) Toggle(user primitive.ObjectID) bool {
	for i, id := range *l {
		if id == user {
			*l = append((*l)[:i], (*l)[i+1:]...)
			return false
		}
	}
	*l = append(*l, user)
	return true
}

type Comment struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	User        primitive.ObjectID `bson:"user" json:"user"`
	Text        string             `bson:"text" json:"text"`
	IsModerated bool               `bson:"isModerated" json:"isModerated"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Comments is an insertion ordered thread.
type Comments []Comment

func (c *Comments) Add(user primitive.ObjectID, text string, now time.Time) Comment {
	comment := Comment{ID: primitive.NewObjectID(), User: user, Text: text, CreatedAt: now}
	*c = append(*c, comment)
	return comment
}

func (c Comments) index(id primitive.ObjectID) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

// Approve marks the comment as moderated. The thread length is unchanged.
func (c Comments) Approve(id primitive.ObjectID) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c[i].IsModerated = true
	return true
}

// Remove deletes the comment and keeps the others in order.
func (c *Comments) Remove(id primitive.ObjectID) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	*c = append((*c)[:i], (*c)[i+1:]...)
	return true
}

func (c Comments) Pending() []Comment {
	var out []Comment
	for _, comment := range c {
		if !comment.IsModerated {
			out = append(out, comment)
		}
	}
	return out
}

type Reflection struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Text      string             `bson:"text" json:"text"`
	IsPrivate bool               `bson:"isPrivate" json:"isPrivate"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Reflections []Reflection

func (r *Reflections) Add(user primitive.ObjectID, text string, private bool, now time.Time) Reflection {
	reflection := Reflection{ID: primitive.NewObjectID(), User: user, Text: text, IsPrivate: private, CreatedAt: now}
	*r = append(*r, reflection)
	return reflection
}

func (r Reflections) Find(id primitive.ObjectID) *Reflection {
	for i := range r {
		if r[i].ID == id {
			return &r[i]
		}
	}
	return nil
}

// Counter names a monotonically increasing engagement field.
type Counter string

const (
	CounterReadCount Counter = "readCount"
	CounterShares    Counter = "shares"
	CounterDownloads Counter = "downloads"
)

type Likeable interface {
	ToggleLike(user primitive.ObjectID) bool
	LikeCount() int
}

type Commentable interface {
	Thread() *Comments
	DisplayTitle() string
}

type Flaggable interface {
	Flag()
	Unflag()
}

// Counted entities expose named counters. Increment reports false when the
// counter does not exist on the kind.
type Counted interface {
	Increment(c Counter) (int64, bool)
}

type Reflective interface {
	ReflectionLog() *Reflections
}
