package models

// Kind names a stored entity type.
type Kind string

const (
	KindDevotional  Kind = "devotional"
	KindPrayer      Kind = "prayer"
	KindQuest       Kind = "quest"
	KindReadingPlan Kind = "readingPlan"
	KindVerseArt    Kind = "verseArt"
	KindVerseOfDay  Kind = "verseOfDay"
	KindUser        Kind = "user"
)

var kindInfo = map[Kind]struct {
	label      string
	collection string
}{
	KindDevotional:  {"Devotional", "devotionals"},
	KindPrayer:      {"Prayer", "prayers"},
	KindQuest:       {"Quest", "quests"},
	KindReadingPlan: {"Reading plan", "reading_plans"},
	KindVerseArt:    {"Verse art", "verse_art"},
	KindVerseOfDay:  {"Verse of the day", "verses_of_day"},
	KindUser:        {"User", "users"},
}

// ParseKind accepts the wire names used in moderation requests.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	_, ok := kindInfo[k]
	return k, ok
}

// Label is the human readable name used in messages, e.g. "Prayer not found".
func (k Kind) Label() string {
	return kindInfo[k].label
}

func (k Kind) Collection() string {
	return kindInfo[k].collection
}

// Status is the lifecycle state of a content entity.
type Status string

const (
	StatusActive    Status = "active"
	StatusArchived  Status = "archived"
	StatusFlagged   Status = "flagged"
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusInactive  Status = "inactive"
	StatusScheduled Status = "scheduled"
)

var lifecycle = map[Kind]struct {
	all       []Status
	creatable []Status
	initial   Status
}{
	KindDevotional:  {[]Status{StatusPublished, StatusDraft, StatusArchived}, []Status{StatusDraft, StatusPublished}, StatusDraft},
	KindPrayer:      {[]Status{StatusActive, StatusArchived, StatusFlagged}, []Status{StatusActive}, StatusActive},
	KindVerseArt:    {[]Status{StatusActive, StatusArchived, StatusFlagged}, []Status{StatusActive}, StatusActive},
	KindQuest:       {[]Status{StatusActive, StatusInactive, StatusArchived}, []Status{StatusActive, StatusInactive}, StatusActive},
	KindReadingPlan: {[]Status{StatusActive, StatusInactive, StatusArchived}, []Status{StatusActive, StatusInactive}, StatusActive},
	KindVerseOfDay:  {[]Status{StatusScheduled, StatusPublished, StatusArchived}, []Status{StatusScheduled, StatusPublished}, StatusScheduled},
}

// Statuses lists every status the kind may hold.
func (k Kind) Statuses() []Status {
	return lifecycle[k].all
}

func (k Kind) InitialStatus() Status {
	return lifecycle[k].initial
}

// Allows reports whether s belongs to the kind's status enum.
func (k Kind) Allows(s Status) bool {
	for _, v := range lifecycle[k].all {
		if v == s {
			return true
		}
	}
	return false
}

// Creatable reports whether a new entity may start in s.
func (k Kind) Creatable(s Status) bool {
	for _, v := range lifecycle[k].creatable {
		if v == s {
			return true
		}
	}
	return false
}
