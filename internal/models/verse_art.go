package models

import (
	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ArtTemplates  = []string{"minimal", "bold", "nature", "abstract", "vintage", "modern"}
	ArtAlignments = []string{"left", "center", "right"}
)

type Overlay struct {
	Enabled bool    `bson:"enabled" json:"enabled"`
	Color   string  `bson:"color,omitempty" json:"color,omitempty"`
	Opacity float64 `bson:"opacity" json:"opacity"`
}

type Effects struct {
	Shadow      bool   `bson:"shadow" json:"shadow"`
	Border      bool   `bson:"border" json:"border"`
	BorderColor string `bson:"borderColor,omitempty" json:"borderColor,omitempty"`
}

type Design struct {
	Template        string  `bson:"template" json:"template"`
	BackgroundColor string  `bson:"backgroundColor" json:"backgroundColor"`
	TextColor       string  `bson:"textColor" json:"textColor"`
	FontFamily      string  `bson:"fontFamily" json:"fontFamily"`
	FontSize        string  `bson:"fontSize" json:"fontSize"`
	Alignment       string  `bson:"alignment" json:"alignment"`
	BackgroundImage string  `bson:"backgroundImage,omitempty" json:"backgroundImage,omitempty"`
	Overlay         Overlay `bson:"overlay" json:"overlay"`
	Effects         Effects `bson:"effects" json:"effects"`
}

func DefaultDesign() Design {
	return Design{
		Template:        "minimal",
		BackgroundColor: "#161d49",
		TextColor:       "#ffffff",
		FontFamily:      "Inter",
		FontSize:        "medium",
		Alignment:       "center",
		Overlay:         Overlay{Opacity: 0.5},
	}
}

type VerseArt struct {
	Base      `bson:",inline"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Verse     string             `bson:"verse" json:"verse"`
	Reference string             `bson:"reference" json:"reference"`
	Design    Design             `bson:"design" json:"design"`
	ImageURL  string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	IsPublic  bool               `bson:"isPublic" json:"isPublic"`
	Likes     LikeSet            `bson:"likes" json:"likes"`
	Shares    int64              `bson:"shares" json:"shares"`
	Downloads int64              `bson:"downloads" json:"downloads"`
	Comments  Comments           `bson:"comments" json:"comments"`
	Tags      []string           `bson:"tags" json:"tags"`
	Status    Status             `bson:"status" json:"status"`
}

func NewVerseArt() *VerseArt {
	return &VerseArt{Design: DefaultDesign(), IsPublic: true}
}

func (v *VerseArt) Kind() Kind                           { return KindVerseArt }
func (v *VerseArt) Owner() primitive.ObjectID            { return v.User }
func (v *VerseArt) SetOwner(id primitive.ObjectID)       { v.User = id }
func (v *VerseArt) CurrentStatus() Status                { return v.Status }
func (v *VerseArt) SetStatus(s Status)                   { v.Status = s }
func (v *VerseArt) ToggleLike(u primitive.ObjectID) bool { return v.Likes.Toggle(u) }
func (v *VerseArt) LikeCount() int                       { return len(v.Likes) }
func (v *VerseArt) Thread() *Comments                    { return &v.Comments }
func (v *VerseArt) DisplayTitle() string                 { return v.Reference }
func (v *VerseArt) Flag()                                { v.Status = StatusFlagged }
func (v *VerseArt) Unflag()                              { v.Status = StatusActive }

func (v *VerseArt) Increment(c Counter) (int64, bool) {
	switch c {
	case CounterShares:
		v.Shares++
		return v.Shares, true
	case CounterDownloads:
		v.Downloads++
		return v.Downloads, true
	}
	return 0, false
}

func (v *VerseArt) Normalize() {
	def := DefaultDesign()
	if v.Design.Template == "" {
		v.Design.Template = def.Template
	}
	if v.Design.Alignment == "" {
		v.Design.Alignment = def.Alignment
	}
}

func (v *VerseArt) Validate() error {
	var opacity error
	if o := v.Design.Overlay.Opacity; o < 0 || o > 1 {
		opacity = apperr.Validation("design.overlay.opacity", "Overlay opacity must be between 0 and 1")
	}
	return firstErr(
		required("verse", v.Verse, "Verse text is required"),
		required("reference", v.Reference, "Verse reference is required"),
		oneOf("design.template", v.Design.Template, ArtTemplates, "Invalid design template"),
		oneOf("design.alignment", v.Design.Alignment, ArtAlignments, "Invalid text alignment"),
		opacity,
	)
}

func (v *VerseArt) Preserve(prev *VerseArt) {
	v.Base = prev.Base
	v.User = prev.User
	v.Status = prev.Status
	v.ImageURL = prev.ImageURL
	v.Likes = prev.Likes
	v.Shares = prev.Shares
	v.Downloads = prev.Downloads
	v.Comments = prev.Comments
}
