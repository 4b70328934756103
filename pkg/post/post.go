package post

import (
	"time"

	"sod/pkg/session"
)

type PostId string

// Post kinds. A repost is its own entity embedding a snapshot of the
// origin; it never tracks later edits or deletes of the original.
type Kind string

const (
	KindOriginal Kind = "original"
	KindRepost   Kind = "repost"
)

type Stance string

const (
	StancePro     Stance = "pro"
	StanceAgainst Stance = "against"
	StanceMixed   Stance = "mixed"
)

func (s Stance) Valid() bool {
	return s == StancePro || s == StanceAgainst || s == StanceMixed
}

type MediaKind string

const (
	MediaImages  MediaKind = "images"
	MediaVideo   MediaKind = "video"
	MediaYoutube MediaKind = "youtube"
	MediaText    MediaKind = "text"
)

type MediaItem struct {
	URL  string    `bson:"url" json:"url"`
	Kind MediaKind `bson:"kind" json:"kind"`
}

// Point-in-time copy of an original post, captured at repost time.
type Snapshot struct {
	PostId PostId      `bson:"postId" json:"postId"`
	Author string      `bson:"author" json:"author"`
	Text   string      `bson:"text" json:"text"`
	Stance Stance      `bson:"stance" json:"stance"`
	Media  []MediaItem `bson:"media,omitempty" json:"media,omitempty"`
}

type Post struct {
	Id     PostId `bson:"_id" json:"id"`
	Kind   Kind   `bson:"kind" json:"kind"`
	Author string `bson:"author" json:"author"`
	Text   string `bson:"text" json:"text"`

	// A repost carries the origin's stance so variant filtering treats
	// it like the post it embeds.
	Stance Stance      `bson:"stance" json:"stance"`
	Media  []MediaItem `bson:"media,omitempty" json:"media,omitempty"`

	Created time.Time `bson:"created" json:"created"`

	// Set only for Kind == KindRepost.
	Origin *Snapshot `bson:"origin,omitempty" json:"origin,omitempty"`

	// Bundled posts are immutable and carry a synthetic creation time.
	Static bool `bson:"-" json:"static,omitempty"`
}

// Variant admission rule: pro sees pro+mixed, against sees
// against+mixed, mixed sees everything.
func (p *Post) VisibleTo(v session.Variant) bool {
	switch v {
	case session.VariantPro:
		return p.Stance == StancePro || p.Stance == StanceMixed
	case session.VariantAgainst:
		return p.Stance == StanceAgainst || p.Stance == StanceMixed
	case session.VariantMixed:
		return true
	}
	return false
}
