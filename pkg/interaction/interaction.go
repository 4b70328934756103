package interaction

import (
	"time"

	"sod/pkg/post"
)

// One session's like/repost state for one post. Keyed (session, post),
// merge-updated, never deleted. Rev is the monotonic intent token of
// the last accepted write: a write with a smaller or equal rev lost a
// race against a newer toggle and is rejected.
type Interaction struct {
	Id        string      `bson:"_id" json:"-"`
	SessionId string      `bson:"sessionId" json:"sessionId"`
	PostId    post.PostId `bson:"postId" json:"postId"`
	Liked     bool        `bson:"liked" json:"liked"`
	Reposted  bool        `bson:"reposted" json:"reposted"`
	Rev       int64       `bson:"rev" json:"rev"`
	UpdatedAt time.Time   `bson:"updatedAt" json:"updatedAt"`
}

func Key(sessionId string, postId post.PostId) string {
	return sessionId + "_" + string(postId)
}

type State struct {
	Liked    bool `json:"liked"`
	Reposted bool `json:"reposted"`
}

// Partial update; nil fields are preserved on the stored record.
type Patch struct {
	Liked    *bool `json:"liked,omitempty"`
	Reposted *bool `json:"reposted,omitempty"`
}

type Counts struct {
	LikeCount   int `json:"likeCount"`
	RepostCount int `json:"repostCount"`
}
