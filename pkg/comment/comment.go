package comment

import (
	"time"

	"sod/pkg/post"
)

type CommentId string

// Where a comment came from. Generated comments differ from human ones
// only by this tag.
type Source string

const (
	SourceUser      Source = "user"
	SourceGenerated Source = "gemini"
)

type Comment struct {
	Id        CommentId   `bson:"_id" json:"id"`
	PostId    post.PostId `bson:"postId" json:"postId"`
	Text      string      `bson:"text" json:"text"`
	Source    Source      `bson:"source" json:"source"`
	SessionId string      `bson:"sessionId" json:"sessionId"`
	Created   time.Time   `bson:"created" json:"created"`
}
