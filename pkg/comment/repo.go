package comment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	. "sod/pkg/common"
	"sod/pkg/logger"
	"sod/pkg/mongodb"
	"sod/pkg/post"
)

type Repo struct {
	comments mongodb.IMongoCollection
}

func NewRepo(commentsCol *mongo.Collection) *Repo {
	return &Repo{
		comments: mongodb.NewCollection(commentsCol),
	}
}

// Ascending by creation time; comments without a resolvable time have
// the zero time and therefore sort first.
func (r *Repo) List(ctx context.Context, postId post.PostId) ([]*Comment, error) {
	cursor, err := r.comments.Find(ctx, bson.M{"postId": postId})
	if err != nil {
		return nil, fmt.Errorf("comment/repo: failed finding comments: %w", err)
	}
	defer cursor.Close(ctx)

	comments := []*Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("comment/repo: failed getting comments from cursor: %w", err)
	}
	sortComments(comments)
	return comments, nil
}

func sortComments(comments []*Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		if !comments[i].Created.Equal(comments[j].Created) {
			return comments[i].Created.Before(comments[j].Created)
		}
		return comments[i].Id < comments[j].Id
	})
}

func (r *Repo) Add(ctx context.Context, postId post.PostId, sessionId, text string) (*Comment, error) {
	cmt := &Comment{
		Id:        CommentId(RandStringRunes(12)),
		PostId:    postId,
		Text:      text,
		Source:    SourceUser,
		SessionId: sessionId,
		Created:   time.Now(),
	}

	_, err := r.comments.InsertOne(ctx, cmt)
	if err != nil {
		return nil, fmt.Errorf("comment/repo: failed inserting a comment: %w", err)
	}
	return cmt, nil
}

// Persist the generated lines with the MongoDB transaction so a reader
// observes either all of them or none.
func (r *Repo) AddGeneratedBatch(ctx context.Context, postId post.PostId, sessionId string, lines []string) ([]CommentId, error) {
	mongoSession, err := r.comments.Database().Client().StartSession()
	if err != nil {
		logger.Log(ctx).Errorf("comment/repo: start session failed: %v", err)
		return nil, err
	}
	defer mongoSession.EndSession(ctx)

	ids := make([]CommentId, 0, len(lines))

	callback := func(sessionContext mongo.SessionContext) (interface{}, error) {
		for _, line := range lines {
			cmt := &Comment{
				Id:        CommentId(RandStringRunes(12)),
				PostId:    postId,
				Text:      line,
				Source:    SourceGenerated,
				SessionId: sessionId,
				Created:   time.Now(),
			}
			if _, err := r.comments.InsertOne(sessionContext, cmt); err != nil {
				return nil, fmt.Errorf("comment/repo: failed inserting generated comment: %w", err)
			}
			ids = append(ids, cmt.Id)
		}
		return ids, nil
	}

	if _, err := mongoSession.WithTransaction(ctx, callback); err != nil {
		logger.Log(ctx).Errorf("comment/repo: failed writing generated batch: %v", err)
		return nil, err
	}

	return ids, nil
}

// Subscribe delivers one initial snapshot (so the caller never renders
// an empty flash) and a re-sorted list on every change. Tear down via
// the returned func before resubscribing.
func (r *Repo) Subscribe(ctx context.Context, postId post.PostId, onChange func([]*Comment)) (func(), error) {
	stream, err := r.comments.Watch(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"fullDocument.postId": postId}}},
	})
	if err != nil {
		return nil, fmt.Errorf("comment/repo: failed opening change stream: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer stream.Close(context.Background())

		if comments, err := r.List(subCtx, postId); err == nil {
			onChange(comments)
		}
		for stream.Next(subCtx) {
			comments, err := r.List(subCtx, postId)
			if err != nil {
				logger.Log(subCtx).Errorf("comment/repo: reload on change failed: %v", err)
				continue
			}
			onChange(comments)
		}
		if err := stream.Err(); err != nil && subCtx.Err() == nil {
			logger.Log(subCtx).Errorf("comment/repo: change stream closed: %v", err)
		}
	}()

	return cancel, nil
}
