package post

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"sod/pkg/mongodb"
)

type Repo struct {
	posts mongodb.IMongoCollection
}

func NewRepo(postsCol *mongo.Collection) *Repo {
	return &Repo{
		posts: mongodb.NewCollection(postsCol),
	}
}

func (r *Repo) Add(ctx context.Context, p *Post) (PostId, error) {
	_, err := r.posts.InsertOne(ctx, p)
	if err != nil {
		return PostId(``), fmt.Errorf("post/repo: failed inserting a post: %w", err)
	}
	return p.Id, nil
}

func (r *Repo) Delete(ctx context.Context, id PostId) error {
	_, err := r.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("post/repo: failed deleting post: %w", err)
	}
	return nil
}

func (r *Repo) GetById(ctx context.Context, id PostId) (*Post, error) {
	post := new(Post)
	err := r.posts.FindOne(ctx, bson.M{"_id": id}).Decode(post)
	if err != nil {
		return nil, fmt.Errorf("post: post not found: %w", err)
	}
	return post, nil
}

func (r *Repo) GetAll(ctx context.Context) ([]*Post, error) {
	cursor, err := r.posts.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("post/repo: failed finding posts: %w", err)
	}
	defer cursor.Close(ctx)

	posts := []*Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("post/repo: failed getting posts from cursor: %w", err)
	}
	return posts, nil
}

// Reposts of the given origin authored by the given session. Used to
// keep the repost toggle idempotent.
func (r *Repo) GetReposts(ctx context.Context, author string, origin PostId) ([]*Post, error) {
	filter := bson.D{
		{Key: "kind", Value: KindRepost},
		{Key: "author", Value: author},
		{Key: "origin.postId", Value: origin},
	}
	cursor, err := r.posts.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("post/repo: failed finding reposts: %w", err)
	}
	defer cursor.Close(ctx)

	reposts := []*Post{}
	if err := cursor.All(ctx, &reposts); err != nil {
		return nil, fmt.Errorf("post/repo: failed getting reposts from cursor: %w", err)
	}
	return reposts, nil
}

// Removes every repost of the origin authored by the session in one
// bulk delete. Best-effort by contract: the caller treats a failure as
// non-fatal.
func (r *Repo) DeleteReposts(ctx context.Context, author string, origin PostId) error {
	filter := bson.D{
		{Key: "kind", Value: KindRepost},
		{Key: "author", Value: author},
		{Key: "origin.postId", Value: origin},
	}
	_, err := r.posts.DeleteMany(ctx, filter)
	if err != nil {
		return fmt.Errorf("post/repo: failed deleting reposts: %w", err)
	}
	return nil
}

// Change notifications for the posts collection. Callers must close
// the previous stream before opening a new one or deliveries double up.
func (r *Repo) Watch(ctx context.Context) (mongodb.IMongoChangeStream, error) {
	stream, err := r.posts.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, fmt.Errorf("post/repo: failed opening change stream: %w", err)
	}
	return stream, nil
}
