package interaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	. "sod/pkg/common"
	"sod/pkg/logger"
	"sod/pkg/mongodb"
	"sod/pkg/post"
)

var ErrStaleWrite = errors.New("interaction: stale write, a newer toggle already landed")

type (
	IRepostRepo interface {
		GetById(context.Context, post.PostId) (*post.Post, error)
		GetReposts(context.Context, string, post.PostId) ([]*post.Post, error)
		Add(context.Context, *post.Post) (post.PostId, error)
		DeleteReposts(context.Context, string, post.PostId) error
	}

	IStaticSource interface {
		Load() ([]*post.Post, error)
	}

	Store struct {
		interactions mongodb.IMongoCollection
		posts        IRepostRepo
		static       IStaticSource
	}
)

func NewStore(interactionsCol *mongo.Collection, posts IRepostRepo, static IStaticSource) *Store {
	return &Store{
		interactions: mongodb.NewCollection(interactionsCol),
		posts:        posts,
		static:       static,
	}
}

func (s *Store) Get(ctx context.Context, sessionId string) (map[post.PostId]State, error) {
	cursor, err := s.interactions.Find(ctx, bson.M{"sessionId": sessionId})
	if err != nil {
		return nil, fmt.Errorf("interaction/store: failed finding interactions: %w", err)
	}
	defer cursor.Close(ctx)

	records := []*Interaction{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("interaction/store: failed getting interactions from cursor: %w", err)
	}

	states := map[post.PostId]State{}
	for _, rec := range records {
		states[rec.PostId] = State{Liked: rec.Liked, Reposted: rec.Reposted}
	}
	return states, nil
}

// Set merge-writes the patch under the (session, post) key. The write
// only lands if rev is greater than the stored one; otherwise the
// stored state is newer and ErrStaleWrite comes back. Repost toggles
// carry their side effect: on creates the repost entity, off removes
// every repost of the origin by this session (best-effort).
func (s *Store) Set(ctx context.Context, sessionId string, postId post.PostId, patch Patch, rev int64) error {
	fields := bson.M{
		"sessionId": sessionId,
		"postId":    postId,
		"rev":       rev,
		"updatedAt": time.Now(),
	}
	if patch.Liked != nil {
		fields["liked"] = *patch.Liked
	}
	if patch.Reposted != nil {
		fields["reposted"] = *patch.Reposted
	}

	// Filtered upsert: a record with rev >= the incoming one doesn't
	// match, so the upsert tries to insert a duplicate key and fails.
	// That duplicate-key failure is exactly the stale-write signal.
	filter := bson.M{"_id": Key(sessionId, postId), "rev": bson.M{"$lt": rev}}
	_, err := s.interactions.UpdateOne(ctx, filter, bson.M{"$set": fields},
		options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrStaleWrite
		}
		return fmt.Errorf("interaction/store: failed writing interaction: %w", err)
	}

	if patch.Reposted != nil {
		if *patch.Reposted {
			if err := s.createRepost(ctx, sessionId, postId); err != nil {
				return err
			}
		} else {
			// Best-effort bulk delete, never fails the toggle.
			if err := s.posts.DeleteReposts(ctx, sessionId, postId); err != nil {
				logger.Log(ctx).Errorf("interaction/store: best-effort repost cleanup failed: %v", err)
			}
		}
	}

	return nil
}

// Idempotent: toggling "on" when a live repost already exists for this
// (session, origin) pair must not create a second one.
func (s *Store) createRepost(ctx context.Context, sessionId string, originId post.PostId) error {
	existing, err := s.posts.GetReposts(ctx, sessionId, originId)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	origin, err := s.resolveOrigin(ctx, originId)
	if err != nil {
		return fmt.Errorf("interaction/store: repost origin not found: %w", err)
	}

	repost := &post.Post{
		Id:      post.PostId(RandStringRunes(12)),
		Kind:    post.KindRepost,
		Author:  sessionId,
		Text:    origin.Text,
		Stance:  origin.Stance,
		Created: time.Now(),
		Origin: &post.Snapshot{
			PostId: origin.Id,
			Author: origin.Author,
			Text:   origin.Text,
			Stance: origin.Stance,
			Media:  origin.Media,
		},
	}
	_, err = s.posts.Add(ctx, repost)
	return err
}

// The origin may live in the backend collection or in the bundled
// static set.
func (s *Store) resolveOrigin(ctx context.Context, id post.PostId) (*post.Post, error) {
	origin, err := s.posts.GetById(ctx, id)
	if err == nil {
		return origin, nil
	}

	bundled, staticErr := s.static.Load()
	if staticErr != nil {
		return nil, err
	}
	for _, p := range bundled {
		if p.Id == id {
			return p, nil
		}
	}
	return nil, err
}

// Like/repost totals for a post across all sessions. A raw scan of the
// interaction records, fine at experiment scale only.
func (s *Store) Counts(ctx context.Context, postId post.PostId) (*Counts, error) {
	cursor, err := s.interactions.Find(ctx, bson.M{"postId": postId})
	if err != nil {
		return nil, fmt.Errorf("interaction/store: failed finding interactions: %w", err)
	}
	defer cursor.Close(ctx)

	records := []*Interaction{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("interaction/store: failed getting interactions from cursor: %w", err)
	}

	counts := new(Counts)
	for _, rec := range records {
		if rec.Liked {
			counts.LikeCount++
		}
		if rec.Reposted {
			counts.RepostCount++
		}
	}
	return counts, nil
}
