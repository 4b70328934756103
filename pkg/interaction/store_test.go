package interaction

import (
	"context"
	"fmt"
	"testing"

	gomock "github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"sod/pkg/mongodb"
	"sod/pkg/post"
)

type fakeRepostRepo struct {
	byId     map[post.PostId]*post.Post
	reposts  []*post.Post
	added    []*post.Post
	deleted  int
	addErr   error
	delErr   error
	listsErr error
}

func (f *fakeRepostRepo) GetById(_ context.Context, id post.PostId) (*post.Post, error) {
	if p, ok := f.byId[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("post: post not found")
}

func (f *fakeRepostRepo) GetReposts(context.Context, string, post.PostId) ([]*post.Post, error) {
	if f.listsErr != nil {
		return nil, f.listsErr
	}
	return f.reposts, nil
}

func (f *fakeRepostRepo) Add(_ context.Context, p *post.Post) (post.PostId, error) {
	if f.addErr != nil {
		return post.PostId(``), f.addErr
	}
	f.added = append(f.added, p)
	f.reposts = append(f.reposts, p)
	return p.Id, nil
}

func (f *fakeRepostRepo) DeleteReposts(context.Context, string, post.PostId) error {
	f.deleted++
	return f.delErr
}

type fakeStatic struct {
	posts []*post.Post
	err   error
}

func (f *fakeStatic) Load() ([]*post.Post, error) {
	return f.posts, f.err
}

func boolPtr(v bool) *bool {
	return &v
}

func duplicateKeyErr() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000}},
	}
}

func TestStoreGet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()

	mockMongoColl := mongodb.NewMockIMongoCollection(ctrl)
	mockFindResult := mongodb.NewMockIMongoCursor(ctrl)

	store := &Store{interactions: mockMongoColl}

	t.Run("success", func(t *testing.T) {
		records := []*Interaction{
			{Id: "s1_p1", SessionId: "s1", PostId: "p1", Liked: true},
			{Id: "s1_p2", SessionId: "s1", PostId: "p2", Reposted: true},
		}

		mockMongoColl.EXPECT().
			Find(ctx, gomock.Any()).
			Return(mockFindResult, nil)
		mockFindResult.EXPECT().
			All(ctx, gomock.AssignableToTypeOf(&records)).
			SetArg(1, records).
			Return(nil)
		mockFindResult.EXPECT().
			Close(ctx).
			Return(nil)

		states, err := store.Get(context.Background(), "s1")
		assert.Nil(t, err)
		assert.Equal(t, map[post.PostId]State{
			"p1": {Liked: true},
			"p2": {Reposted: true},
		}, states)
	})

	t.Run("find error", func(t *testing.T) {
		expectedErr := fmt.Errorf("find_failed")
		mockMongoColl.EXPECT().
			Find(ctx, gomock.Any()).
			Return(nil, expectedErr)

		_, err := store.Get(context.Background(), "s1")
		assert.ErrorIs(t, err, expectedErr)
	})
}

func TestStoreSetLike(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()

	mockMongoColl := mongodb.NewMockIMongoCollection(ctrl)
	mockUpdateResult := mongodb.NewMockIMongoUpdateResult(ctrl)

	store := &Store{
		interactions: mockMongoColl,
		posts:        &fakeRepostRepo{},
		static:       &fakeStatic{},
	}

	t.Run("success", func(t *testing.T) {
		mockMongoColl.EXPECT().
			UpdateOne(ctx, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(mockUpdateResult, nil)

		err := store.Set(context.Background(), "s1", "p1", Patch{Liked: boolPtr(true)}, 1)
		assert.Nil(t, err)
	})

	t.Run("stale write", func(t *testing.T) {
		mockMongoColl.EXPECT().
			UpdateOne(ctx, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, duplicateKeyErr())

		err := store.Set(context.Background(), "s1", "p1", Patch{Liked: boolPtr(true)}, 1)
		assert.ErrorIs(t, err, ErrStaleWrite)
	})

	t.Run("write error", func(t *testing.T) {
		expectedErr := fmt.Errorf("update_failed")
		mockMongoColl.EXPECT().
			UpdateOne(ctx, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, expectedErr)

		err := store.Set(context.Background(), "s1", "p1", Patch{Liked: boolPtr(true)}, 1)
		assert.ErrorIs(t, err, expectedErr)
	})
}

func TestStoreSetRepost(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()

	origin := &post.Post{
		Id:     "p1",
		Author: "someone",
		Text:   "origin text",
		Stance: post.StancePro,
	}

	newStore := func(repo *fakeRepostRepo, static *fakeStatic) (*Store, *mongodb.MockIMongoCollection) {
		mockMongoColl := mongodb.NewMockIMongoCollection(ctrl)
		return &Store{
			interactions: mockMongoColl,
			posts:        repo,
			static:       static,
		}, mockMongoColl
	}
	mockUpdateResult := mongodb.NewMockIMongoUpdateResult(ctrl)

	t.Run("on creates one repost, second toggle is a no-op", func(t *testing.T) {
		repo := &fakeRepostRepo{byId: map[post.PostId]*post.Post{"p1": origin}}
		store, mockMongoColl := newStore(repo, &fakeStatic{})
		mockMongoColl.EXPECT().
			UpdateOne(ctx, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(mockUpdateResult, nil).
			Times(2)

		err := store.Set(context.Background(), "s1", "p1", Patch{Reposted: boolPtr(true)}, 1)
		assert.Nil(t, err)
		err = store.Set(context.Background(), "s1", "p1", Patch{Reposted: boolPtr(true)}, 2)
		assert.Nil(t, err)

		assert.Len(t, repo.added, 1)
		repost := repo.added[0]
		assert.Equal(t, post.KindRepost, repost.Kind)
		assert.Equal(t, "s1", repost.Author)
		assert.Equal(t, origin.Stance, repost.Stance)
		assert.Equal(t, origin.Id, repost.Origin.PostId)
		assert.Equal(t, origin.Author, repost.Origin.Author)
	})

	t.Run("origin resolved from the static bundle", func(t *testing.T) {
		repo := &fakeRepostRepo{}
		store, mockMongoColl := newStore(repo, &fakeStatic{posts: []*post.Post{origin}})
		mockMongoColl.EXPECT().
			UpdateOne(ctx, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(mockUpdateResult, nil)

		err := store.Set(context.Background(), "s1", "p1", Patch{Reposted: boolPtr(true)}, 1)
		assert.Nil(t, err)
		assert.Len(t, repo.added, 1)
	})

	t.Run("missing origin fails the toggle", func(t *testing.T) {
		repo := &fakeRepostRepo{}
		store, mockMongoColl := newStore(repo, &fakeStatic{})
		mockMongoColl.EXPECT().
			UpdateOne(ctx, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(mockUpdateResult, nil)

		err := store.Set(context.Background(), "s1", "missing", Patch{Reposted: boolPtr(true)}, 1)
		assert.ErrorContains(t, err, "repost origin not found")
	})

	t.Run("off deletes reposts, cleanup failure is not fatal", func(t *testing.T) {
		repo := &fakeRepostRepo{delErr: fmt.Errorf("mongo_down")}
		store, mockMongoColl := newStore(repo, &fakeStatic{})
		mockMongoColl.EXPECT().
			UpdateOne(ctx, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(mockUpdateResult, nil)

		err := store.Set(context.Background(), "s1", "p1", Patch{Reposted: boolPtr(false)}, 1)
		assert.Nil(t, err)
		assert.Equal(t, 1, repo.deleted)
	})
}

func TestStoreCounts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()

	mockMongoColl := mongodb.NewMockIMongoCollection(ctrl)
	mockFindResult := mongodb.NewMockIMongoCursor(ctrl)

	store := &Store{interactions: mockMongoColl}

	records := []*Interaction{
		{Id: "s1_p1", PostId: "p1", Liked: true, Reposted: true},
		{Id: "s2_p1", PostId: "p1", Liked: true},
		{Id: "s3_p1", PostId: "p1"},
	}

	mockMongoColl.EXPECT().
		Find(ctx, gomock.Any()).
		Return(mockFindResult, nil)
	mockFindResult.EXPECT().
		All(ctx, gomock.AssignableToTypeOf(&records)).
		SetArg(1, records).
		Return(nil)
	mockFindResult.EXPECT().
		Close(ctx).
		Return(nil)

	counts, err := store.Counts(context.Background(), "p1")
	assert.Nil(t, err)
	assert.Equal(t, &Counts{LikeCount: 2, RepostCount: 1}, counts)
}
