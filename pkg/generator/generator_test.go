package generator

import (
	"context"
	"fmt"
	"testing"

	gomock "github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"sod/pkg/comment"
	"sod/pkg/post"
)

func TestGenerate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()

	mockModel := NewMockITextModel(ctrl)
	mockLimiter := NewMockILimiter(ctrl)
	mockPosts := NewMockIPostSource(ctrl)
	mockComments := NewMockICommentWriter(ctrl)

	g := NewGenerator(mockModel, mockLimiter, mockPosts, mockComments)

	sessionId := "s1"
	postId := post.PostId("p1")
	testPost := &post.Post{Id: postId, Stance: post.StancePro, Text: "democracy works"}

	t.Run("success", func(t *testing.T) {
		expectedIds := []comment.CommentId{"c1", "c2", "c3"}

		mockLimiter.EXPECT().
			Allow(ctx, sessionId, postId).
			Return(true, nil)
		mockPosts.EXPECT().
			GetById(ctx, postId).
			Return(testPost, nil)
		mockModel.EXPECT().
			Generate(ctx, gomock.Any()).
			Return("reply one\nreply two\nreply three", nil)
		mockComments.EXPECT().
			AddGeneratedBatch(ctx, postId, sessionId, []string{"reply one", "reply two", "reply three"}).
			Return(expectedIds, nil)

		result, err := g.Generate(ctx, sessionId, postId, 3)
		assert.Nil(t, err)
		assert.Equal(t, StatusOk, result.Status)
		assert.Equal(t, expectedIds, result.Ids)
	})

	t.Run("model overshoot is capped at count", func(t *testing.T) {
		mockLimiter.EXPECT().
			Allow(ctx, sessionId, postId).
			Return(true, nil)
		mockPosts.EXPECT().
			GetById(ctx, postId).
			Return(testPost, nil)
		mockModel.EXPECT().
			Generate(ctx, gomock.Any()).
			Return("one\r\ntwo\n\n  three  \nfour", nil)
		mockComments.EXPECT().
			AddGeneratedBatch(ctx, postId, sessionId, []string{"one", "two", "three"}).
			Return([]comment.CommentId{"c1", "c2", "c3"}, nil)

		result, err := g.Generate(ctx, sessionId, postId, 3)
		assert.Nil(t, err)
		assert.Equal(t, StatusOk, result.Status)
	})

	t.Run("rate limited", func(t *testing.T) {
		mockLimiter.EXPECT().
			Allow(ctx, sessionId, postId).
			Return(false, nil)

		result, err := g.Generate(ctx, sessionId, postId, 3)
		assert.Nil(t, err)
		assert.Equal(t, StatusSkipped, result.Status)
		assert.Equal(t, ReasonRateLimited, result.Reason)
		assert.Empty(t, result.Ids)
	})

	t.Run("missing post id", func(t *testing.T) {
		_, err := g.Generate(ctx, sessionId, post.PostId(""), 3)
		assert.ErrorIs(t, err, ErrMissingPostId)
	})

	t.Run("unknown post gets a neutral prompt", func(t *testing.T) {
		mockLimiter.EXPECT().
			Allow(ctx, sessionId, postId).
			Return(true, nil)
		mockPosts.EXPECT().
			GetById(ctx, postId).
			Return(nil, fmt.Errorf("post: post not found"))
		mockModel.EXPECT().
			Generate(ctx, buildPrompt(post.StanceMixed, "", 3)).
			Return("a\nb\nc", nil)
		mockComments.EXPECT().
			AddGeneratedBatch(ctx, postId, sessionId, gomock.Any()).
			Return([]comment.CommentId{"c1", "c2", "c3"}, nil)

		result, err := g.Generate(ctx, sessionId, postId, 3)
		assert.Nil(t, err)
		assert.Equal(t, StatusOk, result.Status)
	})

	t.Run("model error", func(t *testing.T) {
		expectedErr := fmt.Errorf("gemini_down")
		mockLimiter.EXPECT().
			Allow(ctx, sessionId, postId).
			Return(true, nil)
		mockPosts.EXPECT().
			GetById(ctx, postId).
			Return(testPost, nil)
		mockModel.EXPECT().
			Generate(ctx, gomock.Any()).
			Return("", expectedErr)

		_, err := g.Generate(ctx, sessionId, postId, 3)
		assert.ErrorIs(t, err, expectedErr)
	})

	t.Run("persist error", func(t *testing.T) {
		expectedErr := fmt.Errorf("txn_aborted")
		mockLimiter.EXPECT().
			Allow(ctx, sessionId, postId).
			Return(true, nil)
		mockPosts.EXPECT().
			GetById(ctx, postId).
			Return(testPost, nil)
		mockModel.EXPECT().
			Generate(ctx, gomock.Any()).
			Return("a\nb\nc", nil)
		mockComments.EXPECT().
			AddGeneratedBatch(ctx, postId, sessionId, gomock.Any()).
			Return(nil, expectedErr)

		_, err := g.Generate(ctx, sessionId, postId, 3)
		assert.ErrorIs(t, err, expectedErr)
	})
}

func TestClampCount(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, 3},
		{-2, 1},
		{1, 1},
		{4, 4},
		{5, 5},
		{17, 5},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, clampCount(c.in))
	}
}

func TestParseReplies(t *testing.T) {
	t.Run("trims and drops empty lines", func(t *testing.T) {
		lines := parseReplies("  first \n\n\tsecond\n", 5)
		assert.Equal(t, []string{"first", "second"}, lines)
	})

	t.Run("windows line breaks", func(t *testing.T) {
		lines := parseReplies("a\r\nb", 5)
		assert.Equal(t, []string{"a", "b"}, lines)
	})

	t.Run("empty response", func(t *testing.T) {
		assert.Empty(t, parseReplies("  \n ", 5))
	})
}
