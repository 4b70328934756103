package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sod/pkg/comment"
	"sod/pkg/post"
)

const (
	StatusOk      = "ok"
	StatusSkipped = "skipped"

	ReasonRateLimited = "rate_limited"

	defaultCount = 3
	minCount     = 1
	maxCount     = 5
)

var ErrMissingPostId = errors.New("generator: postId required")

type Result struct {
	Status string              `json:"status"`
	Reason string              `json:"reason,omitempty"`
	Ids    []comment.CommentId `json:"ids,omitempty"`
}

//go:generate mockgen -source=generator.go -destination=generator_mock.go -package=generator

type (
	ITextModel interface {
		Generate(ctx context.Context, prompt string) (string, error)
	}

	ILimiter interface {
		Allow(ctx context.Context, sessionId string, postId post.PostId) (bool, error)
	}

	IPostSource interface {
		GetById(context.Context, post.PostId) (*post.Post, error)
	}

	ICommentWriter interface {
		AddGeneratedBatch(context.Context, post.PostId, string, []string) ([]comment.CommentId, error)
	}

	Generator struct {
		model    ITextModel
		limiter  ILimiter
		posts    IPostSource
		comments ICommentWriter
	}
)

func NewGenerator(model ITextModel, limiter ILimiter, posts IPostSource, comments ICommentWriter) *Generator {
	return &Generator{
		model:    model,
		limiter:  limiter,
		posts:    posts,
		comments: comments,
	}
}

// Generate produces up to count AI replies for the post and persists
// them as one atomic batch of generated comments. A rate-limited call
// is not an error: it returns the "skipped" status.
func (g *Generator) Generate(ctx context.Context, sessionId string, postId post.PostId, count int) (*Result, error) {
	if postId == "" {
		return nil, ErrMissingPostId
	}
	count = clampCount(count)

	allowed, err := g.limiter.Allow(ctx, sessionId, postId)
	if err != nil {
		return nil, fmt.Errorf("generator: rate limit check failed: %w", err)
	}
	if !allowed {
		return &Result{Status: StatusSkipped, Reason: ReasonRateLimited}, nil
	}

	// A post still living only in the static bundle has no backend
	// record. Client-provided context is not trusted; the prompt stays
	// neutral instead.
	stance, text := post.StanceMixed, ""
	if p, err := g.posts.GetById(ctx, postId); err == nil {
		stance, text = p.Stance, p.Text
	}

	raw, err := g.model.Generate(ctx, buildPrompt(stance, text, count))
	if err != nil {
		return nil, fmt.Errorf("generator: model call failed: %w", err)
	}

	lines := parseReplies(raw, count)
	ids, err := g.comments.AddGeneratedBatch(ctx, postId, sessionId, lines)
	if err != nil {
		return nil, fmt.Errorf("generator: failed persisting generated comments: %w", err)
	}

	return &Result{Status: StatusOk, Ids: ids}, nil
}

func clampCount(n int) int {
	if n == 0 {
		return defaultCount
	}
	if n < minCount {
		return minCount
	}
	if n > maxCount {
		return maxCount
	}
	return n
}

func buildPrompt(stance post.Stance, text string, count int) string {
	return "You are generating short, natural, social-media style replies to a post.\n" +
		fmt.Sprintf("Post stance: %s.\n", stance) +
		fmt.Sprintf("Post text: %s.\n", text) +
		fmt.Sprintf("Write %d distinct replies. Each reply must be a single line under 180 characters, "+
			"no numbering, no quotes, diverse tone (informational, skeptical, supportive). "+
			"Avoid offensive language.", count)
}

// Split on line breaks, trim, drop empties, keep at most count lines.
func parseReplies(raw string, count int) []string {
	lines := []string{}
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == count {
			break
		}
	}
	return lines
}
