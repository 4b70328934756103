package post

import (
	"context"
	"fmt"
	"sort"

	"sod/pkg/logger"
	"sod/pkg/mongodb"
	"sod/pkg/session"
)

type (
	IFeedRepo interface {
		GetAll(context.Context) ([]*Post, error)
		Watch(context.Context) (mongodb.IMongoChangeStream, error)
	}

	IStaticSource interface {
		Load() ([]*Post, error)
	}

	// Merger combines the live collection and the bundled posts into
	// one variant-filtered feed, newest first.
	Merger struct {
		repo   IFeedRepo
		static IStaticSource
	}
)

func NewMerger(repo IFeedRepo, static IStaticSource) *Merger {
	return &Merger{
		repo:   repo,
		static: static,
	}
}

// One source failing degrades the feed to the other source; only both
// failing is an error.
func (m *Merger) LoadFeed(ctx context.Context, variant session.Variant) ([]*Post, error) {
	live, liveErr := m.repo.GetAll(ctx)
	if liveErr != nil {
		logger.Log(ctx).Errorf("post/feed: live source failed, proceeding with static: %v", liveErr)
	}
	bundled, staticErr := m.static.Load()
	if staticErr != nil {
		logger.Log(ctx).Errorf("post/feed: static source failed, proceeding with live: %v", staticErr)
	}
	if liveErr != nil && staticErr != nil {
		return nil, fmt.Errorf("post/feed: both sources failed: %v; %v", liveErr, staticErr)
	}

	merged := make([]*Post, 0, len(live)+len(bundled))
	for _, p := range append(live, bundled...) {
		if p.VisibleTo(variant) {
			merged = append(merged, p)
		}
	}
	sortFeed(merged)
	return merged, nil
}

// Newest first; identical timestamps break by id descending so the
// order is deterministic.
func sortFeed(posts []*Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Created.Equal(posts[j].Created) {
			return posts[i].Created.After(posts[j].Created)
		}
		return posts[i].Id > posts[j].Id
	})
}

// Subscribe delivers the merged feed once immediately and again after
// every change notification from the live collection. The returned
// func tears the subscription down; establish a new subscription only
// after calling it.
func (m *Merger) Subscribe(ctx context.Context, variant session.Variant, onChange func([]*Post)) (func(), error) {
	stream, err := m.repo.Watch(ctx)
	if err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer stream.Close(context.Background())

		if feed, err := m.LoadFeed(subCtx, variant); err == nil {
			onChange(feed)
		}
		for stream.Next(subCtx) {
			feed, err := m.LoadFeed(subCtx, variant)
			if err != nil {
				logger.Log(subCtx).Errorf("post/feed: reload on change failed: %v", err)
				continue
			}
			onChange(feed)
		}
		if err := stream.Err(); err != nil && subCtx.Err() == nil {
			logger.Log(subCtx).Errorf("post/feed: change stream closed: %v", err)
		}
	}()

	return cancel, nil
}
