package post

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Bundled posts have no real timestamps. They get strictly decreasing
// synthetic ones from this base so they always sort after (older than)
// any live post while keeping a stable relative order.
var staticEpoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// StaticSource serves the immutable posts bundled with the site. The
// file is read once; the snapshot is reused across feed notifications.
type StaticSource struct {
	path string

	once  sync.Once
	posts []*Post
	err   error
}

func NewStaticSource(path string) *StaticSource {
	return &StaticSource{path: path}
}

func (s *StaticSource) Load() ([]*Post, error) {
	s.once.Do(func() {
		raw, err := os.ReadFile(s.path)
		if err != nil {
			s.err = fmt.Errorf("post/static: failed reading %s: %w", s.path, err)
			return
		}

		posts := []*Post{}
		if err := json.Unmarshal(raw, &posts); err != nil {
			s.err = fmt.Errorf("post/static: failed parsing %s: %w", s.path, err)
			return
		}

		for i, p := range posts {
			if p.Kind == "" {
				p.Kind = KindOriginal
			}
			p.Static = true
			p.Created = staticEpoch.Add(-time.Duration(i) * time.Minute)
		}
		s.posts = posts
	})
	return s.posts, s.err
}
