package post

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"sod/pkg/session"
)

type fakePostRepo struct {
	byId    map[PostId]*Post
	added   []*Post
	deleted []PostId
	addErr  error
}

func (f *fakePostRepo) GetById(_ context.Context, id PostId) (*Post, error) {
	if p, ok := f.byId[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("post: post not found")
}

func (f *fakePostRepo) Add(_ context.Context, p *Post) (PostId, error) {
	if f.addErr != nil {
		return PostId(``), f.addErr
	}
	f.added = append(f.added, p)
	return p.Id, nil
}

func (f *fakePostRepo) Delete(_ context.Context, id PostId) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeMerger struct {
	feed       []*Post
	gotVariant session.Variant
}

func (f *fakeMerger) LoadFeed(_ context.Context, v session.Variant) ([]*Post, error) {
	f.gotVariant = v
	return f.feed, nil
}

func (f *fakeMerger) Subscribe(context.Context, session.Variant, func([]*Post)) (func(), error) {
	return nil, fmt.Errorf("not subscribable")
}

func authedRequest(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	s := &session.Session{Id: "sess_1", Variant: session.VariantAgainst}
	return r.WithContext(context.WithValue(r.Context(), session.SessionKey, s))
}

func TestFeedVariantPrecedence(t *testing.T) {
	merger := &fakeMerger{}
	ph := NewPostHandler(&fakePostRepo{}, merger)

	t.Run("query param wins", func(t *testing.T) {
		w := httptest.NewRecorder()
		ph.Feed(w, authedRequest("GET", "/api/feed?variant=pro", ""))
		assert.Equal(t, session.VariantPro, merger.gotVariant)
	})

	t.Run("session variant next", func(t *testing.T) {
		w := httptest.NewRecorder()
		ph.Feed(w, authedRequest("GET", "/api/feed", ""))
		assert.Equal(t, session.VariantAgainst, merger.gotVariant)
	})

	t.Run("invalid query param falls through", func(t *testing.T) {
		w := httptest.NewRecorder()
		ph.Feed(w, authedRequest("GET", "/api/feed?variant=bogus", ""))
		assert.Equal(t, session.VariantAgainst, merger.gotVariant)
	})

	t.Run("anonymous gets mixed", func(t *testing.T) {
		w := httptest.NewRecorder()
		ph.Feed(w, httptest.NewRequest("GET", "/api/feed", nil))
		assert.Equal(t, session.VariantMixed, merger.gotVariant)
	})
}

func TestPostHandlerAdd(t *testing.T) {
	t.Run("not authorized", func(t *testing.T) {
		ph := NewPostHandler(&fakePostRepo{}, &fakeMerger{})
		w := httptest.NewRecorder()
		ph.Add(w, httptest.NewRequest("POST", "/api/posts", strings.NewReader(`{"text":"hi","stance":"pro"}`)))
		assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
	})

	t.Run("unknown stance", func(t *testing.T) {
		ph := NewPostHandler(&fakePostRepo{}, &fakeMerger{})
		w := httptest.NewRecorder()
		ph.Add(w, authedRequest("POST", "/api/posts", `{"text":"hi","stance":"sideways"}`))
		assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
	})

	t.Run("success overrides client fields", func(t *testing.T) {
		repo := &fakePostRepo{}
		ph := NewPostHandler(repo, &fakeMerger{})
		w := httptest.NewRecorder()
		body := `{"id":"spoofed","author":"someone_else","kind":"repost","text":"hi","stance":"pro","static":true}`
		ph.Add(w, authedRequest("POST", "/api/posts", body))
		assert.Equal(t, http.StatusCreated, w.Result().StatusCode)

		assert.Len(t, repo.added, 1)
		added := repo.added[0]
		assert.NotEqual(t, PostId("spoofed"), added.Id)
		assert.Equal(t, "sess_1", added.Author)
		assert.Equal(t, KindOriginal, added.Kind)
		assert.False(t, added.Static)

		resp := new(Post)
		assert.Nil(t, json.Unmarshal(w.Body.Bytes(), resp))
		assert.Equal(t, added.Id, resp.Id)
	})
}

func TestPostHandlerDelete(t *testing.T) {
	own := &Post{Id: "p1", Author: "sess_1"}
	foreign := &Post{Id: "p2", Author: "sess_other"}
	repo := &fakePostRepo{byId: map[PostId]*Post{"p1": own, "p2": foreign}}
	ph := NewPostHandler(repo, &fakeMerger{})

	deleteReq := func(id string) *http.Request {
		return mux.SetURLVars(authedRequest("DELETE", "/api/post/"+id, ""),
			map[string]string{"post_id": id})
	}

	t.Run("not authorized", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := mux.SetURLVars(httptest.NewRequest("DELETE", "/api/post/p1", nil),
			map[string]string{"post_id": "p1"})
		ph.Delete(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		ph.Delete(w, deleteReq("missing"))
		assert.Equal(t, http.StatusNotFound, w.Result().StatusCode)
	})

	t.Run("foreign post is forbidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		ph.Delete(w, deleteReq("p2"))
		assert.Equal(t, http.StatusForbidden, w.Result().StatusCode)
		assert.Empty(t, repo.deleted)
	})

	t.Run("own post is removed", func(t *testing.T) {
		w := httptest.NewRecorder()
		ph.Delete(w, deleteReq("p1"))
		assert.Equal(t, http.StatusOK, w.Result().StatusCode)
		assert.Equal(t, []PostId{"p1"}, repo.deleted)
	})
}

// Merger stub delivering the feed once, synchronously, for exercising
// the SSE plumbing without a change stream.
type subscribingMerger struct {
	feed []*Post
}

func (m *subscribingMerger) LoadFeed(context.Context, session.Variant) ([]*Post, error) {
	return m.feed, nil
}

func (m *subscribingMerger) Subscribe(_ context.Context, _ session.Variant, onChange func([]*Post)) (func(), error) {
	onChange(m.feed)
	return func() {}, nil
}

func TestFeedStream(t *testing.T) {
	merger := &subscribingMerger{feed: []*Post{{Id: "bundled", Stance: StanceMixed}}}
	ph := NewPostHandler(&fakePostRepo{}, merger)

	ctx, cancel := context.WithCancel(context.Background())
	r := httptest.NewRequest("GET", "/api/feed/stream", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		ph.FeedStream(w, r)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream handler never returned")
	}

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "data: ")
	assert.Contains(t, w.Body.String(), `"id":"bundled"`)
}
