package post

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	. "sod/pkg/common"
	"sod/pkg/logger"
	"sod/pkg/session"
)

type (
	IPostRepo interface {
		GetById(context.Context, PostId) (*Post, error)
		Add(context.Context, *Post) (PostId, error)
		Delete(context.Context, PostId) error
	}

	IMerger interface {
		LoadFeed(context.Context, session.Variant) ([]*Post, error)
		Subscribe(context.Context, session.Variant, func([]*Post)) (func(), error)
	}

	PostHandler struct {
		PostRepo IPostRepo
		Merger   IMerger
	}
)

func NewPostHandler(postRepo IPostRepo, merger IMerger) *PostHandler {
	return &PostHandler{
		PostRepo: postRepo,
		Merger:   merger,
	}
}

func (ph PostHandler) feedVariant(r *http.Request) session.Variant {
	variant := session.Variant(r.URL.Query().Get("variant"))
	if variant.Valid() {
		return variant
	}
	if s, err := session.GetAuthSession(r.Context()); err == nil {
		return s.Variant
	}
	return session.VariantMixed
}

func (ph PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	feed, err := ph.Merger.LoadFeed(r.Context(), ph.feedVariant(r))
	if err != nil {
		logger.Log(r.Context()).Errorf("can't load feed: %v", err)
		WriteMsg(w, "failed loading feed", http.StatusInternalServerError)
		return
	}

	WriteRespJSON(w, feed)
}

// Server-sent events: one snapshot right away, then the re-merged feed
// on every live change.
func (ph PostHandler) FeedStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteMsg(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	unsubscribe, err := ph.Merger.Subscribe(r.Context(), ph.feedVariant(r), func(feed []*Post) {
		payload, err := json.Marshal(feed)
		if err != nil {
			logger.Log(r.Context()).Errorf("can't marshal feed event: %v", err)
			return
		}
		w.Write([]byte("data: "))
		w.Write(payload)
		w.Write([]byte("\n\n"))
		flusher.Flush()
	})
	if err != nil {
		logger.Log(r.Context()).Errorf("can't subscribe to feed: %v", err)
		WriteMsg(w, "failed subscribing to feed", http.StatusInternalServerError)
		return
	}
	defer unsubscribe()

	<-r.Context().Done()
}

func (ph *PostHandler) Add(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	author, err := session.GetAuthSession(r.Context())
	if err != nil {
		logger.Log(r.Context()).Errorf("post/handlers: can't get the session: %v", err)
		WriteMsg(w, "not authorized", http.StatusUnauthorized)
		return
	}

	post := new(Post)
	err = ParseReqBody(r.Body, post)
	if err != nil {
		logger.Log(r.Context()).Errorf("can't parse post from request body: %v", err)
		WriteMsg(w, "can't parse post", http.StatusBadRequest)
		return
	}
	if !post.Stance.Valid() {
		WriteMsg(w, "unknown stance", http.StatusBadRequest)
		return
	}

	post.Id = PostId(RandStringRunes(12))
	post.Kind = KindOriginal
	post.Author = author.Id
	post.Created = time.Now()
	post.Origin = nil
	post.Static = false

	_, err = ph.PostRepo.Add(r.Context(), post)
	if err != nil {
		logger.Log(r.Context()).Errorf("can't add post to the repo: %v", err)
		WriteMsg(w, "failed adding post", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	WriteRespJSON(w, post)
}

func (ph PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	postId := vars["post_id"]
	post, err := ph.PostRepo.GetById(r.Context(), PostId(postId))
	if err != nil {
		logger.Log(r.Context()).Errorf("can't get post with id %s: %v", postId, err)
		WriteMsg(w, "post not found", http.StatusNotFound)
		return
	}

	WriteRespJSON(w, post)
}

// Only the author session may delete its post. Static posts never live
// in the collection, so they come back as not found here.
func (ph *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	postId := vars["post_id"]

	authSession, err := session.GetAuthSession(r.Context())
	if err != nil {
		logger.Log(r.Context()).Errorf("can't find auth session: %v", err)
		WriteMsg(w, "not authorized", http.StatusUnauthorized)
		return
	}

	post, err := ph.PostRepo.GetById(r.Context(), PostId(postId))
	if err != nil {
		logger.Log(r.Context()).Errorf("can't find the post: %v", err)
		WriteMsg(w, "post not found", http.StatusNotFound)
		return
	}

	if post.Author != authSession.Id {
		WriteMsg(w, "only the author can remove the post", http.StatusForbidden)
		return
	}

	err = ph.PostRepo.Delete(r.Context(), PostId(postId))
	if err != nil {
		logger.Log(r.Context()).Errorf("can't remove post: %v", err)
		WriteMsg(w, "removing post failed", http.StatusInternalServerError)
		return
	}

	WriteMsg(w, "success", http.StatusOK)
}
