package comment

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	. "sod/pkg/common"
	"sod/pkg/logger"
	"sod/pkg/post"
	"sod/pkg/session"
)

type (
	ICommentRepo interface {
		List(context.Context, post.PostId) ([]*Comment, error)
		Add(context.Context, post.PostId, string, string) (*Comment, error)
		Subscribe(context.Context, post.PostId, func([]*Comment)) (func(), error)
	}

	CommentHandler struct {
		CommentRepo ICommentRepo
	}
)

func NewCommentHandler(repo ICommentRepo) *CommentHandler {
	return &CommentHandler{CommentRepo: repo}
}

func (ch CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	postId := post.PostId(vars["post_id"])

	comments, err := ch.CommentRepo.List(r.Context(), postId)
	if err != nil {
		logger.Log(r.Context()).Errorf("can't list comments for post %s: %v", postId, err)
		WriteMsg(w, "failed loading comments", http.StatusInternalServerError)
		return
	}

	WriteRespJSON(w, comments)
}

func (ch *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	postId := post.PostId(vars["post_id"])

	commenter, err := session.GetAuthSession(r.Context())
	if err != nil {
		logger.Log(r.Context()).Errorf("can't find the commenting session: %v", err)
		WriteMsg(w, "not authorized", http.StatusUnauthorized)
		return
	}

	c := struct {
		Text string `json:"text"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		logger.Log(r.Context()).Errorf("can't get comment body: %v", err)
		WriteMsg(w, "failed parsing comment body", http.StatusBadRequest)
		return
	}
	c.Text = strings.TrimSpace(c.Text)
	if c.Text == "" {
		WriteMsg(w, "comment text required", http.StatusBadRequest)
		return
	}

	added, err := ch.CommentRepo.Add(r.Context(), postId, commenter.Id, c.Text)
	if err != nil {
		logger.Log(r.Context()).Errorf("can't add comment to post %s: %v", postId, err)
		WriteMsg(w, "failed adding comment", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	WriteRespJSON(w, added)
}

func (ch CommentHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteMsg(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	vars := mux.Vars(r)
	postId := post.PostId(vars["post_id"])

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	unsubscribe, err := ch.CommentRepo.Subscribe(r.Context(), postId, func(comments []*Comment) {
		payload, err := json.Marshal(comments)
		if err != nil {
			logger.Log(r.Context()).Errorf("can't marshal comments event: %v", err)
			return
		}
		w.Write([]byte("data: "))
		w.Write(payload)
		w.Write([]byte("\n\n"))
		flusher.Flush()
	})
	if err != nil {
		logger.Log(r.Context()).Errorf("can't subscribe to comments of %s: %v", postId, err)
		WriteMsg(w, "failed subscribing to comments", http.StatusInternalServerError)
		return
	}
	defer unsubscribe()

	<-r.Context().Done()
}
