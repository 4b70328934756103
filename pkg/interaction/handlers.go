package interaction

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	. "sod/pkg/common"
	"sod/pkg/logger"
	"sod/pkg/post"
	"sod/pkg/session"
)

type (
	IStore interface {
		Get(context.Context, string) (map[post.PostId]State, error)
		Set(context.Context, string, post.PostId, Patch, int64) error
		Counts(context.Context, post.PostId) (*Counts, error)
	}

	InteractionHandler struct {
		Store IStore
	}

	setReq struct {
		Liked    *bool `json:"liked,omitempty"`
		Reposted *bool `json:"reposted,omitempty"`
		Rev      int64 `json:"rev"`
	}
)

func NewInteractionHandler(store IStore) *InteractionHandler {
	return &InteractionHandler{Store: store}
}

func (ih InteractionHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	s, err := session.GetAuthSession(r.Context())
	if err != nil {
		WriteMsg(w, "not authorized", http.StatusUnauthorized)
		return
	}

	states, err := ih.Store.Get(r.Context(), s.Id)
	if err != nil {
		logger.Log(r.Context()).Errorf("can't load interactions for session %s: %v", s.Id, err)
		WriteMsg(w, "failed loading interactions", http.StatusInternalServerError)
		return
	}

	WriteRespJSON(w, states)
}

func (ih *InteractionHandler) Set(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	s, err := session.GetAuthSession(r.Context())
	if err != nil {
		WriteMsg(w, "not authorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	postId := post.PostId(vars["post_id"])

	req := new(setReq)
	if err := ParseReqBody(r.Body, req); err != nil {
		logger.Log(r.Context()).Errorf("can't parse interaction body: %v", err)
		WriteMsg(w, "bad request format", http.StatusBadRequest)
		return
	}
	if req.Liked == nil && req.Reposted == nil {
		WriteMsg(w, "empty interaction update", http.StatusBadRequest)
		return
	}

	patch := Patch{Liked: req.Liked, Reposted: req.Reposted}
	err = ih.Store.Set(r.Context(), s.Id, postId, patch, req.Rev)
	if errors.Is(err, ErrStaleWrite) {
		WriteMsg(w, "stale interaction update", http.StatusConflict)
		return
	}
	if err != nil {
		logger.Log(r.Context()).Errorf("can't write interaction for post %s: %v", postId, err)
		WriteMsg(w, "failed writing interaction", http.StatusInternalServerError)
		return
	}

	WriteMsg(w, "success", http.StatusOK)
}

func (ih InteractionHandler) PostCounts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if _, err := session.GetAuthSession(r.Context()); err != nil {
		WriteMsg(w, "not authorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	postId := post.PostId(vars["post_id"])
	if postId == "" {
		WriteMsg(w, "postId required", http.StatusBadRequest)
		return
	}

	counts, err := ih.Store.Counts(r.Context(), postId)
	if err != nil {
		logger.Log(r.Context()).Errorf("can't count interactions for post %s: %v", postId, err)
		WriteMsg(w, "failed counting interactions", http.StatusInternalServerError)
		return
	}

	WriteRespJSON(w, counts)
}
