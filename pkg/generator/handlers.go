package generator

import (
	"context"
	"errors"
	"net/http"

	. "sod/pkg/common"
	"sod/pkg/logger"
	"sod/pkg/post"
	"sod/pkg/session"
)

type (
	IGenerator interface {
		Generate(ctx context.Context, sessionId string, postId post.PostId, count int) (*Result, error)
	}

	GenerateHandler struct {
		Generator IGenerator
	}

	generateReq struct {
		PostId string `json:"postId"`
		Count  int    `json:"count"`
	}
)

func NewGenerateHandler(g IGenerator) *GenerateHandler {
	return &GenerateHandler{Generator: g}
}

// POST /api/generate. Anonymous auth is sufficient, no auth is not.
func (gh GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	s, err := session.GetAuthSession(r.Context())
	if err != nil {
		WriteMsg(w, "not authorized", http.StatusUnauthorized)
		return
	}

	req := new(generateReq)
	if err := ParseReqBody(r.Body, req); err != nil {
		logger.Log(r.Context()).Errorf("can't parse generate request body: %v", err)
		WriteMsg(w, "bad request format", http.StatusBadRequest)
		return
	}

	result, err := gh.Generator.Generate(r.Context(), s.Id, post.PostId(req.PostId), req.Count)
	if errors.Is(err, ErrMissingPostId) {
		WriteMsg(w, "postId required", http.StatusBadRequest)
		return
	}
	if err != nil {
		logger.Log(r.Context()).Errorf("comment generation failed for post %s: %v", req.PostId, err)
		WriteMsg(w, "generation failed", http.StatusInternalServerError)
		return
	}

	WriteRespJSON(w, result)
}
