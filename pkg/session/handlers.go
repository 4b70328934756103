package session

import (
	"context"
	"net/http"

	"sod/pkg/common"
	"sod/pkg/logger"
)

type (
	IManager interface {
		Ensure(ctx context.Context, current *Session, requested Variant, userAgent string) (*Session, string, error)
	}

	Handler struct {
		Manager IManager
	}

	ensureReq struct {
		Variant string `json:"variant"`
	}

	ensureResp struct {
		SessionId string  `json:"sessionId"`
		Variant   Variant `json:"variant"`
		Token     string  `json:"token,omitempty"`
	}
)

func NewHandler(m IManager) *Handler {
	return &Handler{Manager: m}
}

// POST /api/session. Safe to call repeatedly: an authenticated caller
// gets its existing session back without a variant reassignment.
func (h Handler) Ensure(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	req := new(ensureReq)
	if r.Body != nil && r.ContentLength != 0 {
		if err := common.ParseReqBody(r.Body, req); err != nil {
			logger.Log(r.Context()).Errorf("can't parse session request body: %v", err)
			common.WriteMsg(w, "bad request format", http.StatusBadRequest)
			return
		}
	}

	current, _ := GetAuthSession(r.Context()) // nil for a fresh visitor

	s, token, err := h.Manager.Ensure(r.Context(), current, Variant(req.Variant), r.UserAgent())
	if err != nil {
		logger.Log(r.Context()).Errorf("can't ensure session: %v", err)
		common.WriteMsg(w, "failed establishing session", http.StatusInternalServerError)
		return
	}

	common.WriteRespJSON(w, ensureResp{
		SessionId: s.Id,
		Variant:   s.Variant,
		Token:     token,
	})
}
