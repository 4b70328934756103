package poll

import (
	"context"
	"net/http"
	"strings"
	"time"

	. "sod/pkg/common"
	"sod/pkg/logger"
	"sod/pkg/session"
)

type (
	IGate interface {
		State() GateState
		Remaining() time.Duration
		Visible() bool
	}

	ISubmissionRepo interface {
		Add(context.Context, *Submission) error
		GetAll(context.Context) ([]*Submission, error)
	}

	PollHandler struct {
		Gate IGate
		Repo ISubmissionRepo
	}

	timerResp struct {
		State       string `json:"state"`
		RemainingMs int64  `json:"remainingMs"`
		Visible     bool   `json:"visible"`
	}

	submitReq struct {
		Answer string `json:"answer"`
	}
)

func NewPollHandler(gate IGate, repo ISubmissionRepo) *PollHandler {
	return &PollHandler{
		Gate: gate,
		Repo: repo,
	}
}

func (ph PollHandler) Timer(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	WriteRespJSON(w, timerResp{
		State:       ph.Gate.State().String(),
		RemainingMs: ph.Gate.Remaining().Milliseconds(),
		Visible:     ph.Gate.Visible(),
	})
}

// The poll opens only once the countdown has expired.
func (ph *PollHandler) Submit(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	s, err := session.GetAuthSession(r.Context())
	if err != nil {
		WriteMsg(w, "not authorized", http.StatusUnauthorized)
		return
	}

	if ph.Gate.State() != Expired {
		WriteMsg(w, "poll is not open yet", http.StatusForbidden)
		return
	}

	req := new(submitReq)
	if err := ParseReqBody(r.Body, req); err != nil {
		logger.Log(r.Context()).Errorf("can't parse poll body: %v", err)
		WriteMsg(w, "bad request format", http.StatusBadRequest)
		return
	}
	req.Answer = strings.TrimSpace(req.Answer)
	if req.Answer == "" {
		WriteMsg(w, "answer required", http.StatusBadRequest)
		return
	}

	submission := &Submission{
		SessionId:   s.Id,
		Variant:     s.Variant,
		Answer:      req.Answer,
		SubmittedAt: time.Now(),
	}
	if err := ph.Repo.Add(r.Context(), submission); err != nil {
		logger.Log(r.Context()).Errorf("can't store poll submission: %v", err)
		WriteMsg(w, "failed storing submission", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	WriteRespJSON(w, submission)
}

// Raw dump of every submission, for pulling the experiment results.
func (ph PollHandler) Results(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	submissions, err := ph.Repo.GetAll(r.Context())
	if err != nil {
		logger.Log(r.Context()).Errorf("can't load poll submissions: %v", err)
		WriteMsg(w, "failed loading submissions", http.StatusInternalServerError)
		return
	}

	WriteRespJSON(w, submissions)
}
