package middleware

import (
	"net/http"

	"sod/pkg/common"
)

type (
	IGate interface {
		Expired() bool
	}

	// Gate makes the API read-only once the countdown has expired:
	// the experiment is over, only the poll and session endpoints
	// still accept writes.
	Gate struct {
		gate IGate
	}
)

func NewGateMiddleware(g IGate) *Gate {
	return &Gate{
		gate: g,
	}
}

var gateExempt = map[string]bool{
	"/api/poll":    true,
	"/api/session": true,
}

func (gm Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gm.gate.Expired() && mutating(r.Method) && !gateExempt[r.URL.Path] {
			common.WriteMsg(w, "experiment has ended", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
