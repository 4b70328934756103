package poll

import (
	"time"

	"sod/pkg/session"
)

// Append-only: one submission expected per session, not enforced.
type Submission struct {
	SessionId   string          `json:"sessionId"`
	Variant     session.Variant `json:"variant"`
	Answer      string          `json:"answer"`
	SubmittedAt time.Time       `json:"submittedAt"`
}
