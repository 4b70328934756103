package poll

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v4/stdlib"
)

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, s *Submission) error {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO polls(session_id, variant, answer, submitted_at) VALUES($1, $2, $3, $4)",
		s.SessionId, s.Variant, s.Answer, s.SubmittedAt)
	if err != nil {
		return fmt.Errorf("poll/repo: failed inserting submission: %w", err)
	}
	affected, affectedErr := result.RowsAffected()
	if affectedErr != nil {
		return fmt.Errorf("poll/repo: submission wasn't added: %w", affectedErr)
	}
	if affected == 0 {
		return fmt.Errorf("poll/repo: submission wasn't added, RowsAffected is 0")
	}
	return nil
}

// Returns all submissions. Used for exporting experiment results.
func (r *Repo) GetAll(ctx context.Context) ([]*Submission, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT session_id, variant, answer, submitted_at FROM polls")
	if err != nil {
		return nil, fmt.Errorf("poll/repo: failed executing query for getting all submissions: %w", err)
	}
	defer rows.Close()

	submissions := []*Submission{}
	for rows.Next() {
		s := new(Submission)
		err := rows.Scan(&s.SessionId, &s.Variant, &s.Answer, &s.SubmittedAt)
		if err != nil {
			return nil, fmt.Errorf("poll/repo: could not scan row: %w", err)
		}
		submissions = append(submissions, s)
	}

	return submissions, nil
}
