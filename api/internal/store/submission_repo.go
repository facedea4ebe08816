package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// Submission is one successfully filed question.
type Submission struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Submitter string    `db:"submitter"`
	Code      string    `db:"code"`
	Seq       int       `db:"seq"`
	FileID    string    `db:"file_id"`
	FileName  string    `db:"file_name"`
	Link      string    `db:"link"`
	CreatedAt time.Time `db:"created_at"`
}

// SubmissionRepo is an append-only journal of uploads.
type SubmissionRepo struct{ DB *sqlx.DB }

func NewSubmissionRepo(db *sqlx.DB) *SubmissionRepo { return &SubmissionRepo{DB: db} }

func (r *SubmissionRepo) Insert(ctx context.Context, s Submission) error {
	const q = `
insert into submissions (user_id, submitter, code, seq, file_id, file_name, link, created_at)
values (:user_id, :submitter, :code, :seq, :file_id, :file_name, :link, :created_at)`
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	_, err := r.DB.NamedExecContext(ctx, q, s)
	return err
}

// Recent returns the user's latest submissions, newest first.
func (r *SubmissionRepo) Recent(ctx context.Context, userID int64, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
select id, user_id, submitter, code, seq, file_id, file_name, link, created_at
from submissions
where user_id = $1
order by created_at desc, id desc
limit $2`
	var out []Submission
	if err := r.DB.SelectContext(ctx, &out, q, userID, limit); err != nil {
		return nil, err
	}
	return out, nil
}
