package session

import (
	"context"
	"database/sql"
	"errors"
)

// Postgres stores pending submissions in the pending_submissions table so
// they survive restarts and can be shared by several bot processes.
type Postgres struct{ DB *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{DB: db} }

func (s *Postgres) Get(ctx context.Context, userID int64) (Pending, bool, error) {
	const q = `select image, mime, submitter, created_at from pending_submissions where user_id = $1`
	var p Pending
	err := s.DB.QueryRowContext(ctx, q, userID).Scan(&p.Image, &p.MIME, &p.Submitter, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Pending{}, false, nil
	}
	if err != nil {
		return Pending{}, false, err
	}
	return p, true, nil
}

func (s *Postgres) Put(ctx context.Context, userID int64, p Pending) error {
	const q = `
insert into pending_submissions (user_id, image, mime, submitter, created_at)
values ($1, $2, $3, $4, $5)
on conflict (user_id) do update
set image = excluded.image,
    mime = excluded.mime,
    submitter = excluded.submitter,
    created_at = excluded.created_at`
	_, err := s.DB.ExecContext(ctx, q, userID, p.Image, p.MIME, p.Submitter, p.CreatedAt)
	return err
}

func (s *Postgres) Delete(ctx context.Context, userID int64) error {
	const q = `delete from pending_submissions where user_id = $1`
	_, err := s.DB.ExecContext(ctx, q, userID)
	return err
}
