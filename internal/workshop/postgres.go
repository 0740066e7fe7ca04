package workshop

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store on PostgreSQL via database/sql.
type PGStore struct {
	db *sql.DB
}

// NewPGStore wraps an open database handle.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const workshopColumns = "id, title, description, submitter_id, status, approved_by, decided_at, reject_reason, created_at"

func (s *PGStore) Create(ctx context.Context, w *Workshop) error {
	_, err := s.db.ExecContext(ctx,
		`insert into workshops (id, title, description, submitter_id, status, approved_by, decided_at, reject_reason, created_at)
		 values ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		w.ID, w.Title, w.Description, w.SubmitterID, string(w.Status),
		w.ApprovedBy, w.DecidedAt, w.RejectReason, w.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert workshop: %w", err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id string) (*Workshop, error) {
	row := s.db.QueryRowContext(ctx,
		"select "+workshopColumns+" from workshops where id = $1", id)
	return scanWorkshop(row)
}

func (s *PGStore) List(ctx context.Context, status Status) ([]*Workshop, error) {
	query := "select " + workshopColumns + " from workshops"
	args := []any{}
	if status != "" {
		query += " where status = $1"
		args = append(args, string(status))
	}
	query += " order by created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workshops: %w", err)
	}
	defer rows.Close()

	var out []*Workshop
	for rows.Next() {
		w, err := scanWorkshop(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Decide updates a row only while it is still pending, so the database
// enforces terminal-state immutability regardless of racing callers.
func (s *PGStore) Decide(ctx context.Context, id string, d Decision) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`update workshops
		 set status = $1, approved_by = $2, decided_at = $3, reject_reason = $4
		 where id = $5 and status = 'pending'`,
		string(d.Status), d.ActorID, d.DecidedAt, d.Reason, id,
	)
	if err != nil {
		return false, fmt.Errorf("decide workshop: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("decide workshop: rows affected: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkshop(row rowScanner) (*Workshop, error) {
	var (
		w          Workshop
		status     string
		approvedBy sql.NullString
		decidedAt  sql.NullTime
		reason     sql.NullString
	)
	err := row.Scan(&w.ID, &w.Title, &w.Description, &w.SubmitterID,
		&status, &approvedBy, &decidedAt, &reason, &w.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan workshop: %w", err)
	}
	w.Status = Status(status)
	if approvedBy.Valid {
		w.ApprovedBy = &approvedBy.String
	}
	if decidedAt.Valid {
		t := decidedAt.Time.UTC()
		w.DecidedAt = &t
	}
	if reason.Valid {
		w.RejectReason = reason.String
	}
	return &w, nil
}
