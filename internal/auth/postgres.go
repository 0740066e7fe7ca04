package auth

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

var _ UserStore = (*PGStore)(nil)

// PGStore implements UserStore using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const userColumns = `id, username, email, password_hash, full_name, user_type,
	is_verified, is_active, domain_id, hr_id, profile_image, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, u *User) error {
	_, err := s.db.ExecContext(ctx,
		`insert into users(id, username, email, password_hash, full_name, user_type,
		 is_verified, is_active, domain_id, hr_id, profile_image, created_at, updated_at)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FullName, u.UserType,
		u.Verified, u.Active, u.DomainID, u.HRID, u.ProfileImage, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *PGStore) Find(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id=$1`, id)
	return scanUser(row)
}

func (s *PGStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where email=$1`, strings.ToLower(email))
	return scanUser(row)
}

func (s *PGStore) Deactivate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`update users set is_active=false, updated_at=$2 where id=$1`, id, time.Now().UTC())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*User, error) {
	sets := []string{"updated_at=$2"}
	args := []any{id, time.Now().UTC()}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+"=$"+strconv.Itoa(len(args)))
	}
	if upd.FullName != nil {
		add("full_name", strings.TrimSpace(*upd.FullName))
	}
	if upd.ProfileImage != nil {
		add("profile_image", strings.TrimSpace(*upd.ProfileImage))
	}
	if upd.Verified != nil {
		add("is_verified", *upd.Verified)
	}
	if upd.DomainID != nil {
		add("domain_id", nullableString(*upd.DomainID))
	}
	if upd.HRID != nil {
		add("hr_id", nullableString(*upd.HRID))
	}
	res, err := s.db.ExecContext(ctx,
		`update users set `+strings.Join(sets, ", ")+` where id=$1`, args...)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.Find(ctx, id)
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		u        User
		domainID sql.NullString
		hrID     sql.NullString
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName,
		&u.UserType, &u.Verified, &u.Active, &domainID, &hrID, &u.ProfileImage,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if domainID.Valid {
		u.DomainID = &domainID.String
	}
	if hrID.Valid {
		u.HRID = &hrID.String
	}
	return &u, nil
}

func nullableString(v string) any {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return v
}

// isUniqueViolation reports whether err is a postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
