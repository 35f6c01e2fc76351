// Package pg backs the identity store with PostgreSQL through the pgx
// stdlib driver.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tidilihatim/avolship-sub011/internal/identity"
)

const pgErrUniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

var _ identity.Store = (*Store)(nil)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection pool (used by tests).
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

const userColumns = `id, email, name, password_hash, role, status, created_at, updated_at`

func (s *Store) Create(ctx context.Context, u *identity.User) error {
	if u == nil || strings.TrimSpace(u.ID) == "" {
		return errors.New("pg: user id is required")
	}
	email := strings.TrimSpace(strings.ToLower(u.Email))
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		insert into users(id, email, name, password_hash, role, status, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $7)
	`, u.ID, email, u.Name, u.PasswordHash,
		string(identity.NormalizeRole(string(u.Role))),
		string(identity.NormalizeStatus(string(u.Status))), now)
	if err != nil {
		if isUniqueViolation(err) {
			return identity.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*identity.User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where id = $1`, id)
	return scanUser(row)
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where email = $1`, email)
	return scanUser(row)
}

func (s *Store) List(ctx context.Context) ([]*identity.User, error) {
	rows, err := s.db.QueryContext(ctx, `select `+userColumns+` from users order by created_at asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*identity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status identity.Status) error {
	res, err := s.db.ExecContext(ctx, `
		update users set status = $2, updated_at = now() where id = $1
	`, id, string(identity.NormalizeStatus(string(status))))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return identity.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*identity.User, error) {
	var u identity.User
	var role, status string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &status, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, identity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = identity.NormalizeRole(role)
	u.Status = identity.NormalizeStatus(status)
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation
}
