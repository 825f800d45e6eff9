package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const (
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"

	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

type Admin struct {
	AdminID      string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type AdminStore interface {
	GetByID(ctx context.Context, adminID string) (*Admin, error)
	GetByEmail(ctx context.Context, email string) (*Admin, error)
	List(ctx context.Context) ([]Admin, error)
	Create(ctx context.Context, a *Admin) error
	Update(ctx context.Context, a *Admin) (int64, error)
	UpdatePassword(ctx context.Context, adminID, hash string) (int64, error)
	Delete(ctx context.Context, adminID string) (int64, error)
	CountByRole(ctx context.Context, role string) (int, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) AdminStore {
	return &Store{db: db}
}

const adminCols = `admin_id, name, email, password_hash, role, status, created_at, updated_at`

func scanAdmin(row *sql.Row) (*Admin, error) {
	var a Admin
	err := row.Scan(
		&a.AdminID,
		&a.Name,
		&a.Email,
		&a.PasswordHash,
		&a.Role,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) GetByID(ctx context.Context, adminID string) (*Admin, error) {
	q := `SELECT ` + adminCols + ` FROM admins WHERE admin_id = ? LIMIT 1`
	return scanAdmin(s.db.QueryRowContext(ctx, q, adminID))
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	q := `SELECT ` + adminCols + ` FROM admins WHERE email = ? LIMIT 1`
	return scanAdmin(s.db.QueryRowContext(ctx, q, email))
}

func (s *Store) List(ctx context.Context) ([]Admin, error) {
	q := `SELECT ` + adminCols + ` FROM admins ORDER BY created_at ASC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Admin
	for rows.Next() {
		var a Admin
		if err := rows.Scan(
			&a.AdminID, &a.Name, &a.Email, &a.PasswordHash,
			&a.Role, &a.Status, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, a *Admin) error {
	const q = `
INSERT INTO admins (admin_id, name, email, password_hash, role, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, NOW(6), NOW(6))`
	_, err := s.db.ExecContext(ctx, q, a.AdminID, a.Name, a.Email, a.PasswordHash, a.Role, a.Status)
	return err
}

func (s *Store) Update(ctx context.Context, a *Admin) (int64, error) {
	const q = `
UPDATE admins SET name = ?, email = ?, role = ?, status = ?, updated_at = NOW(6)
WHERE admin_id = ?`
	res, err := s.db.ExecContext(ctx, q, a.Name, a.Email, a.Role, a.Status, a.AdminID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) UpdatePassword(ctx context.Context, adminID, hash string) (int64, error) {
	const q = `UPDATE admins SET password_hash = ?, updated_at = NOW(6) WHERE admin_id = ?`
	res, err := s.db.ExecContext(ctx, q, hash, adminID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Delete(ctx context.Context, adminID string) (int64, error) {
	const q = `DELETE FROM admins WHERE admin_id = ?`
	res, err := s.db.ExecContext(ctx, q, adminID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) CountByRole(ctx context.Context, role string) (int, error) {
	const q = `SELECT COUNT(*) FROM admins WHERE role = ? AND status = 'ACTIVE'`
	var n int
	if err := s.db.QueryRowContext(ctx, q, role).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
