package members

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

const memberCols = `member_id, member_code, name, email, phone, address, status, created_at, updated_at`

func scanMember(scan func(dest ...any) error) (*Member, error) {
	var m Member
	err := scan(
		&m.MemberID, &m.MemberCode, &m.Name, &m.Email, &m.Phone, &m.Address,
		&m.Status, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) GetByID(ctx context.Context, memberID string) (*Member, error) {
	q := `SELECT ` + memberCols + ` FROM members WHERE member_id = ?`
	m, err := scanMember(s.db.QueryRowContext(ctx, q, memberID).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound("member not found")
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) GetByCode(ctx context.Context, code string) (*Member, error) {
	q := `SELECT ` + memberCols + ` FROM members WHERE member_code = ?`
	m, err := scanMember(s.db.QueryRowContext(ctx, q, code).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) Insert(ctx context.Context, m *Member) error {
	const q = `
	INSERT INTO members (member_id, member_code, name, email, phone, address, status, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, NOW(6), NOW(6))`
	_, err := s.db.ExecContext(ctx, q,
		m.MemberID, m.MemberCode, m.Name, m.Email, m.Phone, m.Address, m.Status,
	)
	return err
}

func (s *Store) Update(ctx context.Context, m *Member) (int64, error) {
	const q = `
	UPDATE members SET name = ?, email = ?, phone = ?, address = ?, status = ?, updated_at = NOW(6)
	WHERE member_id = ?`
	res, err := s.db.ExecContext(ctx, q, m.Name, m.Email, m.Phone, m.Address, m.Status, m.MemberID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Delete(ctx context.Context, memberID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM members WHERE member_id = ?`, memberID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountActiveBorrowings: 未返却（borrowed / overdue）の貸出件数。
// overdue スイープの実行有無で貸出可否が変わらないよう、両状態を数える。
func (s *Store) CountActiveBorrowings(ctx context.Context, memberID string) (int, error) {
	const q = `SELECT COUNT(*) FROM borrowings WHERE member_id = ? AND status IN ('borrowed','overdue')`
	var n int
	if err := s.db.QueryRowContext(ctx, q, memberID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) List(ctx context.Context, f SearchQuery, p Page) ([]Member, int64, error) {
	where := strings.Builder{}
	where.WriteString(` WHERE 1=1`)
	args := []any{}

	if f.Keyword != "" {
		where.WriteString(` AND (name LIKE ? OR member_code LIKE ? OR email LIKE ?)`)
		kw := "%" + f.Keyword + "%"
		args = append(args, kw, kw, kw)
	}
	if f.Status != nil {
		where.WriteString(` AND status = ?`)
		args = append(args, *f.Status)
	}

	order := "ASC" // 会員一覧は名前昇順が既定
	if strings.ToLower(p.Order) == "desc" {
		order = "DESC"
	}
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	q := fmt.Sprintf(`SELECT `+memberCols+` FROM members%s ORDER BY name %s LIMIT ? OFFSET ?`,
		where.String(), order)
	rows, err := s.db.QueryContext(ctx, q, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		m, err := scanMember(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM members`+where.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	const q = `
	SELECT COUNT(*),
	       COALESCE(SUM(status = 'active'), 0),
	       COALESCE(SUM(status = 'suspended'), 0)
	FROM members`
	var st Stats
	if err := s.db.QueryRowContext(ctx, q).Scan(&st.TotalMembers, &st.ActiveMembers, &st.SuspendedMembers); err != nil {
		return Stats{}, err
	}
	return st, nil
}
