package activitylog

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

type DBTX interface {
	ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, q string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, q string, args ...any) *sql.Row
}

type Store struct{ db DBTX }

func NewStore(db DBTX) *Store { return &Store{db: db} }

func (s *Store) Insert(ctx context.Context, e *Entry) error {
	const q = `
	INSERT INTO activity_logs
	(admin_id, admin_name, action, entity_type, entity_id, entity_name, details, ip_address, user_agent, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, UTC_TIMESTAMP(6))`

	res, err := s.db.ExecContext(ctx, q,
		e.AdminID, e.AdminName, e.Action, e.EntityType, e.EntityID, e.EntityName,
		e.Details, e.IPAddress, e.UserAgent,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	e.LogID = uint64(id)
	return nil
}

// List: 条件に応じて動的WHERE + ORDER + LIMIT
func (s *Store) List(ctx context.Context, f Filter) ([]Entry, error) {
	sb := strings.Builder{}
	sb.WriteString(`
	SELECT log_id, admin_id, admin_name, action, entity_type, entity_id, entity_name,
	       details, ip_address, user_agent, created_at
	FROM activity_logs
	WHERE 1=1`)

	args := []any{}
	if f.AdminID != nil {
		sb.WriteString(` AND admin_id = ?`)
		args = append(args, *f.AdminID)
	}
	if f.Action != nil {
		sb.WriteString(` AND action = ?`)
		args = append(args, *f.Action)
	}
	if f.EntityType != nil {
		sb.WriteString(` AND entity_type = ?`)
		args = append(args, *f.EntityType)
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	sb.WriteString(` ORDER BY created_at DESC LIMIT ?`)
	args = append(args, f.Limit)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.LogID, &e.AdminID, &e.AdminName, &e.Action, &e.EntityType, &e.EntityID,
			&e.EntityName, &e.Details, &e.IPAddress, &e.UserAgent, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteBefore: 保持期限を過ぎたログの削除
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM activity_logs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
