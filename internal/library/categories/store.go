package categories

import (
	"context"
	"database/sql"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// 紙書籍・電子書籍の両方を対象にカテゴリを重複なしで取得する
func (s *Store) ListDistinct(ctx context.Context) ([]string, error) {
	const q = `
	SELECT category FROM books
	UNION
	SELECT category FROM ebooks
	ORDER BY category ASC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
