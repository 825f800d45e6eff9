package books

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

const bookCols = `book_id, title, author, category, isbn, stock, available,
	published_year, publisher, description, cover_image, created_at, updated_at`

func scanBook(scan func(dest ...any) error) (*Book, error) {
	var b Book
	err := scan(
		&b.BookID, &b.Title, &b.Author, &b.Category, &b.ISBN, &b.Stock, &b.Available,
		&b.PublishedYear, &b.Publisher, &b.Description, &b.CoverImage, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) GetByID(ctx context.Context, bookID string) (*Book, error) {
	q := `SELECT ` + bookCols + ` FROM books WHERE book_id = ?`
	b, err := scanBook(s.db.QueryRowContext(ctx, q, bookID).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound("book not found")
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) GetByISBN(ctx context.Context, isbn string) (*Book, error) {
	q := `SELECT ` + bookCols + ` FROM books WHERE isbn = ?`
	b, err := scanBook(s.db.QueryRowContext(ctx, q, isbn).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) Insert(ctx context.Context, b *Book) error {
	const q = `
	INSERT INTO books
	(book_id, title, author, category, isbn, stock, available,
	 published_year, publisher, description, cover_image, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(6), NOW(6))`
	_, err := s.db.ExecContext(ctx, q,
		b.BookID, b.Title, b.Author, b.Category, b.ISBN, b.Stock, b.Available,
		b.PublishedYear, b.Publisher, b.Description, b.CoverImage,
	)
	return err
}

// UpdateWithResize: 書誌情報の更新。stock 変更時は行ロックを取り、
// 貸出中冊数を維持したまま available を再計算する。
func (s *Store) UpdateWithResize(ctx context.Context, bookID string, apply func(b *Book)) (*Book, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	q := `SELECT ` + bookCols + ` FROM books WHERE book_id = ? FOR UPDATE`
	b, err := scanBook(tx.QueryRowContext(ctx, q, bookID).Scan)
	if err == sql.ErrNoRows {
		err = ErrNotFound("book not found")
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	oldStock, oldAvailable := b.Stock, b.Available
	apply(b)
	if b.Stock != oldStock {
		b.Available = ResizeAvailable(oldStock, oldAvailable, b.Stock)
	}

	const uq = `
	UPDATE books SET title = ?, author = ?, category = ?, isbn = ?, stock = ?, available = ?,
	 published_year = ?, publisher = ?, description = ?, cover_image = ?, updated_at = NOW(6)
	WHERE book_id = ?`
	_, err = tx.ExecContext(ctx, uq,
		b.Title, b.Author, b.Category, b.ISBN, b.Stock, b.Available,
		b.PublishedYear, b.Publisher, b.Description, b.CoverImage, b.BookID,
	)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) Delete(ctx context.Context, bookID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE book_id = ?`, bookID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountActiveBorrowings: 未返却（borrowed / overdue）の貸出件数
func (s *Store) CountActiveBorrowings(ctx context.Context, bookID string) (int, error) {
	const q = `SELECT COUNT(*) FROM borrowings WHERE book_id = ? AND status IN ('borrowed','overdue')`
	var n int
	if err := s.db.QueryRowContext(ctx, q, bookID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) List(ctx context.Context, f SearchQuery, p Page) ([]Book, int64, error) {
	where := strings.Builder{}
	where.WriteString(` WHERE 1=1`)
	args := []any{}

	if f.Keyword != "" {
		where.WriteString(` AND (title LIKE ? OR author LIKE ? OR isbn LIKE ?)`)
		kw := "%" + f.Keyword + "%"
		args = append(args, kw, kw, kw)
	}
	if f.Category != nil {
		where.WriteString(` AND category = ?`)
		args = append(args, *f.Category)
	}
	if f.AvailableOnly {
		where.WriteString(` AND available > 0`)
	}

	order := "DESC"
	if strings.ToLower(p.Order) == "asc" {
		order = "ASC"
	}
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	q := fmt.Sprintf(`SELECT `+bookCols+` FROM books%s ORDER BY created_at %s LIMIT ? OFFSET ?`,
		where.String(), order)
	rows, err := s.db.QueryContext(ctx, q, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		b, err := scanBook(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`+where.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	const q = `SELECT COUNT(*), COALESCE(SUM(stock),0), COALESCE(SUM(available),0) FROM books`
	var st Stats
	if err := s.db.QueryRowContext(ctx, q).Scan(&st.TotalTitles, &st.TotalCopies, &st.AvailableCount); err != nil {
		return Stats{}, err
	}
	st.BorrowedCount = st.TotalCopies - st.AvailableCount
	return st, nil
}
