package ebooks

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

const ebookCols = `
	ebook_id, title, author, category, isbn, published_year, publisher,
	description, cover_image, pdf_path, file_size, total_views, created_at, updated_at`

func scanEbook(scan func(dest ...any) error) (*Ebook, error) {
	var e Ebook
	err := scan(
		&e.EbookID, &e.Title, &e.Author, &e.Category, &e.ISBN, &e.PublishedYear,
		&e.Publisher, &e.Description, &e.CoverImage, &e.PDFPath, &e.FileSize,
		&e.TotalViews, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) GetByID(ctx context.Context, ebookID string) (*Ebook, error) {
	q := `SELECT` + ebookCols + ` FROM ebooks WHERE ebook_id = ?`
	e, err := scanEbook(s.db.QueryRowContext(ctx, q, ebookID).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("ebook not found")
		}
		return nil, err
	}
	return e, nil
}

func (s *Store) GetByISBN(ctx context.Context, isbn string) (*Ebook, error) {
	q := `SELECT` + ebookCols + ` FROM ebooks WHERE isbn = ?`
	e, err := scanEbook(s.db.QueryRowContext(ctx, q, isbn).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

func (s *Store) Insert(ctx context.Context, e *Ebook) error {
	const q = `
	INSERT INTO ebooks
	(ebook_id, title, author, category, isbn, published_year, publisher,
	 description, cover_image, pdf_path, file_size, total_views, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, NOW(6), NOW(6))`
	_, err := s.db.ExecContext(ctx, q,
		e.EbookID, e.Title, e.Author, e.Category, e.ISBN, e.PublishedYear,
		e.Publisher, e.Description, e.CoverImage, e.PDFPath, e.FileSize,
	)
	return err
}

func (s *Store) Update(ctx context.Context, e *Ebook) error {
	const q = `
	UPDATE ebooks
	SET title = ?, author = ?, category = ?, isbn = ?, published_year = ?,
	    publisher = ?, description = ?, cover_image = ?, updated_at = NOW(6)
	WHERE ebook_id = ?`
	res, err := s.db.ExecContext(ctx, q,
		e.Title, e.Author, e.Category, e.ISBN, e.PublishedYear,
		e.Publisher, e.Description, e.CoverImage, e.EbookID,
	)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrNotFound("ebook not found")
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, ebookID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ebooks WHERE ebook_id = ?`, ebookID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// IncrementViews: 閲覧カウントをアトミックに加算し、更新後の値とpdf_pathを返す
func (s *Store) IncrementViews(ctx context.Context, ebookID string) (pdfPath string, totalViews int64, err error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE ebooks SET total_views = total_views + 1 WHERE ebook_id = ?`, ebookID)
	if err != nil {
		return "", 0, err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return "", 0, ErrNotFound("ebook not found")
	}
	err = s.db.QueryRowContext(ctx,
		`SELECT pdf_path, total_views FROM ebooks WHERE ebook_id = ?`, ebookID).
		Scan(&pdfPath, &totalViews)
	if err != nil {
		return "", 0, err
	}
	return pdfPath, totalViews, nil
}

func (s *Store) List(ctx context.Context, f SearchQuery, p Page) ([]Ebook, int64, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT` + ebookCols + ` FROM ebooks WHERE 1=1`)

	args := []any{}
	if f.Keyword != "" {
		sb.WriteString(` AND (title LIKE ? OR author LIKE ? OR isbn LIKE ?)`)
		kw := "%" + f.Keyword + "%"
		args = append(args, kw, kw, kw)
	}
	if f.Category != nil {
		sb.WriteString(` AND category = ?`)
		args = append(args, *f.Category)
	}

	order := "DESC"
	if strings.ToLower(p.Order) == "asc" {
		order = "ASC"
	}
	sb.WriteString(fmt.Sprintf(` ORDER BY created_at %s`, order))
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	sb.WriteString(` LIMIT ? OFFSET ?`)
	args = append(args, p.Limit, p.Offset)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Ebook
	for rows.Next() {
		e, err := scanEbook(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	cb := strings.Builder{}
	cb.WriteString(`SELECT COUNT(*) FROM ebooks WHERE 1=1`)
	argsCnt := []any{}
	if f.Keyword != "" {
		cb.WriteString(` AND (title LIKE ? OR author LIKE ? OR isbn LIKE ?)`)
		kw := "%" + f.Keyword + "%"
		argsCnt = append(argsCnt, kw, kw, kw)
	}
	if f.Category != nil {
		cb.WriteString(` AND category = ?`)
		argsCnt = append(argsCnt, *f.Category)
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, cb.String(), argsCnt...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	st := Stats{ByCategory: map[string]int64{}}
	const q = `SELECT COUNT(*), COALESCE(SUM(file_size),0) FROM ebooks`
	if err := s.db.QueryRowContext(ctx, q).Scan(&st.TotalEbooks, &st.TotalFileSize); err != nil {
		return Stats{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM ebooks GROUP BY category`)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var cat string
		var n int64
		if err := rows.Scan(&cat, &n); err != nil {
			return Stats{}, err
		}
		st.ByCategory[cat] = n
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}
	return st, nil
}
