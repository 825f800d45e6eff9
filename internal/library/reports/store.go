package reports

import (
	"context"
	"database/sql"
	"time"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) GetOverall(ctx context.Context, now time.Time) (OverallReport, error) {
	const q = `
	SELECT
		COUNT(*),
		COALESCE(SUM(status IN ('borrowed','overdue')), 0),
		COALESCE(SUM(status = 'returned'), 0),
		COALESCE(SUM(status IN ('borrowed','overdue') AND due_date < ?), 0),
		COALESCE(SUM(fine), 0)
	FROM borrowings`
	var r OverallReport
	if err := s.db.QueryRowContext(ctx, q, now).Scan(
		&r.Total, &r.Active, &r.Returned, &r.Overdue, &r.TotalFines,
	); err != nil {
		return OverallReport{}, err
	}
	return r, nil
}

// 貸出回数の多い書籍。集計はSQL側で行う
func (s *Store) GetPopularBooks(ctx context.Context, limit int) ([]PopularBook, error) {
	const q = `
	SELECT b.book_id, b.title, b.author, COUNT(*) AS borrow_count, b.available
	FROM borrowings br
	JOIN books b ON b.book_id = br.book_id
	GROUP BY b.book_id, b.title, b.author, b.available
	ORDER BY borrow_count DESC, b.title ASC
	LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PopularBook{}
	for rows.Next() {
		var p PopularBook
		if err := rows.Scan(&p.BookID, &p.Title, &p.Author, &p.BorrowCount, &p.Available); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetActiveMembers(ctx context.Context, limit int) ([]ActiveMember, error) {
	const q = `
	SELECT m.member_id, m.name, m.email, COUNT(*) AS active_borrowings
	FROM borrowings br
	JOIN members m ON m.member_id = br.member_id
	WHERE br.status IN ('borrowed','overdue')
	GROUP BY m.member_id, m.name, m.email
	ORDER BY active_borrowings DESC, m.name ASC
	LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ActiveMember{}
	for rows.Next() {
		var a ActiveMember
		if err := rows.Scan(&a.MemberID, &a.Name, &a.Email, &a.ActiveBorrowings); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// 月別集計。from以降のborrow_dateをUTCの月で束ねる
func (s *Store) GetMonthly(ctx context.Context, from time.Time) ([]MonthlyStat, error) {
	const q = `
	SELECT
		DATE_FORMAT(borrow_date, '%Y-%m') AS month,
		COUNT(*),
		COALESCE(SUM(status = 'returned'), 0)
	FROM borrowings
	WHERE borrow_date >= ?
	GROUP BY month
	ORDER BY month DESC`
	rows, err := s.db.QueryContext(ctx, q, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MonthlyStat{}
	for rows.Next() {
		var m MonthlyStat
		if err := rows.Scan(&m.Month, &m.Borrowings, &m.Returns); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) ListForExport(ctx context.Context) ([]ExportRow, error) {
	const q = `
	SELECT
		br.borrowing_id, b.title, m.member_code, m.name,
		br.borrow_date, br.due_date, br.return_date, br.status, br.fine
	FROM borrowings br
	JOIN books b ON b.book_id = br.book_id
	JOIN members m ON m.member_id = br.member_id
	ORDER BY br.borrow_date DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ExportRow{}
	for rows.Next() {
		var r ExportRow
		if err := rows.Scan(
			&r.BorrowingID, &r.BookTitle, &r.MemberCode, &r.MemberName,
			&r.BorrowDate, &r.DueDate, &r.ReturnDate, &r.Status, &r.Fine,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
