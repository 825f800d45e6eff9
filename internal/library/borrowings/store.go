package borrowings

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

const rowCols = `
	br.borrowing_id, br.book_id, br.member_id, br.borrow_date, br.due_date,
	br.return_date, br.status, br.fine, br.notes, br.created_at, br.updated_at,
	b.title, m.member_code, m.name`

func scanRow(scan func(dest ...any) error) (*Row, error) {
	var r Row
	err := scan(
		&r.BorrowingID, &r.BookID, &r.MemberID, &r.BorrowDate, &r.DueDate,
		&r.ReturnDate, &r.Status, &r.Fine, &r.Notes, &r.CreatedAt, &r.UpdatedAt,
		&r.BookTitle, &r.MemberCode, &r.MemberName,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) FindBook(ctx context.Context, bookID string) (*BookInfo, error) {
	const q = `SELECT book_id, title, stock, available FROM books WHERE book_id = ?`
	var b BookInfo
	if err := s.db.QueryRowContext(ctx, q, bookID).Scan(&b.BookID, &b.Title, &b.Stock, &b.Available); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (s *Store) FindMember(ctx context.Context, memberID string) (*MemberInfo, error) {
	const q = `SELECT member_id, member_code, name, status FROM members WHERE member_id = ?`
	var m MemberInfo
	if err := s.db.QueryRowContext(ctx, q, memberID).Scan(&m.MemberID, &m.MemberCode, &m.Name, &m.Status); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// overdueスイープが走ったかどうかに依存しないよう、borrowed/overdue両方を数える
func (s *Store) CountActiveByMember(ctx context.Context, memberID string) (int, error) {
	const q = `SELECT COUNT(*) FROM borrowings WHERE member_id = ? AND status IN ('borrowed','overdue')`
	var n int
	if err := s.db.QueryRowContext(ctx, q, memberID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CreateBorrowing: 書籍行ロック→在庫チェック→減算→INSERT を1トランザクションで行う。
// Service層の事前チェック後に在庫が尽きていた場合は BOOK_UNAVAILABLE を返す。
func (s *Store) CreateBorrowing(ctx context.Context, b *Borrowing) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// 1. 書籍行をロック
	var available int
	const lockQ = `SELECT available FROM books WHERE book_id = ? FOR UPDATE`
	if err = tx.QueryRowContext(ctx, lockQ, b.BookID).Scan(&available); err != nil {
		if err == sql.ErrNoRows {
			err = ErrNotFound("book not found")
		}
		return err
	}

	// 2. 在庫チェック（同時実行で先を越された場合）
	if available <= 0 {
		err = ErrBookUnavailable()
		return err
	}

	// 3. 在庫減算
	const decQ = `UPDATE books SET available = available - 1 WHERE book_id = ?`
	if _, err = tx.ExecContext(ctx, decQ, b.BookID); err != nil {
		return err
	}

	// 4. 貸出INSERT
	const insQ = `
	INSERT INTO borrowings
	(borrowing_id, book_id, member_id, borrow_date, due_date, status, fine, notes, created_at, updated_at)
	VALUES
	(?, ?, ?, ?, ?, ?, 0, ?, NOW(6), NOW(6))`
	if _, err = tx.ExecContext(ctx, insQ,
		b.BorrowingID, b.BookID, b.MemberID, b.BorrowDate, b.DueDate, b.Status, b.Notes,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) GetByID(ctx context.Context, borrowingID string) (*Row, error) {
	q := `
	SELECT` + rowCols + `
	FROM borrowings br
	JOIN books b ON b.book_id = br.book_id
	JOIN members m ON m.member_id = br.member_id
	WHERE br.borrowing_id = ?`
	r, err := scanRow(s.db.QueryRowContext(ctx, q, borrowingID).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return r, nil
}

// FinalizeReturn: 返却確定。status <> 'returned' をガードにして二重返却を弾き、
// 在庫加算は同一トランザクション内で LEAST によりstockを超えないようクランプする。
func (s *Store) FinalizeReturn(ctx context.Context, borrowingID string, returnDate time.Time, fine int64) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// 1. 貸出行をロックして対象書籍を特定
	var bookID, status string
	const lockQ = `SELECT book_id, status FROM borrowings WHERE borrowing_id = ? FOR UPDATE`
	if err = tx.QueryRowContext(ctx, lockQ, borrowingID).Scan(&bookID, &status); err != nil {
		if err == sql.ErrNoRows {
			err = ErrNotFound("borrowing not found")
		}
		return err
	}
	if status == StatusReturned {
		err = ErrAlreadyReturned()
		return err
	}

	// 2. 返却確定
	const updQ = `
	UPDATE borrowings
	SET status = 'returned', return_date = ?, fine = ?, updated_at = NOW(6)
	WHERE borrowing_id = ? AND status <> 'returned'`
	res, err := tx.ExecContext(ctx, updQ, returnDate, fine, borrowingID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff != 1 {
		err = ErrAlreadyReturned()
		return err
	}

	// 3. 在庫加算（stock超過はクランプ）
	const incQ = `UPDATE books SET available = LEAST(available + 1, stock) WHERE book_id = ?`
	if _, err = tx.ExecContext(ctx, incQ, bookID); err != nil {
		return err
	}

	return tx.Commit()
}

func appendBorrowingFilters(sb *strings.Builder, args *[]any, f Filter) {
	if f.MemberID != nil {
		sb.WriteString(` AND br.member_id = ?`)
		*args = append(*args, *f.MemberID)
	}
	if f.BookID != nil {
		sb.WriteString(` AND br.book_id = ?`)
		*args = append(*args, *f.BookID)
	}
	if f.Status != nil {
		sb.WriteString(` AND br.status = ?`)
		*args = append(*args, *f.Status)
	}
	if f.ActiveOnly {
		sb.WriteString(` AND br.status IN ('borrowed','overdue')`)
	}
	if f.From != nil {
		sb.WriteString(` AND br.borrow_date >= ?`)
		*args = append(*args, *f.From)
	}
	if f.To != nil {
		sb.WriteString(` AND br.borrow_date < ?`)
		*args = append(*args, *f.To)
	}
}

func (s *Store) List(ctx context.Context, f Filter, p Page) ([]Row, int64, error) {
	sb := strings.Builder{}
	sb.WriteString(`
	SELECT` + rowCols + `
	FROM borrowings br
	JOIN books b ON b.book_id = br.book_id
	JOIN members m ON m.member_id = br.member_id
	WHERE 1=1`)

	args := []any{}
	appendBorrowingFilters(&sb, &args, f)

	order := "DESC"
	if strings.ToLower(p.Order) == "asc" {
		order = "ASC"
	}
	sb.WriteString(fmt.Sprintf(` ORDER BY br.borrow_date %s`, order))
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

	var out []Row
	for rows.Next() {
		r, err := scanRow(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	cb := strings.Builder{}
	cb.WriteString(`SELECT COUNT(*) FROM borrowings br WHERE 1=1`)
	argsCnt := []any{}
	appendBorrowingFilters(&cb, &argsCnt, f)

	var total int64
	if err := s.db.QueryRowContext(ctx, cb.String(), argsCnt...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// MarkOverdue: 期限超過の borrowed を overdue に付け替える。表示用のラベルであり、
// 返却・在庫の整合には関与しない。
func (s *Store) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	const q = `
	UPDATE borrowings
	SET status = 'overdue', updated_at = NOW(6)
	WHERE status = 'borrowed' AND due_date < ?`
	res, err := s.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// 延滞件数はステータスではなく due_date で数える（スイープ未実行でも正しい値を返すため）
func (s *Store) GetStats(ctx context.Context, now time.Time) (Stats, error) {
	const q = `
	SELECT
		COUNT(*),
		COALESCE(SUM(status IN ('borrowed','overdue')), 0),
		COALESCE(SUM(status IN ('borrowed','overdue') AND due_date < ?), 0),
		COALESCE(SUM(status = 'returned'), 0),
		COALESCE(SUM(fine), 0)
	FROM borrowings`
	var st Stats
	if err := s.db.QueryRowContext(ctx, q, now).Scan(&st.Total, &st.Active, &st.Overdue, &st.Returned, &st.TotalFines); err != nil {
		return Stats{}, err
	}
	return st, nil
}
