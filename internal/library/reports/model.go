package reports

import "time"

type OverallReport struct {
	Total      int64 `json:"total"`
	Active     int64 `json:"active"`
	Returned   int64 `json:"returned"`
	Overdue    int64 `json:"overdue"`
	TotalFines int64 `json:"total_fines"`
}

type PopularBook struct {
	BookID      string `json:"book_id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	BorrowCount int64  `json:"borrow_count"`
	Available   int    `json:"available"`
}

type ActiveMember struct {
	MemberID         string  `json:"member_id"`
	Name             string  `json:"name"`
	Email            *string `json:"email,omitempty"`
	ActiveBorrowings int64   `json:"active_borrowings"`
}

// Month は "2006-01" 形式
type MonthlyStat struct {
	Month      string `json:"month"`
	Borrowings int64  `json:"borrowings"`
	Returns    int64  `json:"returns"`
}

// CSVエクスポート用の1行
type ExportRow struct {
	BorrowingID string
	BookTitle   string
	MemberCode  string
	MemberName  string
	BorrowDate  time.Time
	DueDate     time.Time
	ReturnDate  *time.Time
	Status      string
	Fine        int64
}
