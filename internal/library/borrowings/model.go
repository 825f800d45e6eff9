package borrowings

import "time"

// 貸出状態。
// overdue は「borrowed かつ期限超過」の表示用ラベルで、
// 定期スイープが付け替えるだけの派生状態。返却は borrowed と同じ経路を通る。
const (
	StatusBorrowed = "borrowed"
	StatusReturned = "returned"
	StatusOverdue  = "overdue"
)

// Borrowing は borrowings テーブルの1行を表す
type Borrowing struct {
	BorrowingID string
	BookID      string
	MemberID    string
	BorrowDate  time.Time
	DueDate     time.Time
	ReturnDate  *time.Time
	Status      string
	Fine        int64
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive: 未返却（在庫を1冊占有している）か
func (b *Borrowing) IsActive() bool {
	return b.Status == StatusBorrowed || b.Status == StatusOverdue
}

// Row は一覧・詳細表示用に書誌・会員情報を結合した行
type Row struct {
	Borrowing
	BookTitle  string
	MemberCode string
	MemberName string
}

// BookInfo / MemberInfo: 貸出前チェックに必要な最小限の情報
type BookInfo struct {
	BookID    string
	Title     string
	Stock     int
	Available int
}

type MemberInfo struct {
	MemberID   string
	MemberCode string
	Name       string
	Status     string
}

// 一覧取得用の検索条件
type Filter struct {
	MemberID   *string
	BookID     *string
	Status     *string
	ActiveOnly bool
	From       *time.Time
	To         *time.Time
}

type Page struct {
	Limit  int
	Offset int
	Order  string // "asc" | "desc"（borrow_date）
}

type Stats struct {
	Total      int64 `json:"total"`
	Active     int64 `json:"active"`
	Overdue    int64 `json:"overdue"`
	Returned   int64 `json:"returned"`
	TotalFines int64 `json:"total_fines"`
}
