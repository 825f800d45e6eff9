package books

import "time"

// Book は books テーブルの1行を表す。
// available は貸出未返却分を差し引いた在庫で、更新は原則 borrowings 側の
// トランザクションからのみ行う（ここでは蔵書数変更時の再計算のみ）。
type Book struct {
	BookID        string
	Title         string
	Author        string
	Category      string
	ISBN          *string
	Stock         int
	Available     int
	PublishedYear *int
	Publisher     *string
	Description   *string
	CoverImage    *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// 一覧取得用の検索条件
type SearchQuery struct {
	Keyword       string // タイトル・著者・ISBN の部分一致
	Category      *string
	AvailableOnly bool
}

type Page struct {
	Limit  int
	Offset int
	Order  string // "asc" | "desc"（created_at）
}

// Stats: 蔵書サマリ
type Stats struct {
	TotalTitles    int64 `json:"total_titles"`
	TotalCopies    int64 `json:"total_copies"`
	AvailableCount int64 `json:"available_count"`
	BorrowedCount  int64 `json:"borrowed_count"`
}
