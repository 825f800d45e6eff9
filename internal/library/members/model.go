package members

import "time"

const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// Member は members テーブルの1行を表す
type Member struct {
	MemberID   string // 内部ID（ULID）
	MemberCode string // 会員証番号（UNIQUE）
	Name       string
	Email      *string
	Phone      *string
	Address    *string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type SearchQuery struct {
	Keyword string // 氏名・会員証番号・メールの部分一致
	Status  *string
}

type Page struct {
	Limit  int
	Offset int
	Order  string
}

type Stats struct {
	TotalMembers     int64 `json:"total_members"`
	ActiveMembers    int64 `json:"active_members"`
	SuspendedMembers int64 `json:"suspended_members"`
}
