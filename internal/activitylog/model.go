package activitylog

import "time"

// 操作種別・対象種別（原則この値のみ。CHECK制約はかけず表示用に留める）
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionBorrow = "borrow"
	ActionReturn = "return"
)

// Entry は activity_logs テーブルの1行を表す
type Entry struct {
	LogID      uint64
	AdminID    *string
	AdminName  string
	Action     string
	EntityType string
	EntityID   string
	EntityName string
	Details    *string
	IPAddress  *string
	UserAgent  *string
	CreatedAt  time.Time
}

// 一覧取得用の検索条件
type Filter struct {
	AdminID    *string
	Action     *string
	EntityType *string
	Limit      int
}
