package activitylog

import (
	"context"
	"database/sql"
	"time"
)

// Service は監査ログの書き込み先（sink）。
// 業務処理はここへの書き込み失敗で失敗しない前提なので、
// 呼び出し側は err をログに残して握りつぶすこと。
type Service struct {
	store *Store
}

func NewService(conn *sql.DB) *Service {
	return &Service{store: NewStore(conn)}
}

func (s *Service) Record(ctx context.Context, e Entry) error {
	return s.store.Insert(ctx, &e)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Entry, error) {
	return s.store.List(ctx, f)
}

// Cleanup: daysToKeep 日より古いログを削除（既定90日）
func (s *Service) Cleanup(ctx context.Context, daysToKeep int) (int64, error) {
	if daysToKeep <= 0 {
		daysToKeep = 90
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -daysToKeep)
	return s.store.DeleteBefore(ctx, cutoff)
}
