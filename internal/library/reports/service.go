package reports

import (
	"context"
	"database/sql"
	"time"

	"LIBRIS-backend/internal/library/books"
	"LIBRIS-backend/internal/library/borrowings"
	"LIBRIS-backend/internal/library/members"
)

type Service struct {
	store      *Store
	books      *books.Service
	members    *members.Service
	borrowings *borrowings.Service
}

func NewService(conn *sql.DB, bk *books.Service, mb *members.Service, br *borrowings.Service) *Service {
	return &Service{store: NewStore(conn), books: bk, members: mb, borrowings: br}
}

func (s *Service) Overall(ctx context.Context) (OverallReport, error) {
	return s.store.GetOverall(ctx, time.Now())
}

func (s *Service) PopularBooks(ctx context.Context, limit int) ([]PopularBook, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.store.GetPopularBooks(ctx, limit)
}

func (s *Service) ActiveMembers(ctx context.Context, limit int) ([]ActiveMember, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.store.GetActiveMembers(ctx, limit)
}

func (s *Service) Monthly(ctx context.Context, months int) ([]MonthlyStat, error) {
	if months <= 0 || months > 36 {
		months = 6
	}
	// 今月を含む直近nヶ月（月初で切る）
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(months - 1), 0)
	return s.store.GetMonthly(ctx, from)
}

// CombinedStats: ダッシュボード用。各ドメインの統計をまとめて返す
type CombinedStats struct {
	Books      books.Stats      `json:"books"`
	Members    members.Stats    `json:"members"`
	Borrowings borrowings.Stats `json:"borrowings"`
}

func (s *Service) Stats(ctx context.Context) (*CombinedStats, error) {
	bk, err := s.books.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	mb, err := s.members.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	br, err := s.borrowings.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	return &CombinedStats{Books: bk, Members: mb, Borrowings: br}, nil
}

func (s *Service) ExportBorrowingsCSV(ctx context.Context) ([]byte, error) {
	rows, err := s.store.ListForExport(ctx)
	if err != nil {
		return nil, err
	}
	return EncodeCSV(rows)
}
