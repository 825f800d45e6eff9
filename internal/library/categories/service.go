package categories

import (
	"context"
	"database/sql"
)

type Service struct {
	store *Store
}

func NewService(conn *sql.DB) *Service {
	return &Service{store: NewStore(conn)}
}

type ListResponse struct {
	Categories []string `json:"categories"`
}

func (s *Service) List(ctx context.Context) (*ListResponse, error) {
	cats, err := s.store.ListDistinct(ctx)
	if err != nil {
		return nil, err
	}
	return &ListResponse{Categories: cats}, nil
}
