package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	ulid "github.com/oklog/ulid/v2"

	"LIBRIS-backend/internal/activitylog"
	"LIBRIS-backend/internal/platform/db"
	"LIBRIS-backend/internal/platform/textutil"
)

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		default:
			return 500
		}
	}
	return 500
}

// ResizeAvailable: 蔵書数変更時の available 再計算。
// 貸出中の冊数 (oldStock - oldAvailable) は変更をまたいで維持する。
func ResizeAvailable(oldStock, oldAvailable, newStock int) int {
	borrowed := oldStock - oldAvailable
	if a := newStock - borrowed; a > 0 {
		return a
	}
	return 0
}

type Service struct {
	db    *sql.DB
	store *Store
	logs  *activitylog.Service
}

func NewService(conn *sql.DB, logs *activitylog.Service) *Service {
	return &Service{db: conn, store: NewStore(conn), logs: logs}
}

func (s *Service) Create(ctx context.Context, req CreateBookRequest, adminID, adminName string) (*BookResponse, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Author) == "" ||
		strings.TrimSpace(req.Category) == "" {
		return nil, ErrInvalid("title, author, category are required")
	}
	if req.Stock < 0 {
		return nil, ErrInvalid("stock must be >= 0")
	}

	b := &Book{
		BookID:        ulid.Make().String(),
		Title:         textutil.Clean(req.Title),
		Author:        textutil.Clean(req.Author),
		Category:      textutil.Clean(req.Category),
		ISBN:          textutil.CleanPtr(req.ISBN),
		Stock:         req.Stock,
		Available:     req.Stock, // 新規登録時は全冊貸出可能
		PublishedYear: req.PublishedYear,
		Publisher:     textutil.CleanPtr(req.Publisher),
		Description:   req.Description,
		CoverImage:    req.CoverImage,
	}

	if err := s.store.Insert(ctx, b); err != nil {
		if db.IsDupKey(err) {
			return nil, ErrConflict("isbn already exists")
		}
		return nil, err
	}

	s.record(ctx, activitylog.ActionCreate, b, adminID, adminName,
		fmt.Sprintf("Stock: %d", b.Stock))

	out, err := s.store.GetByID(ctx, b.BookID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(out)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, bookID string) (*BookResponse, error) {
	b, err := s.store.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(b)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, f SearchQuery, p Page) (*ListResponse, error) {
	items, total, err := s.store.List(ctx, f, p)
	if err != nil {
		return nil, err
	}
	out := ListResponse{Items: make([]BookResponse, 0, len(items)), Total: total}
	for i := range items {
		out.Items = append(out.Items, toResponse(&items[i]))
	}
	return &out, nil
}

func (s *Service) Update(ctx context.Context, bookID string, req UpdateBookRequest, adminID, adminName string) (*BookResponse, error) {
	if req.Stock != nil && *req.Stock < 0 {
		return nil, ErrInvalid("stock must be >= 0")
	}

	var oldStock int
	b, err := s.store.UpdateWithResize(ctx, bookID, func(b *Book) {
		oldStock = b.Stock
		if req.Title != nil {
			b.Title = textutil.Clean(*req.Title)
		}
		if req.Author != nil {
			b.Author = textutil.Clean(*req.Author)
		}
		if req.Category != nil {
			b.Category = textutil.Clean(*req.Category)
		}
		if req.ISBN != nil {
			b.ISBN = textutil.CleanPtr(req.ISBN)
		}
		if req.Stock != nil {
			b.Stock = *req.Stock
		}
		if req.PublishedYear != nil {
			b.PublishedYear = req.PublishedYear
		}
		if req.Publisher != nil {
			b.Publisher = textutil.CleanPtr(req.Publisher)
		}
		if req.Description != nil {
			b.Description = req.Description
		}
		if req.CoverImage != nil {
			b.CoverImage = req.CoverImage
		}
	})
	if err != nil {
		if db.IsDupKey(err) {
			return nil, ErrConflict("isbn already exists")
		}
		return nil, err
	}

	s.record(ctx, activitylog.ActionUpdate, b, adminID, adminName,
		fmt.Sprintf("Stock: %d -> %d", oldStock, b.Stock))

	resp := toResponse(b)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, bookID string, adminID, adminName string) error {
	b, err := s.store.GetByID(ctx, bookID)
	if err != nil {
		return err
	}

	active, err := s.store.CountActiveBorrowings(ctx, bookID)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrConflict("cannot delete book with active borrowings")
	}

	n, err := s.store.Delete(ctx, bookID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound("book not found")
	}

	s.record(ctx, activitylog.ActionDelete, b, adminID, adminName, "")
	return nil
}

func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	return s.store.GetStats(ctx)
}

// record: 監査ログは best-effort。失敗しても業務処理は巻き戻さない。
func (s *Service) record(ctx context.Context, action string, b *Book, adminID, adminName, details string) {
	if s.logs == nil {
		return
	}
	e := activitylog.Entry{
		AdminName:  adminName,
		Action:     action,
		EntityType: "book",
		EntityID:   b.BookID,
		EntityName: b.Title,
	}
	if adminID != "" {
		e.AdminID = &adminID
	}
	if details != "" {
		e.Details = &details
	}
	if err := s.logs.Record(ctx, e); err != nil {
		log.Printf("[WARN] activity log write failed: %v", err)
	}
}
