package ebooks

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

type Service struct {
	store *Store
	logs  *activitylog.Service
}

func NewService(conn *sql.DB, logs *activitylog.Service) *Service {
	return &Service{store: NewStore(conn), logs: logs}
}

func (s *Service) Create(ctx context.Context, req CreateEbookRequest, adminID, adminName string) (*Ebook, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Author) == "" ||
		strings.TrimSpace(req.Category) == "" || strings.TrimSpace(req.PDFPath) == "" {
		return nil, ErrInvalid("title, author, category, pdf_path are required")
	}
	if req.FileSize <= 0 {
		return nil, ErrInvalid("file_size must be > 0")
	}

	e := &Ebook{
		EbookID:       ulid.Make().String(),
		Title:         textutil.Clean(req.Title),
		Author:        textutil.Clean(req.Author),
		Category:      textutil.Clean(req.Category),
		ISBN:          textutil.CleanPtr(req.ISBN),
		PublishedYear: req.PublishedYear,
		Publisher:     textutil.CleanPtr(req.Publisher),
		Description:   req.Description,
		CoverImage:    req.CoverImage,
		PDFPath:       strings.TrimSpace(req.PDFPath),
		FileSize:      req.FileSize,
	}

	if err := s.store.Insert(ctx, e); err != nil {
		if db.IsDupKey(err) {
			return nil, ErrConflict("isbn already exists")
		}
		return nil, err
	}

	s.record(ctx, activitylog.ActionCreate, e, adminID, adminName,
		fmt.Sprintf("File size: %d bytes", e.FileSize))

	return s.store.GetByID(ctx, e.EbookID)
}

func (s *Service) Get(ctx context.Context, ebookID string) (*Ebook, error) {
	return s.store.GetByID(ctx, ebookID)
}

func (s *Service) List(ctx context.Context, f SearchQuery, p Page) (*ListResponse, error) {
	items, total, err := s.store.List(ctx, f, p)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Ebook{}
	}
	return &ListResponse{Items: items, Total: total}, nil
}

func (s *Service) Update(ctx context.Context, ebookID string, req UpdateEbookRequest, adminID, adminName string) (*Ebook, error) {
	e, err := s.store.GetByID(ctx, ebookID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		e.Title = textutil.Clean(*req.Title)
	}
	if req.Author != nil {
		e.Author = textutil.Clean(*req.Author)
	}
	if req.Category != nil {
		e.Category = textutil.Clean(*req.Category)
	}
	if req.ISBN != nil {
		e.ISBN = textutil.CleanPtr(req.ISBN)
	}
	if req.PublishedYear != nil {
		e.PublishedYear = req.PublishedYear
	}
	if req.Publisher != nil {
		e.Publisher = textutil.CleanPtr(req.Publisher)
	}
	if req.Description != nil {
		e.Description = req.Description
	}
	if req.CoverImage != nil {
		e.CoverImage = req.CoverImage
	}

	if err := s.store.Update(ctx, e); err != nil {
		if db.IsDupKey(err) {
			return nil, ErrConflict("isbn already exists")
		}
		return nil, err
	}

	s.record(ctx, activitylog.ActionUpdate, e, adminID, adminName, "Updated e-book metadata")

	return s.store.GetByID(ctx, ebookID)
}

func (s *Service) Delete(ctx context.Context, ebookID string, adminID, adminName string) error {
	e, err := s.store.GetByID(ctx, ebookID)
	if err != nil {
		return err
	}

	n, err := s.store.Delete(ctx, ebookID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound("ebook not found")
	}

	s.record(ctx, activitylog.ActionDelete, e, adminID, adminName,
		fmt.Sprintf("File: %s", e.PDFPath))
	return nil
}

// View: 閲覧カウントを加算しPDFパスを返す。閲覧は監査ログ対象外。
func (s *Service) View(ctx context.Context, ebookID string) (*ViewResponse, error) {
	path, views, err := s.store.IncrementViews(ctx, ebookID)
	if err != nil {
		return nil, err
	}
	return &ViewResponse{PDFPath: path, TotalViews: views}, nil
}

func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	return s.store.GetStats(ctx)
}

func (s *Service) record(ctx context.Context, action string, e *Ebook, adminID, adminName, details string) {
	if s.logs == nil {
		return
	}
	entry := activitylog.Entry{
		AdminName:  adminName,
		Action:     action,
		EntityType: "ebook",
		EntityID:   e.EbookID,
		EntityName: e.Title,
	}
	if adminID != "" {
		entry.AdminID = &adminID
	}
	if details != "" {
		entry.Details = &details
	}
	if err := s.logs.Record(ctx, entry); err != nil {
		log.Printf("[WARN] activity log write failed: %v", err)
	}
}
