package members

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
	db                  *sql.DB
	store               *Store
	logs                *activitylog.Service
	maxActiveBorrowings int
}

func NewService(conn *sql.DB, logs *activitylog.Service, maxActiveBorrowings int) *Service {
	if maxActiveBorrowings <= 0 {
		maxActiveBorrowings = 5
	}
	return &Service{db: conn, store: NewStore(conn), logs: logs, maxActiveBorrowings: maxActiveBorrowings}
}

func (s *Service) Create(ctx context.Context, req CreateMemberRequest, adminID, adminName string) (*MemberResponse, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.MemberCode) == "" {
		return nil, ErrInvalid("name and member_code are required")
	}

	m := &Member{
		MemberID:   ulid.Make().String(),
		MemberCode: strings.TrimSpace(req.MemberCode),
		Name:       textutil.Clean(req.Name),
		Email:      textutil.CleanPtr(req.Email),
		Phone:      textutil.CleanPtr(req.Phone),
		Address:    textutil.CleanPtr(req.Address),
		Status:     StatusActive,
	}

	if err := s.store.Insert(ctx, m); err != nil {
		if db.IsDupKey(err) {
			return nil, ErrConflict("member_code or email already exists")
		}
		return nil, err
	}

	s.record(ctx, activitylog.ActionCreate, m, adminID, adminName,
		fmt.Sprintf("Member code: %s", m.MemberCode))

	out, err := s.store.GetByID(ctx, m.MemberID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(out)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, memberID string) (*MemberResponse, error) {
	m, err := s.store.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(m)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, f SearchQuery, p Page) (*ListResponse, error) {
	items, total, err := s.store.List(ctx, f, p)
	if err != nil {
		return nil, err
	}
	out := ListResponse{Items: make([]MemberResponse, 0, len(items)), Total: total}
	for i := range items {
		out.Items = append(out.Items, toResponse(&items[i]))
	}
	return &out, nil
}

func (s *Service) Update(ctx context.Context, memberID string, req UpdateMemberRequest, adminID, adminName string) (*MemberResponse, error) {
	m, err := s.store.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		m.Name = textutil.Clean(*req.Name)
	}
	if req.Email != nil {
		m.Email = textutil.CleanPtr(req.Email)
	}
	if req.Phone != nil {
		m.Phone = textutil.CleanPtr(req.Phone)
	}
	if req.Address != nil {
		m.Address = textutil.CleanPtr(req.Address)
	}
	if req.Status != nil {
		if *req.Status != StatusActive && *req.Status != StatusSuspended {
			return nil, ErrInvalid("status must be active or suspended")
		}
		m.Status = *req.Status
	}

	n, err := s.store.Update(ctx, m)
	if err != nil {
		if db.IsDupKey(err) {
			return nil, ErrConflict("email already exists")
		}
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound("member not found")
	}

	s.record(ctx, activitylog.ActionUpdate, m, adminID, adminName,
		fmt.Sprintf("Member code: %s, Status: %s", m.MemberCode, m.Status))

	resp := toResponse(m)
	return &resp, nil
}

// Suspend / Activate: 利用停止・再開は専用エンドポイントで扱う
func (s *Service) SetStatus(ctx context.Context, memberID, status string, adminID, adminName string) (*MemberResponse, error) {
	return s.Update(ctx, memberID, UpdateMemberRequest{Status: &status}, adminID, adminName)
}

func (s *Service) Delete(ctx context.Context, memberID string, adminID, adminName string) error {
	m, err := s.store.GetByID(ctx, memberID)
	if err != nil {
		return err
	}

	active, err := s.store.CountActiveBorrowings(ctx, memberID)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrConflict("cannot delete member with active borrowings")
	}

	n, err := s.store.Delete(ctx, memberID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound("member not found")
	}

	s.record(ctx, activitylog.ActionDelete, m, adminID, adminName,
		fmt.Sprintf("Member code: %s", m.MemberCode))
	return nil
}

// CanBorrow: 貸出可否の照会（判定本体は CheckEligibility）
func (s *Service) CanBorrow(ctx context.Context, memberID string) (EligibilityResult, error) {
	m, err := s.store.GetByID(ctx, memberID)
	if err != nil {
		var api *APIError
		if errors.As(err, &api) && api.Code == CodeNotFound {
			return CheckEligibility(false, "", 0, s.maxActiveBorrowings), nil
		}
		return EligibilityResult{}, err
	}

	active, err := s.store.CountActiveBorrowings(ctx, memberID)
	if err != nil {
		return EligibilityResult{}, err
	}
	return CheckEligibility(true, m.Status, active, s.maxActiveBorrowings), nil
}

func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	return s.store.GetStats(ctx)
}

func (s *Service) record(ctx context.Context, action string, m *Member, adminID, adminName, details string) {
	if s.logs == nil {
		return
	}
	e := activitylog.Entry{
		AdminName:  adminName,
		Action:     action,
		EntityType: "member",
		EntityID:   m.MemberID,
		EntityName: m.Name,
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
