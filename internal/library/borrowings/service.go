package borrowings

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/oklog/ulid/v2"

	"LIBRIS-backend/internal/activitylog"
	"LIBRIS-backend/internal/library/members"
)

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Recorder: 監査ログの書き込み先。
// 書き込み失敗は業務結果に影響させない（ログに残して握りつぶす）。
type Recorder interface {
	Record(ctx context.Context, e activitylog.Entry) error
}

// BorrowingStore: 貸出の永続化ポート。
// CreateBorrowing / FinalizeReturn は在庫増減を含めて1トランザクションで行い、
// 同一書籍への同時操作は書籍行単位で直列化されること（§ストア実装参照）。
type BorrowingStore interface {
	FindBook(ctx context.Context, bookID string) (*BookInfo, error)
	FindMember(ctx context.Context, memberID string) (*MemberInfo, error)
	CountActiveByMember(ctx context.Context, memberID string) (int, error)
	CreateBorrowing(ctx context.Context, b *Borrowing) error
	GetByID(ctx context.Context, borrowingID string) (*Row, error)
	FinalizeReturn(ctx context.Context, borrowingID string, returnDate time.Time, fine int64) error
	List(ctx context.Context, f Filter, p Page) ([]Row, int64, error)
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
	GetStats(ctx context.Context, now time.Time) (Stats, error)
}

// ===== ポリシー =====

// 既定値: 貸出14日・延滞金1000/日（IDR）・同時貸出5冊
type Policy struct {
	MaxBorrowDays       int
	FinePerDay          int64
	MaxActiveBorrowings int
}

func DefaultPolicy() Policy {
	return Policy{
		MaxBorrowDays:       14,
		FinePerDay:          1000,
		MaxActiveBorrowings: 5,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.MaxBorrowDays <= 0 {
		p.MaxBorrowDays = d.MaxBorrowDays
	}
	if p.FinePerDay <= 0 {
		p.FinePerDay = d.FinePerDay
	}
	if p.MaxActiveBorrowings <= 0 {
		p.MaxActiveBorrowings = d.MaxActiveBorrowings
	}
	return p
}

// ComputeFine: 延滞金の計算。
// 期限ちょうどは延滞なし。超過はミリ秒差の切り上げで日数換算する
// （1ミリ秒でも超過すれば1日分）。
func ComputeFine(now, dueDate time.Time, finePerDay int64) int64 {
	if !now.After(dueDate) {
		return 0
	}
	const dayMs = 24 * 60 * 60 * 1000
	lateMs := now.Sub(dueDate).Milliseconds()
	days := (lateMs + dayMs - 1) / dayMs
	return days * finePerDay
}

// ===== Service本体 =====

type Service struct {
	store    BorrowingStore
	recorder Recorder
	clock    Clock
	id       IDGen
	policy   Policy
}

func NewService(conn *sql.DB, recorder Recorder, policy Policy) *Service {
	return &Service{
		store:    NewStore(conn),
		recorder: recorder,
		clock:    realClock{},
		id:       ulidGen{},
		policy:   policy.withDefaults(),
	}
}

// NewServiceWith: ストア・時計・ID生成を差し替える（テスト用）
func NewServiceWith(store BorrowingStore, recorder Recorder, clock Clock, id IDGen, policy Policy) *Service {
	return &Service{
		store:    store,
		recorder: recorder,
		clock:    clock,
		id:       id,
		policy:   policy.withDefaults(),
	}
}

func (s *Service) Policy() Policy { return s.policy }

// 貸出登録。
// 検証はすべて状態変更の前に行い、レコード作成と在庫減算はストア側で
// 1トランザクションにまとめる。
func (s *Service) Create(ctx context.Context, req CreateBorrowingRequest, adminID, adminName string) (*BorrowingResponse, error) {
	if req.BookID == "" || req.MemberID == "" || req.DueDate == "" {
		return nil, ErrInvalid("book_id, member_id, due_date are required")
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, ErrInvalid("invalid due_date format, expected RFC3339 or YYYY-MM-DD")
	}

	book, err := s.store.FindBook(ctx, req.BookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrNotFound("book not found")
	}

	member, err := s.store.FindMember(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotFound("member not found")
	}

	if book.Available <= 0 {
		return nil, ErrBookUnavailable()
	}

	active, err := s.store.CountActiveByMember(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	elig := members.CheckEligibility(true, member.Status, active, s.policy.MaxActiveBorrowings)
	if !elig.CanBorrow {
		return nil, ErrIneligible(elig.Reason)
	}

	now := s.clock.Now()
	if !dueDate.After(now) {
		return nil, ErrInvalidDueDate("due date must be in the future")
	}
	// 期限上限はカレンダー日ではなくタイムスタンプの厳密比較
	//（日付境界で時刻依存の挙動になるが、既存仕様を維持する）
	maxDue := now.Add(time.Duration(s.policy.MaxBorrowDays) * 24 * time.Hour)
	if dueDate.After(maxDue) {
		return nil, ErrPeriodTooLong(s.policy.MaxBorrowDays)
	}

	idStr, err := s.id.New()
	if err != nil {
		return nil, err
	}

	b := &Borrowing{
		BorrowingID: idStr,
		BookID:      req.BookID,
		MemberID:    req.MemberID,
		BorrowDate:  now,
		DueDate:     dueDate,
		Status:      StatusBorrowed,
		Fine:        0,
		Notes:       req.Notes,
	}
	if err := s.store.CreateBorrowing(ctx, b); err != nil {
		return nil, err
	}

	s.record(ctx, activitylog.ActionBorrow, b.BorrowingID,
		fmt.Sprintf("%s - %s", book.Title, member.Name),
		fmt.Sprintf("Due: %s", dueDate.UTC().Format("2006-01-02")),
		adminID, adminName)

	row, err := s.store.GetByID(ctx, b.BorrowingID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrInternal("borrowing created but not found")
	}
	resp := toResponse(row)
	return &resp, nil
}

// 返却登録。2回目の返却は ALREADY_RETURNED で拒否し、在庫は増やさない。
func (s *Service) Return(ctx context.Context, borrowingID, adminID, adminName string) (*BorrowingResponse, error) {
	if borrowingID == "" {
		return nil, ErrInvalid("borrowing_id is required")
	}

	row, err := s.store.GetByID(ctx, borrowingID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound("borrowing not found")
	}
	if row.Status == StatusReturned {
		return nil, ErrAlreadyReturned()
	}

	now := s.clock.Now()
	fine := ComputeFine(now, row.DueDate, s.policy.FinePerDay)

	// overdue スイープの実行有無に関係なく、返却時に延滞を自前で再計算する
	if err := s.store.FinalizeReturn(ctx, borrowingID, now, fine); err != nil {
		return nil, err
	}

	fineText := "No fine"
	if fine > 0 {
		fineText = fmt.Sprintf("Fine: %d IDR", fine)
	}
	s.record(ctx, activitylog.ActionReturn, borrowingID,
		fmt.Sprintf("%s - %s", row.BookTitle, row.MemberName),
		fineText, adminID, adminName)

	out, err := s.store.GetByID(ctx, borrowingID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ErrInternal("borrowing updated but not found")
	}
	resp := toResponse(out)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, borrowingID string) (*BorrowingResponse, error) {
	row, err := s.store.GetByID(ctx, borrowingID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound("borrowing not found")
	}
	resp := toResponse(row)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, f Filter, p Page) (*ListResponse, error) {
	rows, total, err := s.store.List(ctx, f, p)
	if err != nil {
		return nil, err
	}
	out := ListResponse{Items: make([]BorrowingResponse, 0, len(rows)), Total: total}
	for i := range rows {
		out.Items = append(out.Items, toResponse(&rows[i]))
	}
	return &out, nil
}

// MarkOverdue: 期限超過した borrowed を overdue に付け替える定期処理。
// 表示・レポート用であり、在庫・返却処理には影響しない。
func (s *Service) MarkOverdue(ctx context.Context) (int64, error) {
	return s.store.MarkOverdue(ctx, s.clock.Now())
}

func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	return s.store.GetStats(ctx, s.clock.Now())
}

func (s *Service) record(ctx context.Context, action, entityID, entityName, details, adminID, adminName string) {
	if s.recorder == nil {
		return
	}
	e := activitylog.Entry{
		AdminName:  adminName,
		Action:     action,
		EntityType: "borrowing",
		EntityID:   entityID,
		EntityName: entityName,
	}
	if adminID != "" {
		e.AdminID = &adminID
	}
	if details != "" {
		e.Details = &details
	}
	if err := s.recorder.Record(ctx, e); err != nil {
		log.Printf("[WARN] activity log write failed: %v", err)
	}
}

func parseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
