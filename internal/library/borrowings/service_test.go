package borrowings

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LIBRIS-backend/internal/library/members"
)

// ===== テスト用フェイク =====

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type seqIDGen struct{ n int }

func (g *seqIDGen) New() (string, error) {
	g.n++
	return fmt.Sprintf("01TEST%020d", g.n), nil
}

// fakeStore: ストアと同じ直列化保証をミューテックスで再現する
type fakeStore struct {
	mu         sync.Mutex
	books      map[string]*BookInfo
	memberInfo map[string]*MemberInfo
	rows       map[string]*Row
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		books:      map[string]*BookInfo{},
		memberInfo: map[string]*MemberInfo{},
		rows:       map[string]*Row{},
	}
}

func (f *fakeStore) FindBook(_ context.Context, id string) (*BookInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) FindMember(_ context.Context, id string) (*MemberInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.memberInfo[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (f *fakeStore) CountActiveByMember(_ context.Context, id string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.rows {
		if r.MemberID == id && r.IsActive() {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CreateBorrowing(_ context.Context, b *Borrowing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	book, ok := f.books[b.BookID]
	if !ok {
		return ErrNotFound("book not found")
	}
	if book.Available <= 0 {
		return ErrBookUnavailable()
	}
	book.Available--
	member := f.memberInfo[b.MemberID]
	f.rows[b.BorrowingID] = &Row{
		Borrowing:  *b,
		BookTitle:  book.Title,
		MemberCode: member.MemberCode,
		MemberName: member.Name,
	}
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) FinalizeReturn(_ context.Context, id string, returnDate time.Time, fine int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return ErrNotFound("borrowing not found")
	}
	if r.Status == StatusReturned {
		return ErrAlreadyReturned()
	}
	r.Status = StatusReturned
	r.ReturnDate = &returnDate
	r.Fine = fine
	book := f.books[r.BookID]
	if book.Available < book.Stock {
		book.Available++
	}
	return nil
}

func (f *fakeStore) List(_ context.Context, filter Filter, _ Page) ([]Row, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []Row{}
	for _, r := range f.rows {
		if filter.MemberID != nil && r.MemberID != *filter.MemberID {
			continue
		}
		if filter.ActiveOnly && !r.IsActive() {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.rows {
		if r.Status == StatusBorrowed && r.DueDate.Before(now) {
			r.Status = StatusOverdue
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) GetStats(_ context.Context, now time.Time) (Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := Stats{}
	for _, r := range f.rows {
		st.Total++
		if r.IsActive() {
			st.Active++
			if r.DueDate.Before(now) {
				st.Overdue++
			}
		}
		if r.Status == StatusReturned {
			st.Returned++
		}
		st.TotalFines += r.Fine
	}
	return st, nil
}

// ===== テストセットアップ =====

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestService(store *fakeStore) (*Service, *fakeClock) {
	clock := &fakeClock{now: testNow}
	svc := NewServiceWith(store, nil, clock, &seqIDGen{}, DefaultPolicy())
	return svc, clock
}

func seed(store *fakeStore, stock, available int) {
	store.books["book-1"] = &BookInfo{BookID: "book-1", Title: "Go言語入門", Stock: stock, Available: available}
	store.memberInfo["member-1"] = &MemberInfo{
		MemberID: "member-1", MemberCode: "M-0001", Name: "Tanaka", Status: members.StatusActive,
	}
}

func dueIn(days int) string {
	return testNow.AddDate(0, 0, days).Format(time.RFC3339)
}

// ===== Create =====

func TestCreate_Success(t *testing.T) {
	store := newFakeStore()
	seed(store, 3, 3)
	svc, _ := newTestService(store)

	res, err := svc.Create(context.Background(), CreateBorrowingRequest{
		BookID:   "book-1",
		MemberID: "member-1",
		DueDate:  dueIn(7),
	}, "admin-1", "admin")
	require.NoError(t, err)

	assert.Equal(t, StatusBorrowed, res.Status)
	assert.Equal(t, "Go言語入門", res.BookTitle)
	assert.Equal(t, "M-0001", res.MemberCode)
	assert.Equal(t, int64(0), res.Fine)
	assert.Equal(t, 2, store.books["book-1"].Available)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name     string
		req      CreateBorrowingRequest
		wantCode Code
	}{
		{
			name:     "missing fields",
			req:      CreateBorrowingRequest{BookID: "book-1"},
			wantCode: CodeInvalidArgument,
		},
		{
			name:     "bad due date format",
			req:      CreateBorrowingRequest{BookID: "book-1", MemberID: "member-1", DueDate: "June 8th"},
			wantCode: CodeInvalidArgument,
		},
		{
			name:     "unknown book",
			req:      CreateBorrowingRequest{BookID: "nope", MemberID: "member-1", DueDate: dueIn(7)},
			wantCode: CodeNotFound,
		},
		{
			name:     "unknown member",
			req:      CreateBorrowingRequest{BookID: "book-1", MemberID: "nope", DueDate: dueIn(7)},
			wantCode: CodeNotFound,
		},
		{
			name:     "due date in the past",
			req:      CreateBorrowingRequest{BookID: "book-1", MemberID: "member-1", DueDate: dueIn(-1)},
			wantCode: CodeInvalidDueDate,
		},
		{
			name: "due date equals now",
			req: CreateBorrowingRequest{
				BookID: "book-1", MemberID: "member-1", DueDate: testNow.Format(time.RFC3339),
			},
			wantCode: CodeInvalidDueDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			seed(store, 3, 3)
			svc, _ := newTestService(store)

			_, err := svc.Create(context.Background(), tt.req, "admin-1", "admin")
			require.Error(t, err)
			assert.True(t, HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestCreate_PeriodBoundary(t *testing.T) {
	// ちょうど14日後は許可、それを1ミリ秒でも超えると拒否
	store := newFakeStore()
	seed(store, 5, 5)
	svc, _ := newTestService(store)

	exactly := testNow.Add(14 * 24 * time.Hour)
	_, err := svc.Create(context.Background(), CreateBorrowingRequest{
		BookID: "book-1", MemberID: "member-1", DueDate: exactly.Format(time.RFC3339),
	}, "", "")
	require.NoError(t, err)

	over := exactly.Add(time.Millisecond)
	_, err = svc.Create(context.Background(), CreateBorrowingRequest{
		BookID: "book-1", MemberID: "member-1", DueDate: over.Format(time.RFC3339Nano),
	}, "", "")
	require.Error(t, err)
	assert.True(t, HasCode(err, CodePeriodTooLong), "got %v", err)
}

func TestCreate_BookUnavailable(t *testing.T) {
	store := newFakeStore()
	seed(store, 2, 0)
	svc, _ := newTestService(store)

	_, err := svc.Create(context.Background(), CreateBorrowingRequest{
		BookID: "book-1", MemberID: "member-1", DueDate: dueIn(7),
	}, "", "")
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeBookUnavailable), "got %v", err)
}

func TestCreate_MemberSuspended(t *testing.T) {
	store := newFakeStore()
	seed(store, 2, 2)
	store.memberInfo["member-1"].Status = members.StatusSuspended
	svc, _ := newTestService(store)

	_, err := svc.Create(context.Background(), CreateBorrowingRequest{
		BookID: "book-1", MemberID: "member-1", DueDate: dueIn(7),
	}, "", "")
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeIneligible), "got %v", err)
}

func TestCreate_MaxActiveBorrowings(t *testing.T) {
	// 4冊目までは借りられ、5冊目で上限に達し6冊目が拒否される
	store := newFakeStore()
	seed(store, 10, 10)
	svc, _ := newTestService(store)

	for i := 0; i < 5; i++ {
		_, err := svc.Create(context.Background(), CreateBorrowingRequest{
			BookID: "book-1", MemberID: "member-1", DueDate: dueIn(7),
		}, "", "")
		require.NoError(t, err, "borrowing %d should succeed", i+1)
	}

	_, err := svc.Create(context.Background(), CreateBorrowingRequest{
		BookID: "book-1", MemberID: "member-1", DueDate: dueIn(7),
	}, "", "")
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeIneligible), "got %v", err)
}

// ===== Return =====

func TestReturn_OnTime(t *testing.T) {
	store := newFakeStore()
	seed(store, 3, 3)
	svc, clock := newTestService(store)

	created, err := svc.Create(context.Background(), CreateBorrowingRequest{
		BookID: "book-1", MemberID: "member-1", DueDate: dueIn(7),
	}, "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, store.books["book-1"].Available)

	// 期限ちょうどに返却
	clock.now = testNow.AddDate(0, 0, 7)
	res, err := svc.Return(context.Background(), created.BorrowingID, "", "")
	require.NoError(t, err)

	assert.Equal(t, StatusReturned, res.Status)
	assert.Equal(t, int64(0), res.Fine)
	require.NotNil(t, res.ReturnDate)
	assert.Equal(t, 3, store.books["book-1"].Available, "availability must be restored")
}

func TestReturn_LateChargesFine(t *testing.T) {
	store := newFakeStore()
	seed(store, 3, 3)
	svc, clock := newTestService(store)

	created, err := svc.Create(context.Background(), CreateBorrowingRequest{
		BookID: "book-1", MemberID: "member-1", DueDate: dueIn(7),
	}, "", "")
	require.NoError(t, err)

	// 3日と少し遅れ → 4日分
	clock.now = testNow.AddDate(0, 0, 10).Add(time.Minute)
	res, err := svc.Return(context.Background(), created.BorrowingID, "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(4000), res.Fine)
}

func TestReturn_Twice(t *testing.T) {
	store := newFakeStore()
	seed(store, 3, 3)
	svc, _ := newTestService(store)

	created, err := svc.Create(context.Background(), CreateBorrowingRequest{
		BookID: "book-1", MemberID: "member-1", DueDate: dueIn(7),
	}, "", "")
	require.NoError(t, err)

	_, err = svc.Return(context.Background(), created.BorrowingID, "", "")
	require.NoError(t, err)
	assert.Equal(t, 3, store.books["book-1"].Available)

	// 二重返却は拒否し、在庫を二重加算しない
	_, err = svc.Return(context.Background(), created.BorrowingID, "", "")
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeAlreadyReturned), "got %v", err)
	assert.Equal(t, 3, store.books["book-1"].Available)
}

func TestReturn_Unknown(t *testing.T) {
	store := newFakeStore()
	seed(store, 3, 3)
	svc, _ := newTestService(store)

	_, err := svc.Return(context.Background(), "nope", "", "")
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeNotFound), "got %v", err)
}

// 貸出→返却で在庫が元に戻り、会員は再び借りられる
func TestBorrowReturnRoundTrip(t *testing.T) {
	store := newFakeStore()
	seed(store, 1, 1)
	svc, _ := newTestService(store)

	created, err := svc.Create(context.Background(), CreateBorrowingRequest{
		BookID: "book-1", MemberID: "member-1", DueDate: dueIn(7),
	}, "", "")
	require.NoError(t, err)
	assert.Equal(t, 0, store.books["book-1"].Available)

	// 最後の1冊が貸出中の間は借りられない
	_, err = svc.Create(context.Background(), CreateBorrowingRequest{
		BookID: "book-1", MemberID: "member-1", DueDate: dueIn(7),
	}, "", "")
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeBookUnavailable))

	_, err = svc.Return(context.Background(), created.BorrowingID, "", "")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateBorrowingRequest{
		BookID: "book-1", MemberID: "member-1", DueDate: dueIn(7),
	}, "", "")
	require.NoError(t, err)
}

// 最後の1冊を同時に2人が借りようとしたとき、成功するのは1件だけ
func TestCreate_ConcurrentLastCopy(t *testing.T) {
	store := newFakeStore()
	seed(store, 1, 1)
	store.memberInfo["member-2"] = &MemberInfo{
		MemberID: "member-2", MemberCode: "M-0002", Name: "Sato", Status: members.StatusActive,
	}
	svc, _ := newTestService(store)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, memberID := range []string{"member-1", "member-2"} {
		wg.Add(1)
		go func(i int, memberID string) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), CreateBorrowingRequest{
				BookID: "book-1", MemberID: memberID, DueDate: dueIn(7),
			}, "", "")
		}(i, memberID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, HasCode(err, CodeBookUnavailable), "got %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, store.books["book-1"].Available)
}

// ===== MarkOverdue =====

func TestMarkOverdue(t *testing.T) {
	store := newFakeStore()
	seed(store, 3, 3)
	svc, clock := newTestService(store)

	created, err := svc.Create(context.Background(), CreateBorrowingRequest{
		BookID: "book-1", MemberID: "member-1", DueDate: dueIn(7),
	}, "", "")
	require.NoError(t, err)

	clock.now = testNow.AddDate(0, 0, 8)
	n, err := svc.MarkOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// overdue でも通常の返却フローで完了できる
	res, err := svc.Return(context.Background(), created.BorrowingID, "", "")
	require.NoError(t, err)
	assert.Equal(t, StatusReturned, res.Status)
	assert.Equal(t, int64(1000), res.Fine)
}
