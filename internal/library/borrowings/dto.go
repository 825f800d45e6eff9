package borrowings

import "time"

// 貸出登録リクエスト
// due_date は RFC3339 または "2006-01-02" を受け付ける
type CreateBorrowingRequest struct {
	BookID   string  `json:"book_id" binding:"required"`
	MemberID string  `json:"member_id" binding:"required"`
	DueDate  string  `json:"due_date" binding:"required"`
	Notes    *string `json:"notes,omitempty"`
}

type BorrowingResponse struct {
	BorrowingID string     `json:"borrowing_id"`
	BookID      string     `json:"book_id"`
	BookTitle   string     `json:"book_title"`
	MemberID    string     `json:"member_id"`
	MemberCode  string     `json:"member_code"`
	MemberName  string     `json:"member_name"`
	BorrowDate  time.Time  `json:"borrow_date"`
	DueDate     time.Time  `json:"due_date"`
	ReturnDate  *time.Time `json:"return_date,omitempty"`
	Status      string     `json:"status"`
	Fine        int64      `json:"fine"`
	Notes       *string    `json:"notes,omitempty"`
}

func toResponse(r *Row) BorrowingResponse {
	return BorrowingResponse{
		BorrowingID: r.BorrowingID,
		BookID:      r.BookID,
		BookTitle:   r.BookTitle,
		MemberID:    r.MemberID,
		MemberCode:  r.MemberCode,
		MemberName:  r.MemberName,
		BorrowDate:  r.BorrowDate,
		DueDate:     r.DueDate,
		ReturnDate:  r.ReturnDate,
		Status:      r.Status,
		Fine:        r.Fine,
		Notes:       r.Notes,
	}
}

type ListResponse struct {
	Items []BorrowingResponse `json:"items"`
	Total int64               `json:"total"`
}

type SweepResponse struct {
	Updated int64 `json:"updated"`
}
