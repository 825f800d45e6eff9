package members

import "time"

type CreateMemberRequest struct {
	MemberCode string  `json:"member_code" binding:"required"`
	Name       string  `json:"name" binding:"required"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Address    *string `json:"address,omitempty"`
}

type UpdateMemberRequest struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	Status  *string `json:"status,omitempty"`
}

type MemberResponse struct {
	MemberID   string    `json:"member_id"`
	MemberCode string    `json:"member_code"`
	Name       string    `json:"name"`
	Email      *string   `json:"email,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Address    *string   `json:"address,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toResponse(m *Member) MemberResponse {
	return MemberResponse{
		MemberID:   m.MemberID,
		MemberCode: m.MemberCode,
		Name:       m.Name,
		Email:      m.Email,
		Phone:      m.Phone,
		Address:    m.Address,
		Status:     m.Status,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

type ListResponse struct {
	Items []MemberResponse `json:"items"`
	Total int64            `json:"total"`
}
