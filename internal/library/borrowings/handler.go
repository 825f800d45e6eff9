package borrowings

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"LIBRIS-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/borrowings", h.Create)
	r.GET("/borrowings", h.List)
	r.GET("/borrowings/stats", h.Stats)
	r.GET("/borrowings/:borrowing_id", h.Get)
	r.POST("/borrowings/:borrowing_id/return", h.Return)
	r.POST("/borrowings/overdue/sweep", h.Sweep)
	r.GET("/members/:member_id/borrowings", h.ListByMember)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBorrowingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	adminID, adminName := auth.AdminIdentity(c)
	res, err := h.svc.Create(c.Request.Context(), req, adminID, adminName)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.Header("Location", "/borrowings/"+res.BorrowingID)
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Return(c *gin.Context) {
	adminID, adminName := auth.AdminIdentity(c)
	res, err := h.svc.Return(c.Request.Context(), c.Param("borrowing_id"), adminID, adminName)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Get(c *gin.Context) {
	res, err := h.svc.Get(c.Request.Context(), c.Param("borrowing_id"))
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) List(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErrFrom(err))
		return
	}
	res, err := h.svc.List(c.Request.Context(), f, parsePage(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// 会員単位の貸出履歴
func (h *Handler) ListByMember(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErrFrom(err))
		return
	}
	memberID := c.Param("member_id")
	f.MemberID = &memberID
	res, err := h.svc.List(c.Request.Context(), f, parsePage(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Sweep(c *gin.Context) {
	n, err := h.svc.MarkOverdue(c.Request.Context())
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, SweepResponse{Updated: n})
}

func (h *Handler) Stats(c *gin.Context) {
	st, err := h.svc.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, st)
}

// ===== helpers =====

func parseFilter(c *gin.Context) (Filter, error) {
	f := Filter{}
	if v := c.Query("member_id"); v != "" {
		f.MemberID = &v
	}
	if v := c.Query("book_id"); v != "" {
		f.BookID = &v
	}
	if v := c.Query("status"); v != "" {
		switch v {
		case StatusBorrowed, StatusReturned, StatusOverdue:
			f.Status = &v
		default:
			return f, ErrInvalid("invalid status filter")
		}
	}
	if v := c.Query("active"); v == "true" || v == "1" {
		f.ActiveOnly = true
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, ErrInvalid("invalid from, expected RFC3339")
		}
		f.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, ErrInvalid("invalid to, expected RFC3339")
		}
		f.To = &t
	}
	return f, nil
}

func parsePage(c *gin.Context) Page {
	return Page{
		Limit:  atoiDef(c.Query("limit"), 50),
		Offset: atoiDef(c.Query("offset"), 0),
		Order:  strings.ToLower(c.DefaultQuery("order", "desc")),
	}
}

func atoiDef(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func apiErr(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func apiErrFrom(err error) errorDTO {
	var api *APIError
	if errors.As(err, &api) {
		return apiErr(api.Code, api.Message)
	}
	return apiErr(CodeInternal, err.Error())
}
