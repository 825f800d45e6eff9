package members

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"LIBRIS-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/members", h.Create)
	r.GET("/members", h.List)
	r.GET("/members/stats", h.Stats)
	r.GET("/members/:member_id", h.Get)
	r.GET("/members/:member_id/can-borrow", h.CanBorrow)
	r.PUT("/members/:member_id", h.Update)
	r.POST("/members/:member_id/suspend", h.Suspend)
	r.POST("/members/:member_id/activate", h.Activate)
	r.DELETE("/members/:member_id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	adminID, adminName := auth.AdminIdentity(c)
	res, err := h.svc.Create(c.Request.Context(), req, adminID, adminName)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.Header("Location", "/members/"+res.MemberID)
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Get(c *gin.Context) {
	res, err := h.svc.Get(c.Request.Context(), c.Param("member_id"))
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) List(c *gin.Context) {
	f := SearchQuery{Keyword: c.Query("q")}
	if v := c.Query("status"); v != "" {
		f.Status = &v
	}
	p := Page{
		Limit:  atoiDef(c.Query("limit"), 50),
		Offset: atoiDef(c.Query("offset"), 0),
		Order:  strings.ToLower(c.DefaultQuery("order", "asc")),
	}
	res, err := h.svc.List(c.Request.Context(), f, p)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	adminID, adminName := auth.AdminIdentity(c)
	res, err := h.svc.Update(c.Request.Context(), c.Param("member_id"), req, adminID, adminName)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Suspend(c *gin.Context) {
	adminID, adminName := auth.AdminIdentity(c)
	res, err := h.svc.SetStatus(c.Request.Context(), c.Param("member_id"), StatusSuspended, adminID, adminName)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Activate(c *gin.Context) {
	adminID, adminName := auth.AdminIdentity(c)
	res, err := h.svc.SetStatus(c.Request.Context(), c.Param("member_id"), StatusActive, adminID, adminName)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Delete(c *gin.Context) {
	adminID, adminName := auth.AdminIdentity(c)
	if err := h.svc.Delete(c.Request.Context(), c.Param("member_id"), adminID, adminName); err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) CanBorrow(c *gin.Context) {
	res, err := h.svc.CanBorrow(c.Request.Context(), c.Param("member_id"))
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Stats(c *gin.Context) {
	st, err := h.svc.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, st)
}

// ===== helpers =====

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
