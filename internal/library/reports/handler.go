package reports

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/reports/overall", h.Overall)
	r.GET("/reports/popular-books", h.PopularBooks)
	r.GET("/reports/active-members", h.ActiveMembers)
	r.GET("/reports/monthly", h.Monthly)
	r.GET("/reports/borrowings/export", h.ExportBorrowings)
	r.GET("/stats", h.Stats)
}

func (h *Handler) Overall(c *gin.Context) {
	res, err := h.svc.Overall(c.Request.Context())
	if err != nil {
		internalErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) PopularBooks(c *gin.Context) {
	res, err := h.svc.PopularBooks(c.Request.Context(), atoiDef(c.Query("limit"), 10))
	if err != nil {
		internalErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": res})
}

func (h *Handler) ActiveMembers(c *gin.Context) {
	res, err := h.svc.ActiveMembers(c.Request.Context(), atoiDef(c.Query("limit"), 10))
	if err != nil {
		internalErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": res})
}

func (h *Handler) Monthly(c *gin.Context) {
	res, err := h.svc.Monthly(c.Request.Context(), atoiDef(c.Query("months"), 6))
	if err != nil {
		internalErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": res})
}

func (h *Handler) Stats(c *gin.Context) {
	res, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		internalErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ExportBorrowings(c *gin.Context) {
	data, err := h.svc.ExportBorrowingsCSV(c.Request.Context())
	if err != nil {
		internalErr(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="borrowings.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-16le", data)
}

func internalErr(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError,
		gin.H{"error": gin.H{"code": "INTERNAL", "message": err.Error()}})
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
