package activitylog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

// admins には SUPER_ADMIN ガード付きのグループを渡す
func RegisterRoutes(r gin.IRoutes, admins gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/activity-logs", h.List)
	admins.DELETE("/activity-logs", h.Cleanup)
}

type entryDTO struct {
	LogID      uint64    `json:"log_id"`
	AdminID    *string   `json:"admin_id,omitempty"`
	AdminName  string    `json:"admin_name"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	EntityName string    `json:"entity_name"`
	Details    *string   `json:"details,omitempty"`
	IPAddress  *string   `json:"ip_address,omitempty"`
	UserAgent  *string   `json:"user_agent,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (h *Handler) List(c *gin.Context) {
	f := Filter{}
	if v := c.Query("admin_id"); v != "" {
		f.AdminID = &v
	}
	if v := c.Query("action"); v != "" {
		f.Action = &v
	}
	if v := c.Query("entity_type"); v != "" {
		f.EntityType = &v
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Limit = n
		}
	}

	items, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	out := make([]entryDTO, 0, len(items))
	for _, e := range items {
		out = append(out, entryDTO{
			LogID:      e.LogID,
			AdminID:    e.AdminID,
			AdminName:  e.AdminName,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			EntityName: e.EntityName,
			Details:    e.Details,
			IPAddress:  e.IPAddress,
			UserAgent:  e.UserAgent,
			CreatedAt:  e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Cleanup: 古いログの掃除
func (h *Handler) Cleanup(c *gin.Context) {
	days := 90
	if v := c.Query("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	n, err := h.svc.Cleanup(c.Request.Context(), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cleanup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
