package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc *Service }

// RegisterPublicRoutes: 認証前に呼べるエンドポイント
func RegisterPublicRoutes(r gin.IRoutes, svc *Service) {
	h := &AuthHandler{svc: svc}
	r.POST("/auth/login", h.Login)
}

// RegisterRoutes: 認証必須のエンドポイント（/admins 系は SUPER_ADMIN 前提で main 側がガードする）
func RegisterRoutes(r gin.IRoutes, admins gin.IRoutes, svc *Service) {
	h := &AuthHandler{svc: svc}
	r.GET("/auth/me", h.Me)
	r.POST("/auth/change-password", h.ChangePassword)

	admins.GET("/admins", h.ListAdmins)
	admins.POST("/admins", h.CreateAdmin)
	admins.PUT("/admins/:admin_id", h.UpdateAdmin)
	admins.DELETE("/admins/:admin_id", h.DeleteAdmin)
}

type adminDTO struct {
	AdminID   string    `json:"admin_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toAdminDTO(a *Admin) adminDTO {
	return adminDTO{
		AdminID:   a.AdminID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      a.Role,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	token, acct, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "メールアドレスまたはパスワードが間違っています"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"admin": toAdminDTO(acct),
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	adminID, _ := AdminIdentity(c)
	a, err := h.svc.GetAdmin(c.Request.Context(), adminID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, toAdminDTO(a))
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	adminID, _ := AdminIdentity(c)
	if err := h.svc.ChangePassword(c.Request.Context(), adminID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, ErrAuthFailed) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "現在のパスワードが間違っています"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "change password failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

func (h *AuthHandler) ListAdmins(c *gin.Context) {
	items, err := h.svc.ListAdmins(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	out := make([]adminDTO, 0, len(items))
	for i := range items {
		out = append(out, toAdminDTO(&items[i]))
	}
	c.JSON(http.StatusOK, out)
}

type CreateAdminRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Role     *string `json:"role,omitempty"` // 未指定なら ADMIN
}

func (h *AuthHandler) CreateAdmin(c *gin.Context) {
	var req CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	role := RoleAdmin
	if req.Role != nil && *req.Role != "" {
		role = *req.Role
	}
	if role != RoleAdmin && role != RoleSuperAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	a, err := h.svc.CreateAdmin(c.Request.Context(), req.Name, req.Email, req.Password, role)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, toAdminDTO(a))
}

type UpdateAdminRequest struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Role   *string `json:"role,omitempty"`
	Status *string `json:"status,omitempty"`
}

func (h *AuthHandler) UpdateAdmin(c *gin.Context) {
	var req UpdateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	a, err := h.svc.UpdateAdmin(c.Request.Context(), c.Param("admin_id"), req.Name, req.Email, req.Role, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		case errors.Is(err, ErrAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})
		case errors.Is(err, ErrLastAdmin):
			c.JSON(http.StatusConflict, gin.H{"error": "cannot demote the last super admin"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		}
		return
	}
	c.JSON(http.StatusOK, toAdminDTO(a))
}

func (h *AuthHandler) DeleteAdmin(c *gin.Context) {
	adminID := c.Param("admin_id")

	// 自分自身は消せない
	if self, _ := AdminIdentity(c); self == adminID {
		c.JSON(http.StatusConflict, gin.H{"error": "cannot delete yourself"})
		return
	}

	if err := h.svc.DeleteAdmin(c.Request.Context(), adminID); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		case errors.Is(err, ErrLastAdmin):
			c.JSON(http.StatusConflict, gin.H{"error": "cannot delete the last super admin"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
