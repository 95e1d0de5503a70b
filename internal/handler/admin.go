package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"buyback-pos/internal/middleware"
	"buyback-pos/internal/models"
	"buyback-pos/internal/paging"
	"buyback-pos/internal/repository"
	"buyback-pos/internal/utils"

	"github.com/gin-gonic/gin"
)

type OperatorAdmin interface {
	List(ctx context.Context) ([]models.User, error)
	Roles(ctx context.Context) ([]models.Role, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uint, username, mobile string, roleID uint) error
	SetStatus(ctx context.Context, id uint, active bool, reason string) error
	SetPasswordHash(ctx context.Context, id uint, hash string) error
	LoginHistory(ctx context.Context, limit int) ([]models.LoginHistory, error)
	Stats(ctx context.Context) (*repository.OperatorStats, error)
}

type AuditReader interface {
	List(ctx context.Context, f repository.AuditFilter, p paging.Params) ([]models.AuditEntry, int64, error)
}

type AdminHandler struct {
	*Renderer
	users OperatorAdmin
	audit AuditReader
}

func NewAdminHandler(r *Renderer, users OperatorAdmin, audit AuditReader) *AdminHandler {
	return &AdminHandler{Renderer: r, users: users, audit: audit}
}

type CreateEmployeeRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	RoleID   uint   `json:"role_id" binding:"required"`
	Mobile   string `json:"mobile"`
}

// storeError answers a failed store call as JSON.
func (h *AdminHandler) storeError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
	case errors.Is(err, repository.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "Employee ID already exists"})
	default:
		h.log(c, http.StatusInternalServerError, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + what})
	}
}

func (h *AdminHandler) CreateEmployee(c *gin.Context) {
	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hashedPassword,
		RoleID:       req.RoleID,
		Mobile:       strings.TrimSpace(req.Mobile),
		IsActive:     true,
	}
	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
			return
		}
		h.storeError(c, err, "create user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "User created successfully",
		"user_id":     user.ID,
		"employee_id": user.EmployeeID,
	})
}

func (h *AdminHandler) ListEmployees(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.storeError(c, err, "fetch users")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) ListRoles(c *gin.Context) {
	roles, err := h.users.Roles(c.Request.Context())
	if err != nil {
		h.storeError(c, err, "fetch roles")
		return
	}
	c.JSON(http.StatusOK, roles)
}

func (h *AdminHandler) UpdateEmployee(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid employee id"})
		return
	}
	var req struct {
		Username string `json:"username" binding:"required"`
		Mobile   string `json:"mobile"`
		RoleID   uint   `json:"role_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.Update(c.Request.Context(), id, req.Username, req.Mobile, req.RoleID); err != nil {
		h.storeError(c, err, "update employee")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Employee updated successfully"})
}

func (h *AdminHandler) UpdateEmployeeStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid employee id"})
		return
	}
	var req struct {
		IsActive       bool   `json:"is_active"`
		InactiveReason string `json:"inactive_reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.IsActive && c.GetUint(middleware.ContextUserID) == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot deactivate yourself"})
		return
	}

	if err := h.users.SetStatus(c.Request.Context(), id, req.IsActive, req.InactiveReason); err != nil {
		h.storeError(c, err, "update status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status updated successfully"})
}

func (h *AdminHandler) ResetEmployeePassword(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid employee id"})
		return
	}
	var req struct {
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	if err := h.users.SetPasswordHash(c.Request.Context(), id, hashedPassword); err != nil {
		h.storeError(c, err, "reset password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

func (h *AdminHandler) GetLoginHistory(c *gin.Context) {
	history, err := h.users.LoginHistory(c.Request.Context(), 100)
	if err != nil {
		h.storeError(c, err, "fetch login history")
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.users.Stats(c.Request.Context())
	if err != nil {
		h.storeError(c, err, "fetch stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// auditActions fills the action filter of the audit screen.
var auditActions = []string{
	models.AuditBillOpened,
	models.AuditBillDiscarded,
	models.AuditItemAdded,
	models.AuditItemRepriced,
	models.AuditItemRemoved,
	models.AuditBillPaid,
	models.AuditReceiptPrinted,
	models.AuditStockSold,
	models.AuditProductCreated,
	models.AuditProductUpdated,
	models.AuditProductEnabled,
	models.AuditProductDisabled,
	models.AuditCategoryCreated,
}

type auditPage struct {
	Query   url.Values
	Filter  repository.AuditFilter
	Actions []string
	Users   []models.User
	Entries []models.AuditEntry
	Total   int64
	Pager   paging.View
}

// AuditLog is the paged list of actions operators pushed to the backend.
func (h *AdminHandler) AuditLog(c *gin.Context) {
	q := c.Request.URL.Query()
	f := repository.AuditFilter{
		Action:     q.Get("action"),
		UserID:     valuesID(q, "user_id"),
		PurchaseID: valuesID(q, "purchase_id"),
	}
	p := paging.FromValues(q, h.PerPage)
	ctx := c.Request.Context()

	entries, total, err := h.audit.List(ctx, f, p)
	if err != nil {
		h.fail(c, "audit", err)
		return
	}
	users, err := h.users.List(ctx)
	if err != nil {
		h.fail(c, "audit", err)
		return
	}
	h.render(c, http.StatusOK, "audit", "Audit log", "audit", auditPage{
		Query:   q,
		Filter:  f,
		Actions: auditActions,
		Users:   users,
		Entries: entries,
		Total:   total,
		Pager:   paging.NewView(p.Page, paging.TotalPages(int(total), p.PerPage)),
	})
}
