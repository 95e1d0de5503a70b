package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"buyback-pos/internal/models"

	"gorm.io/gorm"
)

// OperatorStore persists staff accounts and their login history.
type OperatorStore struct {
	db *gorm.DB
}

func NewOperatorStore(db *gorm.DB) *OperatorStore {
	return &OperatorStore{db: db}
}

func (s *OperatorStore) FindByEmployeeID(ctx context.Context, employeeID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Role").
		Where("employee_id = ?", strings.TrimSpace(employeeID)).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *OperatorStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Role").First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *OperatorStore) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Preload("Role").Order("employee_id").Find(&users).Error
	return users, translate(err)
}

func (s *OperatorStore) Roles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := s.db.WithContext(ctx).Order("id").Find(&roles).Error
	return roles, translate(err)
}

func (s *OperatorStore) RoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

// Create stores user with the next employee ID for its role, e.g. BIL003.
// A caller supplied EmployeeID is kept as is.
func (s *OperatorStore) Create(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if user.EmployeeID == "" {
			var role models.Role
			if err := tx.First(&role, user.RoleID).Error; err != nil {
				return err
			}
			id, err := nextEmployeeID(tx, employeePrefix(role.Name))
			if err != nil {
				return err
			}
			user.EmployeeID = id
		}
		return tx.Create(user).Error
	}))
}

func employeePrefix(role string) string {
	switch role {
	case models.RoleAdmin:
		return "ADM"
	case models.RoleManager:
		return "MGR"
	case models.RoleInventory:
		return "INV"
	case models.RoleBiller:
		return "BIL"
	}
	return "EMP"
}

func nextEmployeeID(tx *gorm.DB, prefix string) (string, error) {
	var last models.User
	err := tx.Unscoped().Where("employee_id LIKE ?", prefix+"%").Order("id desc").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return followingEmployeeID(prefix, ""), nil
	}
	if err != nil {
		return "", err
	}
	return followingEmployeeID(prefix, last.EmployeeID), nil
}

// followingEmployeeID numbers after last, e.g. BIL009 -> BIL010. An empty or
// unparsable last starts at 001.
func followingEmployeeID(prefix, last string) string {
	var n int
	fmt.Sscanf(last, prefix+"%d", &n)
	return fmt.Sprintf("%s%03d", prefix, n+1)
}

func (s *OperatorStore) Update(ctx context.Context, id uint, username, mobile string, roleID uint) error {
	updates := map[string]interface{}{
		"username": strings.TrimSpace(username),
		"mobile":   strings.TrimSpace(mobile),
	}
	if roleID > 0 {
		updates["role_id"] = roleID
	}
	return s.updates(ctx, id, updates)
}

func (s *OperatorStore) SetStatus(ctx context.Context, id uint, active bool, reason string) error {
	if active {
		reason = ""
	}
	return s.updates(ctx, id, map[string]interface{}{
		"is_active":       active,
		"inactive_reason": reason,
	})
}

func (s *OperatorStore) SetPasswordHash(ctx context.Context, id uint, hash string) error {
	return s.updates(ctx, id, map[string]interface{}{"password_hash": hash})
}

func (s *OperatorStore) updates(ctx context.Context, id uint, values map[string]interface{}) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *OperatorStore) RecordLogin(ctx context.Context, userID uint, ip string) (*models.LoginHistory, error) {
	entry := &models.LoginHistory{UserID: userID, IPAddress: ip, LoginTime: time.Now()}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, translate(err)
	}
	return entry, nil
}

// RecordLogout closes the most recent open session of userID.
func (s *OperatorStore) RecordLogout(ctx context.Context, userID uint) error {
	var last models.LoginHistory
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND logout_time IS NULL", userID).
		Order("login_time desc").
		First(&last).Error
	if err != nil {
		return translate(err)
	}
	now := time.Now()
	return translate(s.db.WithContext(ctx).Model(&last).Update("logout_time", &now).Error)
}

func (s *OperatorStore) LoginHistory(ctx context.Context, limit int) ([]models.LoginHistory, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var history []models.LoginHistory
	err := s.db.WithContext(ctx).Preload("User").Preload("User.Role").
		Order("login_time desc").Limit(limit).Find(&history).Error
	return history, translate(err)
}

// RoleCount is one bar of the admin dashboard.
type RoleCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type OperatorStats struct {
	TotalEmployees   int64       `json:"total_employees"`
	ActiveUsers      int64       `json:"active_users"`
	RoleDistribution []RoleCount `json:"role_distribution"`
}

func (s *OperatorStore) Stats(ctx context.Context) (*OperatorStats, error) {
	db := s.db.WithContext(ctx)
	var stats OperatorStats
	if err := db.Model(&models.User{}).Count(&stats.TotalEmployees).Error; err != nil {
		return nil, translate(err)
	}
	if err := db.Model(&models.User{}).Where("is_active = ?", true).Count(&stats.ActiveUsers).Error; err != nil {
		return nil, translate(err)
	}
	err := db.Model(&models.User{}).
		Select("roles.name, count(users.id) as count").
		Joins("left join roles on roles.id = users.role_id").
		Group("roles.name").
		Scan(&stats.RoleDistribution).Error
	if err != nil {
		return nil, translate(err)
	}
	return &stats, nil
}
