package repository

import (
	"context"
	"time"

	"buyback-pos/internal/models"
	"buyback-pos/internal/paging"

	"gorm.io/gorm"
)

type AuditStore struct {
	db *gorm.DB
}

func NewAuditStore(db *gorm.DB) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) Record(ctx context.Context, entry *models.AuditEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return translate(s.db.WithContext(ctx).Omit("User").Create(entry).Error)
}

type AuditFilter struct {
	Action     string
	UserID     uint
	PurchaseID uint
}

// List returns one page of entries, newest first, and the total count.
func (s *AuditStore) List(ctx context.Context, f AuditFilter, p paging.Params) ([]models.AuditEntry, int64, error) {
	p = paging.Normalize(p.Page, p.PerPage)

	filter := func(db *gorm.DB) *gorm.DB {
		if f.Action != "" {
			db = db.Where("action = ?", f.Action)
		}
		if f.UserID > 0 {
			db = db.Where("user_id = ?", f.UserID)
		}
		if f.PurchaseID > 0 {
			db = db.Where("purchase_id = ?", f.PurchaseID)
		}
		return db
	}

	db := s.db.WithContext(ctx)
	var total int64
	if err := db.Model(&models.AuditEntry{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var entries []models.AuditEntry
	err := db.Scopes(filter).Preload("User").
		Order("created_at desc, id desc").
		Offset((p.Page - 1) * p.PerPage).
		Limit(p.PerPage).
		Find(&entries).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return entries, total, nil
}
