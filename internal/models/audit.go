package models

import (
	"time"
)

// Audit actions.
const (
	AuditBillOpened      = "bill.opened"
	AuditBillDiscarded   = "bill.discarded"
	AuditItemAdded       = "item.added"
	AuditItemRepriced    = "item.repriced"
	AuditItemRemoved     = "item.removed"
	AuditBillPaid        = "bill.paid"
	AuditReceiptPrinted  = "receipt.printed"
	AuditStockSold       = "stock.sold"
	AuditProductCreated  = "product.created"
	AuditProductUpdated  = "product.updated"
	AuditProductEnabled  = "product.enabled"
	AuditProductDisabled = "product.disabled"
	AuditCategoryCreated = "category.created"
)

// AuditEntry records a mutating action an operator pushed to the backend.
type AuditEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RequestID  string    `gorm:"size:36;index" json:"request_id"`
	UserID     uint      `gorm:"index" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string    `gorm:"size:40;index;not null" json:"action"`
	PurchaseID *uint     `gorm:"index" json:"purchase_id"`
	Detail     string    `gorm:"type:text" json:"detail"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
