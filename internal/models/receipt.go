package models

import (
	"github.com/shopspring/decimal"
)

type Receipt struct {
	PurchaseID  uint                `json:"purchase_id"`
	Date        string              `json:"date"`
	Time        string              `json:"time"`
	Amount      decimal.NullDecimal `json:"amount"`
	PaymentType string              `json:"payment_type"`
}

type ReceiptImage struct {
	PhotoID uint   `json:"photo_id"`
	Image   string `json:"image"`
}

type ReceiptImages struct {
	PurchaseID uint           `json:"purchase_id"`
	Images     []ReceiptImage `json:"images"`
}
