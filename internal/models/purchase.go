package models

import (
	"github.com/shopspring/decimal"
)

const (
	PurchaseStatusOpen = "open"
	PurchaseStatusPaid = "paid"
)

// Payment methods accepted by the pay endpoint.
const (
	PaymentCash     = "cash"
	PaymentTransfer = "transfer"
)

// Purchase is a buy-back bill. The backend allows a single open bill.
type Purchase struct {
	ID            uint            `json:"purchase_id"`
	Status        string          `json:"status"`
	CustomerID    *uint           `json:"customer_id"`
	CustomerName  string          `json:"full_name,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	CreatedAt     string          `json:"created_at,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

type PurchaseItem struct {
	ID       uint            `json:"purchase_item_id"`
	ProdID   uint            `json:"prod_id"`
	ProdName string          `json:"prod_name"`
	Weight   decimal.Decimal `json:"weight"`
	Price    decimal.Decimal `json:"price"`
	Photo    string          `json:"photo,omitempty"`
}

// UnitPrice derives price per kg from the line when the catalog price is unknown.
func (i PurchaseItem) UnitPrice() decimal.Decimal {
	if !i.Weight.IsPositive() {
		return decimal.Zero
	}
	return i.Price.DivRound(i.Weight, 2)
}

type PurchaseSummary struct {
	TotalWeight decimal.Decimal     `json:"total_weight"`
	TotalAmount decimal.NullDecimal `json:"total_amount"`
	ItemCount   int                 `json:"item_count"`
}

// ItemDraft is a weighed line waiting to be committed.
type ItemDraft struct {
	ProdID      uint            `json:"prod_id"`
	Weight      decimal.Decimal `json:"weight"`
	PhotoBase64 string          `json:"photo_base64,omitempty"`
}

// Rounding mirrors the backend's round_mode/round_step query parameters.
type Rounding struct {
	Mode string
	Step decimal.NullDecimal
}

var (
	RoundNone   = Rounding{Mode: "none"}
	RoundHalfUp = Rounding{Mode: "half_up", Step: decimal.NewNullDecimal(decimal.NewFromInt(1))}
)

// QuickOpenResult is returned by every committing quick-open call.
type QuickOpenResult struct {
	PurchaseID uint   `json:"purchase_id"`
	CustomerID uint   `json:"customer_id"`
	Status     string `json:"status"`
}

type PayResult struct {
	PurchaseID uint   `json:"purchase_id"`
	Status     string `json:"status"`
	WillPrint  bool   `json:"will_print"`
	Printed    bool   `json:"printed"`
	PrintError string `json:"print_error"`
}

type ScaleReading struct {
	Weight decimal.Decimal `json:"weight"`
	Unit   string          `json:"unit"`
	Stable bool            `json:"stable"`
}

type CameraStatus struct {
	DeviceIndex int    `json:"device_index"`
	Opened      bool   `json:"opened"`
	FrameOK     bool   `json:"frame_ok"`
	Message     string `json:"message"`
}

// PurchaseLine is a row of the purchase history (PurchaseOrder) screen.
type PurchaseLine struct {
	PurchaseItemID uint            `json:"purchase_item_id"`
	ProdID         uint            `json:"prod_id"`
	ProdName       string          `json:"prod_name"`
	Image          string          `json:"image"`
	PurchaseDate   string          `json:"purchase_date"`
	PurchaseTime   string          `json:"purchase_time"`
	Weight         decimal.Decimal `json:"weight"`
	Price          decimal.Decimal `json:"price"`
	PaymentMethod  string          `json:"payment_method"`
	CategoryName   string          `json:"category_name"`
}
