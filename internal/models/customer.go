package models

import (
	"github.com/shopspring/decimal"
)

// Customer is read-only on this side; the backend creates customers while
// opening bills.
type Customer struct {
	ID               uint   `json:"customer_id"`
	FullName         string `json:"full_name"`
	NationalID       string `json:"national_id"`
	Address          string `json:"address"`
	PhotoPath        string `json:"photo_path"`
	LastPurchaseDate string `json:"last_purchase_date"`
}

// CustomerPurchaseLine is one row of the customer detail history. Every row
// repeats the customer fields, so the first row doubles as the header.
type CustomerPurchaseLine struct {
	CustomerID    uint            `json:"customer_id"`
	FullName      string          `json:"full_name"`
	NationalID    string          `json:"national_id"`
	Address       string          `json:"address"`
	PhotoPath     string          `json:"photo_path"`
	ProdID        uint            `json:"prod_id"`
	ProdName      string          `json:"prod_name"`
	PurchaseDate  string          `json:"purchase_date"`
	PurchaseTime  string          `json:"purchase_time"`
	Weight        decimal.Decimal `json:"weight"`
	Price         decimal.Decimal `json:"price"`
	PaymentMethod string          `json:"payment_method"`
	CategoryName  string          `json:"category_name"`
}

// IDCard is what the card reader preview returns and the commit accepts.
type IDCard struct {
	NationalID  string `json:"national_id"`
	FullName    string `json:"full_name"`
	Address     string `json:"address"`
	PhotoBase64 string `json:"photo_base64,omitempty"`
}
