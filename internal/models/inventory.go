package models

import (
	"github.com/shopspring/decimal"
)

type InventoryItem struct {
	ProdID        uint                `json:"prod_id"`
	ProdName      string              `json:"prod_name"`
	CategoryID    uint                `json:"category_id"`
	CategoryName  string              `json:"category_name"`
	BalanceWeight decimal.NullDecimal `json:"balance_weight"`
	LastSaleDate  string              `json:"last_sale_date"`
	LastSoldQty   decimal.NullDecimal `json:"last_sold_qty"`
}

// SellLine deducts weight from stock when scrap is sold on.
type SellLine struct {
	ProdID     uint            `json:"prod_id"`
	WeightSold decimal.Decimal `json:"weight_sold"`
	Note       string          `json:"note"`
}

type SellResult struct {
	OK      bool             `json:"ok"`
	Created []map[string]any `json:"created"`
}

// StockMovement is one row of the purchased or sold history of a product.
type StockMovement struct {
	ProdID   uint                `json:"prod_id"`
	ProdName string              `json:"prod_name"`
	Date     string              `json:"date"`
	Weight   decimal.NullDecimal `json:"weight"`
	Price    decimal.NullDecimal `json:"price"`
}
