package models

import (
	"github.com/shopspring/decimal"
)

type Category struct {
	ID   uint   `json:"category_id"`
	Name string `json:"category_name"`
}

// Product is a buy-back price list entry. Products are never hard-deleted;
// IsActive false marks a soft-disabled product.
type Product struct {
	ID           uint            `json:"prod_id"`
	Name         string          `json:"prod_name"`
	Price        decimal.Decimal `json:"prod_price"`
	CategoryID   uint            `json:"category_id"`
	CategoryName string          `json:"category_name,omitempty"`
	Image        string          `json:"prod_img,omitempty"`
	Unit         string          `json:"unit,omitempty"`
	IsActive     bool            `json:"is_active"`
}

// ProductForm is the multipart payload for create and update.
type ProductForm struct {
	Name       string
	Price      decimal.Decimal
	CategoryID uint
	Image      *Upload
}

// Upload is a file forwarded to the backend as a multipart part.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}
