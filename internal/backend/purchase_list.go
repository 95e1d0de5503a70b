package backend

import (
	"context"
	"net/http"

	"buyback-pos/internal/models"
	"buyback-pos/internal/paging"
)

const purchaseExportName = "purchases.xlsx"

// PurchaseLineFilter is the filter bar of the purchase history screen.
type PurchaseLineFilter struct {
	Query      string
	CategoryID uint
	Dates      DateRange
}

func (f PurchaseLineFilter) query() query {
	return newQuery().
		str("q", f.Query).
		id("category_id", f.CategoryID).
		dates(f.Dates)
}

func (c *Client) ListPurchaseLines(ctx context.Context, f PurchaseLineFilter, p paging.Params) (models.Page[models.PurchaseLine], error) {
	var out models.Page[models.PurchaseLine]
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/purchase/list",
		query:  f.query().page(p).Values,
	}, &out)
	return out, err
}

// CustomerInfoByProduct returns who sold the product last, or nil when the
// backend has nobody on record.
func (c *Client) CustomerInfoByProduct(ctx context.Context, prodID uint) (*models.Customer, error) {
	var out models.Customer
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/purchase/customer_info_by_product/" + itoa(prodID),
	}, &out)
	if err != nil {
		return nil, err
	}
	if out == (models.Customer{}) {
		return nil, nil
	}
	return &out, nil
}

func (c *Client) ExportPurchaseLines(ctx context.Context, f PurchaseLineFilter) (*Download, error) {
	return c.download(ctx, request{
		method:  http.MethodGet,
		path:    "/purchase/export",
		query:   f.query().Values,
		timeout: exportTimeout,
	}, purchaseExportName)
}
