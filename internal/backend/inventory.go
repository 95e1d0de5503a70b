package backend

import (
	"context"
	"errors"
	"net/http"

	"buyback-pos/internal/models"
	"buyback-pos/internal/paging"
)

const (
	inventoryExportName  = "inventory.xlsx"
	defaultInventorySort = "-balance"
)

var ErrNoSellLines = errors.New("no lines to sell")

type InventoryFilter struct {
	Query      string
	CategoryID uint
	Sort       string
	OnlyActive bool
}

func (f InventoryFilter) query() query {
	sort := f.Sort
	if sort == "" {
		sort = defaultInventorySort
	}
	return newQuery().
		str("q", f.Query).
		id("category_id", f.CategoryID).
		str("sort", sort).
		bool("only_active", f.OnlyActive)
}

func (c *Client) ListInventory(ctx context.Context, f InventoryFilter, p paging.Params) (models.Page[models.InventoryItem], error) {
	var out models.Page[models.InventoryItem]
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/inventory/items",
		query:  f.query().page(p).Values,
	}, &out)
	return out, err
}

func (c *Client) ExportInventory(ctx context.Context, f InventoryFilter) (*Download, error) {
	return c.download(ctx, request{
		method:  http.MethodGet,
		path:    "/inventory/export",
		query:   f.query().Values,
		timeout: exportTimeout,
	}, inventoryExportName)
}

func (c *Client) SellInventory(ctx context.Context, lines []models.SellLine) (*models.SellResult, error) {
	if len(lines) == 0 {
		return nil, ErrNoSellLines
	}
	var out models.SellResult
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/inventory/sell",
		body:   JSON(lines),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PurchasedHistory(ctx context.Context, prodID uint, r DateRange, p paging.Params) (models.Page[models.StockMovement], error) {
	return c.history(ctx, "/inventory/purchased_history_simple/", prodID, r, p)
}

func (c *Client) SoldHistory(ctx context.Context, prodID uint, r DateRange, p paging.Params) (models.Page[models.StockMovement], error) {
	return c.history(ctx, "/inventory/sold_history_simple/", prodID, r, p)
}

func (c *Client) history(ctx context.Context, prefix string, prodID uint, r DateRange, p paging.Params) (models.Page[models.StockMovement], error) {
	var out models.Page[models.StockMovement]
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   prefix + itoa(prodID),
		query:  newQuery().page(p).dates(r).Values,
	}, &out)
	return out, err
}
