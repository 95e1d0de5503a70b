package backend

import (
	"context"
	"net/http"

	"buyback-pos/internal/models"
	"buyback-pos/internal/paging"
)

func (c *Client) ListReceipts(ctx context.Context, r DateRange, p paging.Params) (models.Page[models.Receipt], error) {
	var out models.Page[models.Receipt]
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/receipts",
		query:  newQuery().dates(r).page(p).Values,
	}, &out)
	return out, err
}

// ReceiptImages is fetched only when the images modal is opened.
func (c *Client) ReceiptImages(ctx context.Context, purchaseID uint) (*models.ReceiptImages, error) {
	var out models.ReceiptImages
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/receipts/" + itoa(purchaseID) + "/images",
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.PurchaseID == 0 {
		out.PurchaseID = purchaseID
	}
	return &out, nil
}
