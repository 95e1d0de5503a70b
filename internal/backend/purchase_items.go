package backend

import (
	"context"
	"net/http"
	"time"

	"buyback-pos/internal/models"

	"github.com/shopspring/decimal"
)

const (
	itemCaptureTimeout = 20 * time.Second
	summaryTimeout     = 8 * time.Second
	scaleTimeout       = 5 * time.Second
)

func itemsPath(purchaseID uint) string {
	return "/purchases/" + itoa(purchaseID) + "/items"
}

func (q query) rounding(r models.Rounding) query {
	mode := r.Mode
	if mode == "" {
		mode = models.RoundNone.Mode
	}
	q.Set("round_mode", mode)
	if r.Step.Valid {
		q.Set("round_step", r.Step.Decimal.String())
	}
	return q
}

func (c *Client) ListItems(ctx context.Context, purchaseID uint) ([]models.PurchaseItem, error) {
	var out []models.PurchaseItem
	err := c.do(ctx, request{method: http.MethodGet, path: itemsPath(purchaseID)}, &out)
	return out, err
}

func (c *Client) ItemsSummary(ctx context.Context, purchaseID uint) (*models.PurchaseSummary, error) {
	var out models.PurchaseSummary
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    itemsPath(purchaseID) + "/summary",
		timeout: summaryTimeout,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PreviewItemPhoto takes one snapshot from the counter camera. Nothing is
// stored until CommitItem.
func (c *Client) PreviewItemPhoto(ctx context.Context, purchaseID uint, deviceIndex, warmup int, camBackend string) (*PhotoPreview, error) {
	var out PhotoPreview
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   itemsPath(purchaseID) + "/preview",
		query: newQuery().
			int("device_index", deviceIndex).
			int("warmup", warmup).
			str("backend", camBackend).Values,
		timeout: itemCaptureTimeout,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CommitItem(ctx context.Context, purchaseID uint, item models.ItemDraft, r models.Rounding) (*models.PurchaseItem, error) {
	var out models.PurchaseItem
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    itemsPath(purchaseID) + "/commit",
		query:   newQuery().rounding(r).Values,
		body:    JSON(item),
		timeout: itemCaptureTimeout,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AddItem adds a line without a photo.
func (c *Client) AddItem(ctx context.Context, purchaseID uint, item models.ItemDraft, r models.Rounding) (*models.PurchaseItem, error) {
	item.PhotoBase64 = ""
	var out models.PurchaseItem
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   itemsPath(purchaseID),
		query:  newQuery().rounding(r).Values,
		body:   JSON(item),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateItemPrice(ctx context.Context, purchaseID, itemID uint, price decimal.Decimal, r models.Rounding) error {
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   itemsPath(purchaseID) + "/" + itoa(itemID),
		query:  newQuery().rounding(r).Values,
		body:   JSON(map[string]decimal.Decimal{"price": price}),
	}, nil)
}

func (c *Client) DeleteItem(ctx context.Context, purchaseID, itemID uint) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   itemsPath(purchaseID) + "/" + itoa(itemID),
	}, nil)
}

func (c *Client) ReadScale(ctx context.Context, timeoutMS, lines int) (*models.ScaleReading, error) {
	var out models.ScaleReading
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/purchases/scale/read",
		query:   newQuery().int("timeout_ms", timeoutMS).int("lines", lines).Values,
		timeout: scaleTimeout,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// LiveCamera opens the backend's MJPEG stream for the item camera.
func (c *Client) LiveCamera(ctx context.Context, purchaseID uint) (*Stream, error) {
	return c.stream(ctx, request{method: http.MethodGet, path: itemsPath(purchaseID) + "/live"})
}
