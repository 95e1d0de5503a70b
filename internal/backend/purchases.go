package backend

import (
	"context"
	"net/http"
	"time"

	"buyback-pos/internal/models"
)

const (
	openCheckTimeout     = 10 * time.Second
	idCardTimeout        = 30 * time.Second
	anonymousTimeout     = 25 * time.Second
	quickOpenTimeout     = 20 * time.Second
	cameraStatusTimeout  = 8 * time.Second
	onOpenReturnExisting = "return"
)

// quickOpenOptions are sent with every committing quick-open call. The
// front-end always asks the backend to return an existing open bill rather
// than replace it; stale bills are handled before any commit is attempted.
type quickOpenOptions struct {
	OnOpen        string `json:"on_open"`
	ConfirmDelete bool   `json:"confirm_delete"`
}

var keepOpenBill = quickOpenOptions{OnOpen: onOpenReturnExisting}

// GetOpenPurchase returns the open bill, or nil when there is none.
func (c *Client) GetOpenPurchase(ctx context.Context) (*models.Purchase, error) {
	var out *models.Purchase
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/purchases/open",
		timeout: openCheckTimeout,
	}, &out)
	if err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if out != nil && out.ID == 0 {
		return nil, nil
	}
	return out, nil
}

func (c *Client) DeleteOpenPurchase(ctx context.Context) error {
	return c.do(ctx, request{
		method:  http.MethodDelete,
		path:    "/purchases/open",
		query:   newQuery().bool("confirm", true).Values,
		timeout: openCheckTimeout,
	}, nil)
}

// PreviewIDCard reads the card without saving anything.
func (c *Client) PreviewIDCard(ctx context.Context, readerIndex int, withPhoto bool) (*models.IDCard, error) {
	photo := 0
	if withPhoto {
		photo = 1
	}
	var out models.IDCard
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/purchases/quick-open/idcard/preview",
		query:   newQuery().int("reader_index", readerIndex).int("with_photo", photo).Values,
		timeout: idCardTimeout,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CommitIDCard creates or links the customer and opens a bill.
func (c *Client) CommitIDCard(ctx context.Context, card models.IDCard) (*models.QuickOpenResult, error) {
	payload := struct {
		NationalID  string  `json:"national_id"`
		FullName    *string `json:"full_name"`
		Address     *string `json:"address"`
		PhotoBase64 string  `json:"photo_base64,omitempty"`
		quickOpenOptions
	}{
		NationalID:       card.NationalID,
		FullName:         nullable(card.FullName),
		Address:          nullable(card.Address),
		PhotoBase64:      card.PhotoBase64,
		quickOpenOptions: keepOpenBill,
	}

	var out models.QuickOpenResult
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/purchases/quick-open/idcard/commit",
		body:    JSON(payload),
		timeout: idCardTimeout,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type PhotoPreview struct {
	PhotoBase64 string `json:"photo_base64"`
}

// PreviewAnonymous grabs a customer snapshot without saving anything.
func (c *Client) PreviewAnonymous(ctx context.Context, deviceIndex, warmup int) (*PhotoPreview, error) {
	var out PhotoPreview
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/purchases/quick-open/anonymous/preview",
		query:   newQuery().int("device_index", deviceIndex).int("warmup", warmup).Values,
		timeout: anonymousTimeout,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CommitAnonymous(ctx context.Context, photoBase64 string) (*models.QuickOpenResult, error) {
	payload := struct {
		PhotoBase64 string `json:"photo_base64"`
		quickOpenOptions
	}{
		PhotoBase64:      photoBase64,
		quickOpenOptions: keepOpenBill,
	}

	var out models.QuickOpenResult
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/purchases/quick-open/anonymous/commit",
		body:    JSON(payload),
		timeout: anonymousTimeout,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) QuickOpenExisting(ctx context.Context, customerID uint) (*models.QuickOpenResult, error) {
	var out models.QuickOpenResult
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/purchases/quick-open/existing",
		query: newQuery().
			id("customer_id", customerID).
			str("on_open", keepOpenBill.OnOpen).
			bool("confirm_delete", keepOpenBill.ConfirmDelete).Values,
		timeout: quickOpenTimeout,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Pay(ctx context.Context, purchaseID uint, method string, printReceipt bool) (*models.PayResult, error) {
	var out models.PayResult
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/purchases/" + itoa(purchaseID) + "/pay",
		body: JSON(map[string]any{
			"payment_method": method,
			"print_receipt":  printReceipt,
		}),
		timeout: quickOpenTimeout,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PrintReceipt(ctx context.Context, purchaseID uint) (*models.PayResult, error) {
	var out models.PayResult
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/purchases/" + itoa(purchaseID) + "/print-receipt",
		timeout: quickOpenTimeout,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CameraStatus(ctx context.Context, deviceIndex int) (*models.CameraStatus, error) {
	var out models.CameraStatus
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/hardware/camera/status",
		query:   newQuery().int("device_index", deviceIndex).bool("probe_frame", true).Values,
		timeout: cameraStatusTimeout,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
