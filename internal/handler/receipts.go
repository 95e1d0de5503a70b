package handler

import (
	"context"
	"net/http"
	"net/url"

	"buyback-pos/internal/backend"
	"buyback-pos/internal/models"
	"buyback-pos/internal/paging"
	"buyback-pos/internal/service"

	"github.com/gin-gonic/gin"
)

type ReceiptAPI interface {
	ListReceipts(ctx context.Context, r backend.DateRange, p paging.Params) (models.Page[models.Receipt], error)
	ReceiptImages(ctx context.Context, purchaseID uint) (*models.ReceiptImages, error)
}

type ReceiptHandler struct {
	*Renderer
	api ReceiptAPI
}

func NewReceiptHandler(r *Renderer, api ReceiptAPI) *ReceiptHandler {
	return &ReceiptHandler{Renderer: r, api: api}
}

type receiptsPage struct {
	Query       url.Values
	Dates       backend.DateRange
	Receipts    []models.Receipt
	Pager       paging.View
	Images      *models.ReceiptImages
	ImagesError string
}

// List shows paid bills. images=<purchase_id> opens the photo modal, whose
// images are loaded only then.
func (h *ReceiptHandler) List(c *gin.Context) {
	q := c.Request.URL.Query()
	dates := backend.ParseDateRange(q.Get("date_from"), q.Get("date_to"))
	p := paging.FromValues(q, h.PerPage)
	ctx := c.Request.Context()

	pg, err := h.api.ListReceipts(ctx, dates, p)
	if err != nil {
		h.fail(c, "receipts", err)
		return
	}
	data := receiptsPage{
		Query:    q,
		Dates:    dates,
		Receipts: pg.Items,
		Pager:    pager(pg, p),
	}

	if id := valuesID(q, "images"); id > 0 {
		imgs, err := h.api.ReceiptImages(ctx, id)
		if err != nil {
			h.log(c, statusFor(err), err)
			data.ImagesError = service.Message(err)
			imgs = &models.ReceiptImages{PurchaseID: id}
		}
		data.Images = imgs
	}
	h.render(c, http.StatusOK, "receipts", "Receipts", "receipts", data)
}
