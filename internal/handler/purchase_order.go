package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"buyback-pos/internal/backend"
	"buyback-pos/internal/models"
	"buyback-pos/internal/paging"
	"buyback-pos/internal/service"

	"github.com/gin-gonic/gin"
)

type PurchaseOrderAPI interface {
	ListPurchaseLines(ctx context.Context, f backend.PurchaseLineFilter, p paging.Params) (models.Page[models.PurchaseLine], error)
	ExportPurchaseLines(ctx context.Context, f backend.PurchaseLineFilter) (*backend.Download, error)
	CustomerInfoByProduct(ctx context.Context, prodID uint) (*models.Customer, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// PurchaseOrderHandler serves the purchase history screen.
type PurchaseOrderHandler struct {
	*Renderer
	api PurchaseOrderAPI
}

func NewPurchaseOrderHandler(r *Renderer, api PurchaseOrderAPI) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{Renderer: r, api: api}
}

var perPageChoices = []int{10, 20, 50, 100}

type purchaseOrderPage struct {
	Query      url.Values
	Filter     backend.PurchaseLineFilter
	Lines      []models.PurchaseLine
	Categories []models.Category
	Pager      paging.View
	PerPage    int
	PerPages   []int
	Seller     *sellerModal
}

// sellerModal is the "who sold this" popup opened from a history row.
type sellerModal struct {
	ProdID   uint
	ProdName string
	Customer *models.Customer
	Error    string
}

func purchaseLineFilter(q url.Values) backend.PurchaseLineFilter {
	return backend.PurchaseLineFilter{
		Query:      strings.TrimSpace(q.Get("q")),
		CategoryID: valuesID(q, "category_id"),
		Dates:      backend.ParseDateRange(q.Get("date_from"), q.Get("date_to")),
	}
}

func (h *PurchaseOrderHandler) List(c *gin.Context) {
	q := c.Request.URL.Query()
	f := purchaseLineFilter(q)
	p := paging.FromValues(q, h.PerPage)
	ctx := c.Request.Context()

	pg, err := h.api.ListPurchaseLines(ctx, f, p)
	if err != nil {
		h.fail(c, "purchase-order", err)
		return
	}
	categories, err := h.api.ListCategories(ctx)
	if err != nil {
		h.fail(c, "purchase-order", err)
		return
	}

	data := purchaseOrderPage{
		Query:      q,
		Filter:     f,
		Lines:      pg.Items,
		Categories: categories,
		Pager:      pager(pg, p),
		PerPage:    p.PerPage,
		PerPages:   perPageChoices,
	}

	// The popup failing must not take the list down with it.
	if prodID := valuesID(q, "customer"); prodID > 0 {
		m := &sellerModal{ProdID: prodID}
		for _, l := range pg.Items {
			if l.ProdID == prodID {
				m.ProdName = l.ProdName
				break
			}
		}
		cust, err := h.api.CustomerInfoByProduct(ctx, prodID)
		if err != nil {
			h.log(c, statusFor(err), err)
			m.Error = service.Message(err)
		}
		m.Customer = cust
		data.Seller = m
	}
	h.render(c, http.StatusOK, "purchase_order", "Purchases", "purchase-order", data)
}

// Export downloads the history sheet for the current filter, ignoring
// paging. On failure the list comes back unchanged with the error shown.
func (h *PurchaseOrderHandler) Export(c *gin.Context) {
	q := c.Request.URL.Query()
	d, err := h.api.ExportPurchaseLines(c.Request.Context(), purchaseLineFilter(q))
	if err != nil {
		redirectError(c, "/purchase-order?"+q.Encode(), err)
		return
	}
	attachment(c, d)
}
