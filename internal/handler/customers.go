package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"buyback-pos/internal/models"
	"buyback-pos/internal/paging"

	"github.com/gin-gonic/gin"
)

type CustomerAPI interface {
	ListCustomers(ctx context.Context, q string, p paging.Params) (models.Page[models.Customer], error)
	CustomerDetail(ctx context.Context, id uint, p paging.Params) (models.Page[models.CustomerPurchaseLine], error)
}

type CustomerHandler struct {
	*Renderer
	api CustomerAPI
}

func NewCustomerHandler(r *Renderer, api CustomerAPI) *CustomerHandler {
	return &CustomerHandler{Renderer: r, api: api}
}

// Longest first, so นางสาว is not read as นาง.
var honorifics = []string{"นางสาว", "น.ส.", "นาง", "นาย", "Miss ", "Mrs. ", "Mrs ", "Mr. ", "Mr ", "Ms. ", "Ms "}

// SearchTerm drops a leading title, since the backend stores bare names.
func SearchTerm(raw string) string {
	q := strings.TrimSpace(raw)
	for _, h := range honorifics {
		if len(q) > len(h) && strings.EqualFold(q[:len(h)], h) {
			return strings.TrimSpace(q[len(h):])
		}
	}
	return q
}

type customersPage struct {
	Query     url.Values
	Search    string
	Customers []models.Customer
	Pager     paging.View
}

func (h *CustomerHandler) List(c *gin.Context) {
	search := strings.TrimSpace(c.Query("q"))
	p := paging.FromQuery(c, h.PerPage)

	pg, err := h.api.ListCustomers(c.Request.Context(), SearchTerm(search), p)
	if err != nil {
		h.fail(c, "customers", err)
		return
	}
	h.render(c, http.StatusOK, "customers", "Customers", "customers", customersPage{
		Query:     c.Request.URL.Query(),
		Search:    search,
		Customers: pg.Items,
		Pager:     pager(pg, p),
	})
}

type customerDetailPage struct {
	Query    url.Values
	Customer models.Customer
	Lines    []models.CustomerPurchaseLine
	Pager    paging.View
}

// Detail shows one customer's purchase history. Every history row repeats
// the customer fields, so the header comes from the first row.
func (h *CustomerHandler) Detail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.notFound(c, "customers")
		return
	}
	p := paging.FromQuery(c, h.PerPage)

	pg, err := h.api.CustomerDetail(c.Request.Context(), id, p)
	if err != nil {
		h.fail(c, "customers", err)
		return
	}

	cust := models.Customer{ID: id}
	if len(pg.Items) > 0 {
		first := pg.Items[0]
		cust.FullName = first.FullName
		cust.NationalID = first.NationalID
		cust.Address = first.Address
		cust.PhotoPath = first.PhotoPath
	}
	h.render(c, http.StatusOK, "customer_detail", "Customer", "customers", customerDetailPage{
		Query:    c.Request.URL.Query(),
		Customer: cust,
		Lines:    pg.Items,
		Pager:    pager(pg, p),
	})
}
