package backend

import (
	"context"
	"net/http"
	"time"

	"buyback-pos/internal/models"
	"buyback-pos/internal/paging"
)

const customerLookupTimeout = 15 * time.Second

func (c *Client) ListCustomers(ctx context.Context, q string, p paging.Params) (models.Page[models.Customer], error) {
	var out models.Page[models.Customer]
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/customers/",
		query:  newQuery().str("q", q).page(p).Values,
	}, &out)
	return out, err
}

// CustomerDetail returns the customer's purchase history; every row carries
// the customer fields too.
func (c *Client) CustomerDetail(ctx context.Context, id uint, p paging.Params) (models.Page[models.CustomerPurchaseLine], error) {
	var out models.Page[models.CustomerPurchaseLine]
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/customers/" + itoa(id),
		query:  newQuery().page(p).Values,
	}, &out)
	return out, err
}

// SearchPurchaseCustomers backs the open-bill-for-customer screen. Filtering
// is always server side.
func (c *Client) SearchPurchaseCustomers(ctx context.Context, q string, p paging.Params) (models.Page[models.Customer], error) {
	p = paging.Normalize(p.Page, p.PerPage)
	var out models.Page[models.Customer]
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/purchases/customers",
		query:   newQuery().str("q", q).int("page", p.Page).int("page_size", p.PerPage).Values,
		timeout: customerLookupTimeout,
	}, &out)
	return out, err
}
