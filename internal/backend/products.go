package backend

import (
	"context"
	"net/http"
	"strings"

	"buyback-pos/internal/models"
)

const productSearchLimit = 50

func (c *Client) ListProducts(ctx context.Context, includeInactive bool) ([]models.Product, error) {
	var out []models.Product
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/products/",
		query:  newQuery().bool("include_inactive", includeInactive).Values,
	}, &out)
	return out, err
}

func (c *Client) ListProductsByCategory(ctx context.Context, categoryID uint, includeInactive bool) ([]models.Product, error) {
	var out []models.Product
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/products/by-category/" + itoa(categoryID),
		query:  newQuery().bool("include_inactive", includeInactive).Values,
	}, &out)
	return out, err
}

func (c *Client) SearchProducts(ctx context.Context, q string, limit, offset int, includeInactive bool) ([]models.Product, error) {
	if limit <= 0 {
		limit = productSearchLimit
	}
	if offset < 0 {
		offset = 0
	}
	var out []models.Product
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/products/search",
		query: newQuery().
			str("q", q).
			int("limit", limit).
			int("offset", offset).
			bool("include_inactive", includeInactive).Values,
	}, &out)
	return out, err
}

// ProductFilter is the product grid's filter bar.
type ProductFilter struct {
	Query           string
	CategoryID      uint
	IncludeInactive bool
}

// FilterProducts picks the endpoint matching the filter. Search has no
// category parameter, so a combined filter narrows the search result here.
func (c *Client) FilterProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := strings.TrimSpace(f.Query)
	switch {
	case q != "" && f.CategoryID > 0:
		found, err := c.SearchProducts(ctx, q, productSearchLimit, 0, f.IncludeInactive)
		if err != nil {
			return nil, err
		}
		out := found[:0]
		for _, p := range found {
			if p.CategoryID == f.CategoryID {
				out = append(out, p)
			}
		}
		return out, nil
	case q != "":
		return c.SearchProducts(ctx, q, productSearchLimit, 0, f.IncludeInactive)
	case f.CategoryID > 0:
		return c.ListProductsByCategory(ctx, f.CategoryID, f.IncludeInactive)
	}
	return c.ListProducts(ctx, f.IncludeInactive)
}

func productForm(f models.ProductForm) *Form {
	return NewForm().
		Set("prod_name", strings.TrimSpace(f.Name)).
		Set("prod_price", f.Price.String()).
		Set("category_id", itoa(f.CategoryID)).
		File("imageFile", f.Image)
}

func (c *Client) CreateProduct(ctx context.Context, f models.ProductForm) (*models.Product, error) {
	var out models.Product
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/products/",
		body:   Multipart(productForm(f)),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id uint, f models.ProductForm) (*models.Product, error) {
	var out models.Product
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/products/" + itoa(id),
		body:   Multipart(productForm(f)),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetProductActive is the soft delete: inactive products keep their history.
func (c *Client) SetProductActive(ctx context.Context, id uint, active bool) error {
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   "/products/" + itoa(id) + "/active",
		body:   JSON(map[string]bool{"is_active": active}),
	}, nil)
}
