package backend

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"buyback-pos/internal/models"
)

// ListCategories returns categories sorted by name.
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := c.do(ctx, request{method: http.MethodGet, path: "/categories/"}, &out); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	var out models.Category
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/categories/",
		body:   JSON(map[string]string{"category_name": strings.TrimSpace(name)}),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
