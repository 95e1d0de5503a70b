package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"buyback-pos/internal/backend"
	"buyback-pos/internal/models"
	"buyback-pos/internal/service"

	"github.com/gin-gonic/gin"
)

const maxImageSize = 5 << 20

// ProductAPI is what the product grid reads.
type ProductAPI interface {
	FilterProducts(ctx context.Context, f backend.ProductFilter) ([]models.Product, error)
	ListProducts(ctx context.Context, includeInactive bool) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type ProductHandler struct {
	*Renderer
	api     ProductAPI
	catalog *service.CatalogService
}

func NewProductHandler(r *Renderer, api ProductAPI, catalog *service.CatalogService) *ProductHandler {
	return &ProductHandler{Renderer: r, api: api, catalog: catalog}
}

type productsPage struct {
	Query      url.Values
	Filter     backend.ProductFilter
	Products   []models.Product
	Categories []models.Category
	Modal      string
	Form       productFormView
	FormError  string
}

// productFormView keeps what the operator typed so a rejected form
// reopens filled in.
type productFormView struct {
	ID         uint
	Name       string
	Price      string
	CategoryID uint
	Image      string
	Active     bool
}

func (h *ProductHandler) List(c *gin.Context) {
	data, err := h.load(c, c.Request.URL.Query())
	if err != nil {
		h.fail(c, "products", err)
		return
	}

	switch {
	case c.Query("modal") == "add":
		data.Modal = "add"
		data.Form = productFormView{CategoryID: data.Filter.CategoryID}
	case queryID(c, "edit") > 0:
		p, err := h.find(c.Request.Context(), data.Products, queryID(c, "edit"))
		if err != nil {
			h.fail(c, "products", err)
			return
		}
		data.Modal = "edit"
		data.Form = productFormView{
			ID:         p.ID,
			Name:       p.Name,
			Price:      p.Price.StringFixed(2),
			CategoryID: p.CategoryID,
			Image:      p.Image,
			Active:     p.IsActive,
		}
	}
	h.render(c, http.StatusOK, "products", "Products", "products", data)
}

// load reads the grid for the filter in the query string. Disabled products
// are dropped here too unless the operator asked to see them.
func (h *ProductHandler) load(c *gin.Context, q url.Values) (*productsPage, error) {
	includeInactive, _ := strconv.ParseBool(q.Get("include_inactive"))
	f := backend.ProductFilter{
		Query:           strings.TrimSpace(q.Get("q")),
		CategoryID:      valuesID(q, "category_id"),
		IncludeInactive: includeInactive,
	}
	ctx := c.Request.Context()

	products, err := h.api.FilterProducts(ctx, f)
	if err != nil {
		return nil, err
	}
	if !f.IncludeInactive {
		active := products[:0]
		for _, p := range products {
			if p.IsActive {
				active = append(active, p)
			}
		}
		products = active
	}

	categories, err := h.api.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return &productsPage{
		Query:      q,
		Filter:     f,
		Products:   products,
		Categories: categories,
	}, nil
}

// find looks the product up in the grid first; a product filtered out of
// the grid is looked up in the full list.
func (h *ProductHandler) find(ctx context.Context, shown []models.Product, id uint) (*models.Product, error) {
	for i := range shown {
		if shown[i].ID == id {
			return &shown[i], nil
		}
	}
	all, err := h.api.ListProducts(ctx, true)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, &backend.APIError{Method: http.MethodGet, Path: "/products", Status: http.StatusNotFound, Detail: fmt.Sprintf("Product %d not found.", id)}
}

func (h *ProductHandler) Create(c *gin.Context) {
	form, err := h.bind(c)
	if err == nil {
		_, err = h.catalog.CreateProduct(c.Request.Context(), form)
	}
	if err != nil {
		h.reopen(c, "add", 0, err)
		return
	}
	redirectFlash(c, h.back(c), "Product "+form.Name+" added.")
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.notFound(c, "products")
		return
	}
	form, err := h.bind(c)
	if err == nil {
		_, err = h.catalog.UpdateProduct(c.Request.Context(), id, form)
	}
	if err != nil {
		h.reopen(c, "edit", id, err)
		return
	}
	redirectFlash(c, h.back(c), "Product "+form.Name+" saved.")
}

func (h *ProductHandler) SetActive(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.notFound(c, "products")
		return
	}
	active, _ := strconv.ParseBool(c.PostForm("active"))
	if err := h.catalog.SetProductActive(c.Request.Context(), id, active); err != nil {
		redirectError(c, h.back(c), err)
		return
	}
	msg := "Product disabled."
	if active {
		msg = "Product enabled."
	}
	redirectFlash(c, h.back(c), msg)
}

func (h *ProductHandler) CreateCategory(c *gin.Context) {
	cat, err := h.catalog.CreateCategory(c.Request.Context(), c.PostForm("category_name"))
	if err != nil {
		redirectError(c, h.back(c), err)
		return
	}
	redirectFlash(c, h.back(c), "Category "+cat.Name+" added.")
}

// bind validates the modal fields and reads the optional image. Nothing is
// sent to the backend when it fails.
func (h *ProductHandler) bind(c *gin.Context) (models.ProductForm, error) {
	form, err := service.ValidateProductForm(c.PostForm("prod_name"), c.PostForm("prod_price"), c.PostForm("category_id"))
	if err != nil {
		return form, err
	}
	up, err := readUpload(c, "imageFile")
	if err != nil {
		return form, err
	}
	form.Image = up
	return form, nil
}

// reopen draws the grid again with the modal open and the error inline.
func (h *ProductHandler) reopen(c *gin.Context, modal string, id uint, formErr error) {
	q := url.Values{}
	if next, err := url.Parse(h.back(c)); err == nil {
		q = next.Query()
	}
	data, err := h.load(c, q)
	if err != nil {
		h.fail(c, "products", err)
		return
	}
	data.Modal = modal
	data.FormError = service.Message(formErr)
	data.Form = productFormView{
		ID:         id,
		Name:       c.PostForm("prod_name"),
		Price:      c.PostForm("prod_price"),
		CategoryID: formID(c, "category_id"),
		Image:      c.PostForm("current_image"),
		Active:     true,
	}
	h.renderInline(c, "products", "Products", "products", data, formErr)
}

// back is the grid URL the modal was opened from, without modal state.
func (h *ProductHandler) back(c *gin.Context) string {
	return stripState(localPath(c.PostForm("next"), "/products"))
}

// readUpload returns nil when no file was chosen.
func readUpload(c *gin.Context, field string) (*models.Upload, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, &service.ValidationError{Field: field, Message: "The image could not be read."}
	}
	if fh.Size > maxImageSize {
		return nil, &service.ValidationError{Field: field, Message: "The image is larger than 5 MB."}
	}
	return openUpload(fh)
}

func openUpload(fh *multipart.FileHeader) (*models.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageSize+1))
	if err != nil {
		return nil, err
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return &models.Upload{Filename: fh.Filename, ContentType: ct, Data: data}, nil
}
