package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"buyback-pos/internal/models"

	"github.com/shopspring/decimal"
)

// CatalogBackend is what the product and stock screens write through.
type CatalogBackend interface {
	CreateProduct(ctx context.Context, f models.ProductForm) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uint, f models.ProductForm) (*models.Product, error)
	SetProductActive(ctx context.Context, id uint, active bool) error
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	SellInventory(ctx context.Context, lines []models.SellLine) (*models.SellResult, error)
}

type CatalogService struct {
	api   CatalogBackend
	audit auditor
}

func NewCatalogService(api CatalogBackend, audit AuditLog, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{
		api:   api,
		audit: auditor{log: audit, logger: logger.With("component", "catalog")},
	}
}

// ValidateProductForm checks the product modal fields. A failure means no
// request is sent.
func ValidateProductForm(name, price, categoryID string) (models.ProductForm, error) {
	var f models.ProductForm

	f.Name = strings.TrimSpace(name)
	if f.Name == "" {
		return f, invalid("prod_name", "Product name is required.")
	}

	p, err := ParseAmount(price)
	if err != nil {
		return f, invalid("prod_price", "Price must be a number.")
	}
	if p.IsNegative() {
		return f, invalid("prod_price", "Price cannot be negative.")
	}
	f.Price = p

	id, err := strconv.ParseUint(strings.TrimSpace(categoryID), 10, 64)
	if err != nil || id == 0 {
		return f, invalid("category_id", "Choose a category.")
	}
	f.CategoryID = uint(id)
	return f, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, f models.ProductForm) (*models.Product, error) {
	p, err := s.api.CreateProduct(ctx, f)
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, models.AuditProductCreated, 0, fmt.Sprintf("#%d %s", p.ID, f.Name))
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, f models.ProductForm) (*models.Product, error) {
	p, err := s.api.UpdateProduct(ctx, id, f)
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, models.AuditProductUpdated, 0, fmt.Sprintf("#%d %s %s", id, f.Name, f.Price.StringFixed(2)))
	return p, nil
}

func (s *CatalogService) SetProductActive(ctx context.Context, id uint, active bool) error {
	if err := s.api.SetProductActive(ctx, id, active); err != nil {
		return err
	}
	action := models.AuditProductDisabled
	if active {
		action = models.AuditProductEnabled
	}
	s.audit.record(ctx, action, 0, fmt.Sprintf("#%d", id))
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("category_name", "Category name is required.")
	}
	c, err := s.api.CreateCategory(ctx, name)
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, models.AuditCategoryCreated, 0, name)
	return c, nil
}

// SellCandidate is a ticked row of the inventory table with the quantity
// typed into the sell modal.
type SellCandidate struct {
	ProdID  uint
	Qty     string
	Balance decimal.Decimal
	Note    string
}

// ValidateSellLines keeps the rows with 0 < qty <= balance.
func ValidateSellLines(candidates []SellCandidate) ([]models.SellLine, error) {
	lines := make([]models.SellLine, 0, len(candidates))
	for _, c := range candidates {
		if c.ProdID == 0 {
			continue
		}
		qty, err := ParseAmount(c.Qty)
		if err != nil || !qty.IsPositive() || qty.GreaterThan(c.Balance) {
			continue
		}
		lines = append(lines, models.SellLine{
			ProdID:     c.ProdID,
			WeightSold: qty,
			Note:       strings.TrimSpace(c.Note),
		})
	}
	if len(lines) == 0 {
		return nil, invalid("qty", "Enter a quantity between 0 and the balance for at least one item.")
	}
	return lines, nil
}

func (s *CatalogService) Sell(ctx context.Context, candidates []SellCandidate) (*models.SellResult, error) {
	lines, err := ValidateSellLines(candidates)
	if err != nil {
		return nil, err
	}
	res, err := s.api.SellInventory(ctx, lines)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		s.audit.record(ctx, models.AuditStockSold, 0,
			fmt.Sprintf("prod #%d %s kg", l.ProdID, l.WeightSold.String()))
	}
	return res, nil
}
