package service

import (
	"context"
	"errors"
	"testing"

	"buyback-pos/internal/backend"
	"buyback-pos/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProductForm(t *testing.T) {
	tests := []struct {
		name, prodName, price, category string
		field                           string
	}{
		{"empty name", "   ", "10", "1", "prod_name"},
		{"price not numeric", "Copper", "ten", "1", "prod_price"},
		{"negative price", "Copper", "-1", "1", "prod_price"},
		{"no category", "Copper", "10", "", "category_id"},
		{"zero category", "Copper", "10", "0", "category_id"},
		{"ok", " Copper ", "1,200.50", "3", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ValidateProductForm(tt.prodName, tt.price, tt.category)
			if tt.field == "" {
				require.NoError(t, err)
				assert.Equal(t, "Copper", f.Name)
				assert.Equal(t, "1200.5", f.Price.String())
				assert.Equal(t, uint(3), f.CategoryID)
				return
			}
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestValidateSellLines(t *testing.T) {
	balance := decimal.NewFromInt(10)
	lines, err := ValidateSellLines([]SellCandidate{
		{ProdID: 1, Qty: "4", Balance: balance, Note: " to foundry "},
		{ProdID: 2, Qty: "0", Balance: balance},
		{ProdID: 3, Qty: "11", Balance: balance},
		{ProdID: 4, Qty: "x", Balance: balance},
		{ProdID: 5, Qty: "10", Balance: balance},
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, uint(1), lines[0].ProdID)
	assert.Equal(t, "to foundry", lines[0].Note)
	assert.Equal(t, uint(5), lines[1].ProdID)

	_, err = ValidateSellLines([]SellCandidate{{ProdID: 2, Qty: "20", Balance: balance}})
	assert.Error(t, err)
}

func TestCatalogSellSkipsBackendWhenInvalid(t *testing.T) {
	api := newFakeBackend()
	audit := &memoryAudit{}
	svc := NewCatalogService(api, audit, quietLogger)

	_, err := svc.Sell(context.Background(), []SellCandidate{{ProdID: 1, Qty: "0", Balance: decimal.NewFromInt(1)}})
	assert.Error(t, err)
	assert.Equal(t, 0, api.count("SellInventory"))

	_, err = svc.Sell(context.Background(), []SellCandidate{{ProdID: 1, Qty: "0.5", Balance: decimal.NewFromInt(1)}})
	require.NoError(t, err)
	assert.Len(t, api.sold, 1)
	assert.Equal(t, []string{models.AuditStockSold}, audit.actions())
}

func TestCatalogAudit(t *testing.T) {
	api := newFakeBackend()
	audit := &memoryAudit{}
	svc := NewCatalogService(api, audit, quietLogger)
	ctx := WithActor(backend.WithRequestID(context.Background(), "req-1"), 12)

	_, err := svc.CreateProduct(ctx, models.ProductForm{Name: "Copper", Price: decimal.NewFromInt(40), CategoryID: 1})
	require.NoError(t, err)
	require.NoError(t, svc.SetProductActive(ctx, 1, false))
	require.NoError(t, svc.SetProductActive(ctx, 1, true))
	_, err = svc.CreateCategory(ctx, " ")
	assert.Error(t, err)

	assert.Equal(t, []string{models.AuditProductCreated, models.AuditProductDisabled, models.AuditProductEnabled}, audit.actions())
	assert.Equal(t, uint(12), audit.entries[0].UserID)
	assert.Equal(t, "req-1", audit.entries[0].RequestID)
	assert.Equal(t, 0, api.count("CreateCategory"))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "Choose a category.", Message(invalid("category_id", "Choose a category.")))
	assert.Equal(t, "Request failed (502 Bad Gateway)", Message(&backend.APIError{Status: 502}))
	assert.Contains(t, Message(backend.ErrTimeout), "did not answer")
	assert.Contains(t, Message(backend.ErrUnavailable), "Cannot reach")
	assert.Contains(t, Message(ErrStaleBill), "still open")
	assert.Equal(t, "boom", Message(errors.New("boom")))
}
