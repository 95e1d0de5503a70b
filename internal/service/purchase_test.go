package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"buyback-pos/config"
	"buyback-pos/internal/backend"
	"buyback-pos/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPurchaseService(t *testing.T) (*PurchaseService, *fakeBackend, *memoryAudit) {
	t.Helper()
	api := newFakeBackend()
	api.prices[1] = decimal.NewFromInt(40)
	audit := &memoryAudit{}
	return NewPurchaseService(api, config.DefaultHardwareProfile(), audit, quietLogger), api, audit
}

func TestPreviewNeverCommits(t *testing.T) {
	svc, api, _ := newPurchaseService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		card, err := svc.PreviewIDCard(ctx)
		require.NoError(t, err)
		assert.Equal(t, "1101700203451", card.NationalID)

		photo, err := svc.PreviewAnonymous(ctx)
		require.NoError(t, err)
		assert.Equal(t, "QUJD", photo)
	}

	assert.Equal(t, 2, api.count("PreviewIDCard"))
	assert.Equal(t, 2, api.count("PreviewAnonymous"))
	assert.Equal(t, 0, api.commits())
	assert.Nil(t, api.open)
}

func TestAnonymousFlowPricesLine(t *testing.T) {
	svc, api, audit := newPurchaseService(t)
	ctx := context.Background()

	photo, err := svc.PreviewAnonymous(ctx)
	require.NoError(t, err)

	id, err := svc.CommitAnonymous(ctx, "data:image/jpeg;base64,"+photo)
	require.NoError(t, err)
	assert.Equal(t, api.open.ID, id)

	err = svc.AddItem(ctx, id, models.ItemDraft{
		ProdID:      1,
		Weight:      decimal.RequireFromString("1.25"),
		PhotoBase64: "SVRFTQ==",
	}, models.RoundNone)
	require.NoError(t, err)

	cart, err := svc.Cart(ctx, id)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, "50.00", cart.Items[0].Price.StringFixed(2))
	assert.Equal(t, "50.00", cart.TotalAmount.StringFixed(2))
	assert.Equal(t, 1, api.count("CommitItem"))
	assert.Equal(t, []string{models.AuditBillOpened, models.AuditItemAdded}, audit.actions())
}

func TestAddItemNeverReadsCart(t *testing.T) {
	svc, api, _ := newPurchaseService(t)
	ctx := context.Background()
	draft := models.ItemDraft{ProdID: 1, Weight: decimal.NewFromInt(2), PhotoBase64: "SVRFTQ=="}

	api.commitErr = &backend.APIError{Status: http.StatusBadRequest, Detail: "product inactive"}
	err := svc.AddItem(ctx, 5, draft, models.RoundNone)
	require.Error(t, err)
	assert.Equal(t, "product inactive", Message(err))

	api.commitErr = nil
	require.NoError(t, svc.AddItem(ctx, 5, draft, models.RoundNone))
	assert.Len(t, api.items, 1)
	assert.Equal(t, 0, api.count("ListItems"))
	assert.Equal(t, 0, api.count("ItemsSummary"))
}

func TestAddItemGuards(t *testing.T) {
	tests := []struct {
		name  string
		draft models.ItemDraft
		field string
	}{
		{"no product", models.ItemDraft{Weight: decimal.NewFromInt(1), PhotoBase64: "x"}, "prod_id"},
		{"zero weight", models.ItemDraft{ProdID: 1, PhotoBase64: "x"}, "weight"},
		{"negative weight", models.ItemDraft{ProdID: 1, Weight: decimal.NewFromInt(-1), PhotoBase64: "x"}, "weight"},
		{"no photo", models.ItemDraft{ProdID: 1, Weight: decimal.NewFromInt(1)}, "photo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, api, _ := newPurchaseService(t)

			err := svc.AddItem(context.Background(), 5, tt.draft, models.RoundNone)
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
			assert.Equal(t, 0, api.commits())
		})
	}
}

func TestAddItemWithoutPhotoWhenOptional(t *testing.T) {
	api := newFakeBackend()
	hw := config.DefaultHardwareProfile()
	hw.PhotoRequired = false
	svc := NewPurchaseService(api, hw, nil, quietLogger)

	err := svc.AddItem(context.Background(), 5, models.ItemDraft{ProdID: 1, Weight: decimal.NewFromInt(1)}, models.RoundNone)
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("AddItem"))
	assert.Equal(t, 0, api.count("CommitItem"))
}

func TestStaleBillBlocksIdentification(t *testing.T) {
	svc, api, audit := newPurchaseService(t)
	ctx := context.Background()
	api.open = &models.Purchase{ID: 44, Status: models.PurchaseStatusOpen}

	open, err := svc.CheckOpen(ctx)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, uint(44), open.ID)

	_, err = svc.OpenForCustomer(ctx, 3)
	assert.ErrorIs(t, err, ErrStaleBill)
	_, err = svc.PreviewIDCard(ctx)
	assert.ErrorIs(t, err, ErrStaleBill)
	assert.Equal(t, 0, api.commits())

	require.NoError(t, svc.DiscardOpen(ctx))
	assert.Equal(t, 1, api.count("DeleteOpenPurchase"))

	id, err := svc.OpenForCustomer(ctx, 3)
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, []string{models.AuditBillDiscarded, models.AuditBillOpened}, audit.actions())
}

func TestCommitValidation(t *testing.T) {
	svc, api, _ := newPurchaseService(t)
	ctx := context.Background()

	_, err := svc.CommitIDCard(ctx, models.IDCard{Address: "Bangkok"})
	assert.Error(t, err)
	_, err = svc.CommitAnonymous(ctx, " ")
	assert.Error(t, err)
	_, err = svc.OpenForCustomer(ctx, 0)
	assert.Error(t, err)

	assert.Equal(t, 0, api.commits())
	assert.Equal(t, 0, api.count("GetOpenPurchase"))
}

func TestCartFallsBackToItemTotals(t *testing.T) {
	svc, api, _ := newPurchaseService(t)
	api.items = []models.PurchaseItem{
		{ID: 1, Weight: decimal.RequireFromString("1.5"), Price: decimal.NewFromInt(60)},
		{ID: 2, Weight: decimal.RequireFromString("2"), Price: decimal.RequireFromString("15.50")},
	}

	api.summary = &models.PurchaseSummary{TotalWeight: decimal.RequireFromString("3.5")}
	cart, err := svc.Cart(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "75.50", cart.TotalAmount.StringFixed(2))
	assert.Equal(t, "3.5", cart.TotalWeight.String())

	api.summary = nil
	api.summaryErr = backend.ErrTimeout
	cart, err = svc.Cart(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "75.50", cart.TotalAmount.StringFixed(2))
}

func TestEditPriceAndRemove(t *testing.T) {
	svc, api, _ := newPurchaseService(t)
	ctx := context.Background()
	api.items = []models.PurchaseItem{{ID: 9, ProdID: 1, Weight: decimal.NewFromInt(2), Price: decimal.NewFromInt(80)}}

	assert.Error(t, svc.EditPrice(ctx, 1, 9, "abc", models.RoundNone))
	assert.Error(t, svc.EditPrice(ctx, 1, 9, "-1", models.RoundNone))
	assert.Equal(t, 0, api.count("UpdateItemPrice"))

	require.NoError(t, svc.EditPrice(ctx, 1, 9, "1,050.5", models.RoundNone))
	cart, err := svc.Cart(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "1050.50", cart.TotalAmount.StringFixed(2))

	require.NoError(t, svc.RemoveItem(ctx, 1, 9))
	cart, err = svc.Cart(ctx, 1)
	require.NoError(t, err)
	assert.True(t, cart.Empty())
}

func TestPay(t *testing.T) {
	svc, api, audit := newPurchaseService(t)
	ctx := context.Background()

	_, err := svc.Pay(ctx, 1, "bitcoin", false)
	assert.Error(t, err)

	_, err = svc.Pay(ctx, 1, models.PaymentCash, false)
	assert.Error(t, err, "empty bill")
	assert.Equal(t, 0, api.count("Pay"))

	api.items = []models.PurchaseItem{{ID: 1, Weight: decimal.NewFromInt(1), Price: decimal.NewFromInt(40)}}
	api.payResult = models.PayResult{WillPrint: true, PrintError: "printer offline"}

	res, err := svc.Pay(ctx, 1, " Transfer ", true)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentTransfer, api.lastPay)
	assert.True(t, res.WillPrint)
	assert.False(t, res.Printed)
	assert.Equal(t, "printer offline", res.PrintError)
	assert.Equal(t, []string{models.AuditBillPaid}, audit.actions())
}

func TestEstimateLine(t *testing.T) {
	tests := []struct {
		weight, price string
		rounding      models.Rounding
		want          string
	}{
		{"1.25", "40", models.RoundNone, "50.00"},
		{"0.333", "12", models.RoundNone, "4.00"},
		{"1.3", "12.5", models.RoundNone, "16.25"},
		{"1.3", "12.5", models.RoundHalfUp, "16.00"},
		{"1.3", "12.9", models.RoundHalfUp, "17.00"},
		{"0", "40", models.RoundNone, "0.00"},
	}

	for _, tt := range tests {
		got := EstimateLine(decimal.RequireFromString(tt.weight), decimal.RequireFromString(tt.price), tt.rounding)
		assert.Equal(t, tt.want, got.StringFixed(2), "%s x %s", tt.weight, tt.price)
	}
}

func TestParseRounding(t *testing.T) {
	assert.Equal(t, models.RoundHalfUp, ParseRounding("HALF_UP"))
	assert.Equal(t, models.RoundNone, ParseRounding(""))
	assert.Equal(t, models.RoundNone, ParseRounding("floor"))
}
