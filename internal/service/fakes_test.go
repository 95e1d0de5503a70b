package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"buyback-pos/internal/backend"
	"buyback-pos/internal/models"

	"github.com/shopspring/decimal"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeBackend holds one bill in memory and counts calls per method.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	open       *models.Purchase
	items      []models.PurchaseItem
	summary    *models.PurchaseSummary
	summaryErr error
	prices     map[uint]decimal.Decimal
	nextID     uint

	commitErr error
	payResult models.PayResult
	lastPay   string
	sold      []models.SellLine
	products  []models.ProductForm
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls:  map[string]int{},
		prices: map[uint]decimal.Decimal{},
		nextID: 100,
	}
}

func (f *fakeBackend) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) commits() int {
	return f.count("CommitIDCard") + f.count("CommitAnonymous") + f.count("QuickOpenExisting") +
		f.count("CommitItem") + f.count("AddItem")
}

func (f *fakeBackend) openBill(customerID uint) *models.QuickOpenResult {
	f.nextID++
	f.open = &models.Purchase{ID: f.nextID, Status: models.PurchaseStatusOpen}
	return &models.QuickOpenResult{PurchaseID: f.nextID, CustomerID: customerID, Status: models.PurchaseStatusOpen}
}

func (f *fakeBackend) GetOpenPurchase(context.Context) (*models.Purchase, error) {
	f.hit("GetOpenPurchase")
	return f.open, nil
}

func (f *fakeBackend) DeleteOpenPurchase(context.Context) error {
	f.hit("DeleteOpenPurchase")
	f.open = nil
	return nil
}

func (f *fakeBackend) PreviewIDCard(context.Context, int, bool) (*models.IDCard, error) {
	f.hit("PreviewIDCard")
	return &models.IDCard{NationalID: "1101700203451", FullName: "Somchai Jaidee", Address: "Bangkok"}, nil
}

func (f *fakeBackend) CommitIDCard(context.Context, models.IDCard) (*models.QuickOpenResult, error) {
	f.hit("CommitIDCard")
	return f.openBill(7), nil
}

func (f *fakeBackend) PreviewAnonymous(context.Context, int, int) (*backend.PhotoPreview, error) {
	f.hit("PreviewAnonymous")
	return &backend.PhotoPreview{PhotoBase64: "QUJD"}, nil
}

func (f *fakeBackend) CommitAnonymous(context.Context, string) (*models.QuickOpenResult, error) {
	f.hit("CommitAnonymous")
	return f.openBill(8), nil
}

func (f *fakeBackend) QuickOpenExisting(_ context.Context, customerID uint) (*models.QuickOpenResult, error) {
	f.hit("QuickOpenExisting")
	return f.openBill(customerID), nil
}

func (f *fakeBackend) ListItems(context.Context, uint) ([]models.PurchaseItem, error) {
	f.hit("ListItems")
	return append([]models.PurchaseItem(nil), f.items...), nil
}

func (f *fakeBackend) ItemsSummary(context.Context, uint) (*models.PurchaseSummary, error) {
	f.hit("ItemsSummary")
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	if f.summary != nil {
		return f.summary, nil
	}
	sum := &models.PurchaseSummary{ItemCount: len(f.items)}
	total := decimal.Zero
	for _, it := range f.items {
		sum.TotalWeight = sum.TotalWeight.Add(it.Weight)
		total = total.Add(it.Price)
	}
	sum.TotalAmount = decimal.NewNullDecimal(total)
	return sum, nil
}

func (f *fakeBackend) PreviewItemPhoto(context.Context, uint, int, int, string) (*backend.PhotoPreview, error) {
	f.hit("PreviewItemPhoto")
	return &backend.PhotoPreview{PhotoBase64: "SVRFTQ=="}, nil
}

func (f *fakeBackend) addLine(item models.ItemDraft) *models.PurchaseItem {
	f.nextID++
	line := models.PurchaseItem{
		ID:     f.nextID,
		ProdID: item.ProdID,
		Weight: item.Weight,
		Price:  item.Weight.Mul(f.prices[item.ProdID]).Round(2),
	}
	f.items = append(f.items, line)
	return &line
}

func (f *fakeBackend) CommitItem(_ context.Context, _ uint, item models.ItemDraft, _ models.Rounding) (*models.PurchaseItem, error) {
	f.hit("CommitItem")
	if f.commitErr != nil {
		return nil, f.commitErr
	}
	return f.addLine(item), nil
}

func (f *fakeBackend) AddItem(_ context.Context, _ uint, item models.ItemDraft, _ models.Rounding) (*models.PurchaseItem, error) {
	f.hit("AddItem")
	if f.commitErr != nil {
		return nil, f.commitErr
	}
	return f.addLine(item), nil
}

func (f *fakeBackend) UpdateItemPrice(_ context.Context, _, itemID uint, price decimal.Decimal, _ models.Rounding) error {
	f.hit("UpdateItemPrice")
	for i := range f.items {
		if f.items[i].ID == itemID {
			f.items[i].Price = price
		}
	}
	return nil
}

func (f *fakeBackend) DeleteItem(_ context.Context, _, itemID uint) error {
	f.hit("DeleteItem")
	kept := f.items[:0]
	for _, it := range f.items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	f.items = kept
	return nil
}

func (f *fakeBackend) ReadScale(context.Context, int, int) (*models.ScaleReading, error) {
	f.hit("ReadScale")
	return &models.ScaleReading{Weight: decimal.RequireFromString("1.25"), Unit: "kg", Stable: true}, nil
}

func (f *fakeBackend) Pay(_ context.Context, purchaseID uint, method string, _ bool) (*models.PayResult, error) {
	f.hit("Pay")
	f.lastPay = method
	f.open = nil
	res := f.payResult
	res.PurchaseID = purchaseID
	res.Status = models.PurchaseStatusPaid
	return &res, nil
}

func (f *fakeBackend) PrintReceipt(_ context.Context, purchaseID uint) (*models.PayResult, error) {
	f.hit("PrintReceipt")
	return &models.PayResult{PurchaseID: purchaseID, Printed: true}, nil
}

func (f *fakeBackend) CreateProduct(_ context.Context, form models.ProductForm) (*models.Product, error) {
	f.hit("CreateProduct")
	f.products = append(f.products, form)
	return &models.Product{ID: uint(len(f.products)), Name: form.Name, Price: form.Price, IsActive: true}, nil
}

func (f *fakeBackend) UpdateProduct(_ context.Context, id uint, form models.ProductForm) (*models.Product, error) {
	f.hit("UpdateProduct")
	return &models.Product{ID: id, Name: form.Name, Price: form.Price}, nil
}

func (f *fakeBackend) SetProductActive(context.Context, uint, bool) error {
	f.hit("SetProductActive")
	return nil
}

func (f *fakeBackend) CreateCategory(_ context.Context, name string) (*models.Category, error) {
	f.hit("CreateCategory")
	return &models.Category{ID: 1, Name: name}, nil
}

func (f *fakeBackend) SellInventory(_ context.Context, lines []models.SellLine) (*models.SellResult, error) {
	f.hit("SellInventory")
	f.sold = append(f.sold, lines...)
	return &models.SellResult{OK: true}, nil
}

// memoryAudit collects audit entries.
type memoryAudit struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (m *memoryAudit) Record(_ context.Context, e *models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memoryAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}
