package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"buyback-pos/config"
	"buyback-pos/internal/backend"
	"buyback-pos/internal/models"

	"github.com/shopspring/decimal"
)

// PurchaseBackend is the slice of the backend client the purchase session
// needs.
type PurchaseBackend interface {
	GetOpenPurchase(ctx context.Context) (*models.Purchase, error)
	DeleteOpenPurchase(ctx context.Context) error
	PreviewIDCard(ctx context.Context, readerIndex int, withPhoto bool) (*models.IDCard, error)
	CommitIDCard(ctx context.Context, card models.IDCard) (*models.QuickOpenResult, error)
	PreviewAnonymous(ctx context.Context, deviceIndex, warmup int) (*backend.PhotoPreview, error)
	CommitAnonymous(ctx context.Context, photoBase64 string) (*models.QuickOpenResult, error)
	QuickOpenExisting(ctx context.Context, customerID uint) (*models.QuickOpenResult, error)

	ListItems(ctx context.Context, purchaseID uint) ([]models.PurchaseItem, error)
	ItemsSummary(ctx context.Context, purchaseID uint) (*models.PurchaseSummary, error)
	PreviewItemPhoto(ctx context.Context, purchaseID uint, deviceIndex, warmup int, camBackend string) (*backend.PhotoPreview, error)
	CommitItem(ctx context.Context, purchaseID uint, item models.ItemDraft, r models.Rounding) (*models.PurchaseItem, error)
	AddItem(ctx context.Context, purchaseID uint, item models.ItemDraft, r models.Rounding) (*models.PurchaseItem, error)
	UpdateItemPrice(ctx context.Context, purchaseID, itemID uint, price decimal.Decimal, r models.Rounding) error
	DeleteItem(ctx context.Context, purchaseID, itemID uint) error
	ReadScale(ctx context.Context, timeoutMS, lines int) (*models.ScaleReading, error)

	Pay(ctx context.Context, purchaseID uint, method string, printReceipt bool) (*models.PayResult, error)
	PrintReceipt(ctx context.Context, purchaseID uint) (*models.PayResult, error)
}

// PurchaseService drives one bill from identification to payout. It keeps
// no state between calls: the backend's bill is the only source of truth.
type PurchaseService struct {
	api      PurchaseBackend
	hardware config.HardwareProfile
	audit    auditor
	logger   *slog.Logger
}

func NewPurchaseService(api PurchaseBackend, hw config.HardwareProfile, audit AuditLog, logger *slog.Logger) *PurchaseService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "purchase")
	return &PurchaseService{
		api:      api,
		hardware: hw,
		audit:    auditor{log: audit, logger: logger},
		logger:   logger,
	}
}

// Hardware exposes the device profile to the pages that render capture forms.
func (s *PurchaseService) Hardware() config.HardwareProfile { return s.hardware }

// DefaultRounding is the rounding applied when a form does not pick one.
func (s *PurchaseService) DefaultRounding() models.Rounding {
	return ParseRounding(s.hardware.DefaultRounding)
}

// CheckOpen returns the bill left open by an earlier session, or nil.
func (s *PurchaseService) CheckOpen(ctx context.Context) (*models.Purchase, error) {
	p, err := s.api.GetOpenPurchase(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil || (p.Status != "" && p.Status != models.PurchaseStatusOpen) {
		return nil, nil
	}
	return p, nil
}

func (s *PurchaseService) DiscardOpen(ctx context.Context) error {
	open, err := s.CheckOpen(ctx)
	if err != nil {
		return err
	}
	if err := s.api.DeleteOpenPurchase(ctx); err != nil {
		return err
	}
	var id uint
	if open != nil {
		id = open.ID
	}
	s.audit.record(ctx, models.AuditBillDiscarded, id, "")
	return nil
}

// ensureNoStaleBill blocks identification while an old bill is still open.
func (s *PurchaseService) ensureNoStaleBill(ctx context.Context) error {
	open, err := s.CheckOpen(ctx)
	if err != nil {
		return err
	}
	if open != nil {
		return fmt.Errorf("%w: bill #%d", ErrStaleBill, open.ID)
	}
	return nil
}

// PreviewIDCard reads the card. Nothing is created on the backend.
func (s *PurchaseService) PreviewIDCard(ctx context.Context) (*models.IDCard, error) {
	if err := s.ensureNoStaleBill(ctx); err != nil {
		return nil, err
	}
	reader := s.hardware.IDCardReader
	return s.api.PreviewIDCard(ctx, reader.ReaderIndex, reader.WithPhoto)
}

func (s *PurchaseService) CommitIDCard(ctx context.Context, card models.IDCard) (uint, error) {
	card.NationalID = strings.TrimSpace(card.NationalID)
	card.FullName = strings.TrimSpace(card.FullName)
	card.Address = strings.TrimSpace(card.Address)
	if card.NationalID == "" && card.FullName == "" {
		return 0, invalid("national_id", "Read the ID card before opening the bill.")
	}
	if err := s.ensureNoStaleBill(ctx); err != nil {
		return 0, err
	}

	res, err := s.api.CommitIDCard(ctx, card)
	if err != nil {
		return 0, err
	}
	s.audit.record(ctx, models.AuditBillOpened, res.PurchaseID, "id card "+card.NationalID)
	return res.PurchaseID, nil
}

// PreviewAnonymous takes the customer snapshot. Nothing is created on the
// backend.
func (s *PurchaseService) PreviewAnonymous(ctx context.Context) (string, error) {
	if err := s.ensureNoStaleBill(ctx); err != nil {
		return "", err
	}
	cam := s.hardware.CustomerCamera
	res, err := s.api.PreviewAnonymous(ctx, cam.DeviceIndex, cam.Warmup)
	if err != nil {
		return "", err
	}
	if res.PhotoBase64 == "" {
		return "", invalid("photo", "The camera returned no picture. Try again.")
	}
	return res.PhotoBase64, nil
}

func (s *PurchaseService) CommitAnonymous(ctx context.Context, photoBase64 string) (uint, error) {
	photoBase64 = stripDataURI(photoBase64)
	if photoBase64 == "" {
		return 0, invalid("photo", "Take the customer photo first.")
	}
	if err := s.ensureNoStaleBill(ctx); err != nil {
		return 0, err
	}

	res, err := s.api.CommitAnonymous(ctx, photoBase64)
	if err != nil {
		return 0, err
	}
	s.audit.record(ctx, models.AuditBillOpened, res.PurchaseID, "anonymous")
	return res.PurchaseID, nil
}

func (s *PurchaseService) OpenForCustomer(ctx context.Context, customerID uint) (uint, error) {
	if customerID == 0 {
		return 0, invalid("customer_id", "Choose a customer first.")
	}
	if err := s.ensureNoStaleBill(ctx); err != nil {
		return 0, err
	}

	res, err := s.api.QuickOpenExisting(ctx, customerID)
	if err != nil {
		return 0, err
	}
	s.audit.record(ctx, models.AuditBillOpened, res.PurchaseID, fmt.Sprintf("customer #%d", customerID))
	return res.PurchaseID, nil
}

// Cart is the bill as the backend currently sees it.
type Cart struct {
	PurchaseID  uint
	Items       []models.PurchaseItem
	TotalWeight decimal.Decimal
	TotalAmount decimal.Decimal
}

func (c *Cart) Empty() bool { return len(c.Items) == 0 }

// Cart loads the items and the summary. The summary's total wins; when it
// is missing the item prices are summed.
func (s *PurchaseService) Cart(ctx context.Context, purchaseID uint) (*Cart, error) {
	items, err := s.api.ListItems(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	cart := &Cart{PurchaseID: purchaseID, Items: items}
	for _, it := range items {
		cart.TotalWeight = cart.TotalWeight.Add(it.Weight)
		cart.TotalAmount = cart.TotalAmount.Add(it.Price)
	}

	sum, err := s.api.ItemsSummary(ctx, purchaseID)
	if err != nil {
		s.logger.Warn("summary unavailable, using item totals", "purchase_id", purchaseID, "error", err)
		return cart, nil
	}
	if !sum.TotalWeight.IsZero() || len(items) == 0 {
		cart.TotalWeight = sum.TotalWeight
	}
	if sum.TotalAmount.Valid {
		cart.TotalAmount = sum.TotalAmount.Decimal
	}
	return cart, nil
}

// PreviewItemPhoto grabs a counter camera snapshot for the add-item modal.
func (s *PurchaseService) PreviewItemPhoto(ctx context.Context, purchaseID uint) (string, error) {
	cam := s.hardware.ItemCamera
	res, err := s.api.PreviewItemPhoto(ctx, purchaseID, cam.DeviceIndex, cam.Warmup, cam.Backend)
	if err != nil {
		return "", err
	}
	if res.PhotoBase64 == "" {
		return "", invalid("photo", "The camera returned no picture. Try again.")
	}
	return res.PhotoBase64, nil
}

func (s *PurchaseService) ReadScale(ctx context.Context) (*models.ScaleReading, error) {
	return s.api.ReadScale(ctx, s.hardware.Scale.TimeoutMS, s.hardware.Scale.Lines)
}

// AddItem commits a weighed line. Callers reload the cart only after a nil
// error; on failure they keep the submitted form.
func (s *PurchaseService) AddItem(ctx context.Context, purchaseID uint, draft models.ItemDraft, r models.Rounding) error {
	draft.PhotoBase64 = stripDataURI(draft.PhotoBase64)
	switch {
	case draft.ProdID == 0:
		return invalid("prod_id", "Choose a product.")
	case !draft.Weight.IsPositive():
		return invalid("weight", "Weight must be greater than 0.")
	case s.hardware.PhotoRequired && draft.PhotoBase64 == "":
		return invalid("photo", "Take a photo of the item first.")
	}

	var err error
	if draft.PhotoBase64 != "" {
		_, err = s.api.CommitItem(ctx, purchaseID, draft, r)
	} else {
		_, err = s.api.AddItem(ctx, purchaseID, draft, r)
	}
	if err != nil {
		return err
	}

	s.audit.record(ctx, models.AuditItemAdded, purchaseID,
		fmt.Sprintf("prod #%d %s kg", draft.ProdID, draft.Weight.String()))
	return nil
}

func (s *PurchaseService) EditPrice(ctx context.Context, purchaseID, itemID uint, rawPrice string, r models.Rounding) error {
	price, err := ParseAmount(rawPrice)
	if err != nil {
		return invalid("price", "Price must be a number.")
	}
	if price.IsNegative() {
		return invalid("price", "Price cannot be negative.")
	}
	if err := s.api.UpdateItemPrice(ctx, purchaseID, itemID, price, r); err != nil {
		return err
	}
	s.audit.record(ctx, models.AuditItemRepriced, purchaseID,
		fmt.Sprintf("item #%d price %s", itemID, price.StringFixed(2)))
	return nil
}

func (s *PurchaseService) RemoveItem(ctx context.Context, purchaseID, itemID uint) error {
	if err := s.api.DeleteItem(ctx, purchaseID, itemID); err != nil {
		return err
	}
	s.audit.record(ctx, models.AuditItemRemoved, purchaseID, fmt.Sprintf("item #%d", itemID))
	return nil
}

// Pay settles the bill. The print outcome is reported, not treated as a
// payment failure.
func (s *PurchaseService) Pay(ctx context.Context, purchaseID uint, method string, printReceipt bool) (*models.PayResult, error) {
	method = strings.ToLower(strings.TrimSpace(method))
	if method != models.PaymentCash && method != models.PaymentTransfer {
		return nil, invalid("payment_method", "Choose cash or transfer.")
	}

	cart, err := s.Cart(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if cart.Empty() {
		return nil, invalid("items", "The bill has no items.")
	}
	if !cart.TotalAmount.IsPositive() {
		return nil, invalid("total", "The bill total must be greater than 0.")
	}

	res, err := s.api.Pay(ctx, purchaseID, method, printReceipt)
	if err != nil {
		return nil, err
	}
	if res.PrintError != "" {
		s.logger.Warn("receipt not printed", "purchase_id", purchaseID, "error", res.PrintError)
	}
	s.audit.record(ctx, models.AuditBillPaid, purchaseID,
		fmt.Sprintf("%s %s", method, cart.TotalAmount.StringFixed(2)))
	return res, nil
}

func (s *PurchaseService) PrintReceipt(ctx context.Context, purchaseID uint) (*models.PayResult, error) {
	res, err := s.api.PrintReceipt(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, models.AuditReceiptPrinted, purchaseID, "")
	return res, nil
}

// stripDataURI accepts both raw base64 and data:image/...;base64, values.
func stripDataURI(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			return s[i+1:]
		}
	}
	return s
}
