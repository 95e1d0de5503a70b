package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"buyback-pos/internal/backend"
	"buyback-pos/internal/models"
	"buyback-pos/internal/paging"
	"buyback-pos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PurchaseAPI is the read side the bill screens need besides the service.
type PurchaseAPI interface {
	FilterProducts(ctx context.Context, f backend.ProductFilter) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	SearchPurchaseCustomers(ctx context.Context, q string, p paging.Params) (models.Page[models.Customer], error)
	CameraStatus(ctx context.Context, deviceIndex int) (*models.CameraStatus, error)
	LiveCamera(ctx context.Context, purchaseID uint) (*backend.Stream, error)
}

type PurchaseHandler struct {
	*Renderer
	api PurchaseAPI
	svc *service.PurchaseService
}

func NewPurchaseHandler(r *Renderer, api PurchaseAPI, svc *service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{Renderer: r, api: api, svc: svc}
}

const activePurchase = "purchase"

// identityPage is the first step of a bill: pick how the customer is
// identified. Modal is "idcard" or "anonymous" while a preview is shown.
type identityPage struct {
	Open       *models.Purchase
	Modal      string
	IDCard     models.IDCard
	Photo      string
	ModalError string
}

func (h *PurchaseHandler) Select(c *gin.Context) {
	open, err := h.svc.CheckOpen(c.Request.Context())
	if err != nil {
		h.fail(c, activePurchase, err)
		return
	}
	h.render(c, http.StatusOK, "purchase_select", "New bill", activePurchase, identityPage{Open: open})
}

// identityFailed redraws the identify screen. A stale bill replaces the
// modal with the stale bill choice.
func (h *PurchaseHandler) identityFailed(c *gin.Context, data identityPage, err error) {
	if open, openErr := h.svc.CheckOpen(c.Request.Context()); openErr == nil && open != nil {
		data = identityPage{Open: open}
	} else {
		data.ModalError = service.Message(err)
	}
	h.renderInline(c, "purchase_select", "New bill", activePurchase, data, err)
}

func (h *PurchaseHandler) DiscardOpen(c *gin.Context) {
	if err := h.svc.DiscardOpen(c.Request.Context()); err != nil {
		redirectError(c, "/purchase", err)
		return
	}
	redirectFlash(c, "/purchase", "The previous bill was deleted.")
}

func (h *PurchaseHandler) PreviewIDCard(c *gin.Context) {
	card, err := h.svc.PreviewIDCard(c.Request.Context())
	if err != nil {
		h.identityFailed(c, identityPage{Modal: "idcard"}, err)
		return
	}
	h.render(c, http.StatusOK, "purchase_select", "New bill", activePurchase, identityPage{Modal: "idcard", IDCard: *card})
}

func (h *PurchaseHandler) CommitIDCard(c *gin.Context) {
	card := models.IDCard{
		NationalID:  c.PostForm("national_id"),
		FullName:    c.PostForm("full_name"),
		Address:     c.PostForm("address"),
		PhotoBase64: c.PostForm("photo"),
	}
	id, err := h.svc.CommitIDCard(c.Request.Context(), card)
	if err != nil {
		h.identityFailed(c, identityPage{Modal: "idcard", IDCard: card}, err)
		return
	}
	c.Redirect(http.StatusSeeOther, billPath(id))
}

func (h *PurchaseHandler) PreviewAnonymous(c *gin.Context) {
	photo, err := h.svc.PreviewAnonymous(c.Request.Context())
	if err != nil {
		h.identityFailed(c, identityPage{Modal: "anonymous"}, err)
		return
	}
	h.render(c, http.StatusOK, "purchase_select", "New bill", activePurchase, identityPage{Modal: "anonymous", Photo: photo})
}

func (h *PurchaseHandler) CommitAnonymous(c *gin.Context) {
	photo := c.PostForm("photo")
	id, err := h.svc.CommitAnonymous(c.Request.Context(), photo)
	if err != nil {
		h.identityFailed(c, identityPage{Modal: "anonymous", Photo: photo}, err)
		return
	}
	c.Redirect(http.StatusSeeOther, billPath(id))
}

type customerSelectPage struct {
	Query     url.Values
	Search    string
	Customers []models.Customer
	Pager     paging.View
	Open      *models.Purchase
}

// Customers lists known customers to open a bill for. Search is done by
// the backend.
func (h *PurchaseHandler) Customers(c *gin.Context) {
	search := strings.TrimSpace(c.Query("q"))
	p := paging.FromQuery(c, h.PerPage)
	ctx := c.Request.Context()

	pg, err := h.api.SearchPurchaseCustomers(ctx, SearchTerm(search), p)
	if err != nil {
		h.fail(c, activePurchase, err)
		return
	}
	open, err := h.svc.CheckOpen(ctx)
	if err != nil {
		h.fail(c, activePurchase, err)
		return
	}
	h.render(c, http.StatusOK, "purchase_customers", "Choose customer", activePurchase, customerSelectPage{
		Query:     c.Request.URL.Query(),
		Search:    search,
		Customers: pg.Items,
		Pager:     pager(pg, p),
		Open:      open,
	})
}

func (h *PurchaseHandler) OpenForCustomer(c *gin.Context) {
	customerID, ok := paramID(c, "id")
	if !ok {
		h.notFound(c, activePurchase)
		return
	}
	id, err := h.svc.OpenForCustomer(c.Request.Context(), customerID)
	if err != nil {
		back := localPath(c.PostForm("next"), "/purchase/customers")
		redirectError(c, back, err)
		return
	}
	c.Redirect(http.StatusSeeOther, billPath(id))
}

// CameraStatus reports whether the counter camera answers, for the
// capture modals' status line.
func (h *PurchaseHandler) CameraStatus(c *gin.Context) {
	hw := h.svc.Hardware()
	device := hw.ItemCamera.DeviceIndex
	if c.Query("camera") == "customer" {
		device = hw.CustomerCamera.DeviceIndex
	}
	st, err := h.api.CameraStatus(c.Request.Context(), device)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": service.Message(err)})
		return
	}
	c.JSON(http.StatusOK, st)
}

// billPage is the bill being filled in.
type billPage struct {
	PurchaseID uint
	Query      url.Values
	Filter     backend.ProductFilter
	Products   []models.Product
	Categories []models.Category
	Cart       *service.Cart
	Lines      []billLine
	Item       *itemForm
	EditID     uint
	Delete     *billLine
	Pay        bool
	Rounding   string
}

type billLine struct {
	models.PurchaseItem
	Name      string
	UnitPrice decimal.Decimal
}

// itemForm is the add-item modal. Product name and price travel with the
// form so the modal can be redrawn without reloading the bill.
type itemForm struct {
	PurchaseID uint
	ProdID     uint
	ProdName   string
	UnitPrice  decimal.Decimal
	Weight     string
	Rounding   string
	Photo      string
	Estimate   decimal.Decimal
	ScaleNote  string
	Error      string
}

func (f *itemForm) estimate() {
	w, err := service.ParseAmount(f.Weight)
	if err != nil {
		f.Estimate = decimal.Zero
		return
	}
	f.Estimate = service.EstimateLine(w, f.UnitPrice, service.ParseRounding(f.Rounding))
}

func (h *PurchaseHandler) Bill(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.notFound(c, activePurchase)
		return
	}
	q := c.Request.URL.Query()
	ctx := c.Request.Context()

	cart, err := h.svc.Cart(ctx, id)
	if err != nil {
		h.fail(c, activePurchase, err)
		return
	}
	f := backend.ProductFilter{Query: strings.TrimSpace(q.Get("q")), CategoryID: valuesID(q, "category_id")}
	products, err := h.api.FilterProducts(ctx, f)
	if err != nil {
		h.fail(c, activePurchase, err)
		return
	}
	categories, err := h.api.ListCategories(ctx)
	if err != nil {
		h.fail(c, activePurchase, err)
		return
	}

	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	data := billPage{
		PurchaseID: id,
		Query:      q,
		Filter:     f,
		Categories: categories,
		Cart:       cart,
		EditID:     valuesID(q, "edit"),
		Pay:        q.Get("pay") == "1" && !cart.Empty(),
		Rounding:   h.svc.DefaultRounding().Mode,
	}
	for _, p := range products {
		if p.IsActive {
			data.Products = append(data.Products, p)
		}
	}
	for _, it := range cart.Items {
		line := billLine{PurchaseItem: it, Name: it.ProdName, UnitPrice: it.UnitPrice()}
		if p, ok := byID[it.ProdID]; ok {
			line.UnitPrice = p.Price
			if line.Name == "" {
				line.Name = p.Name
			}
		}
		data.Lines = append(data.Lines, line)
	}
	if del := valuesID(q, "delete"); del > 0 {
		for i := range data.Lines {
			if data.Lines[i].ID == del {
				data.Delete = &data.Lines[i]
				break
			}
		}
	}
	if add := valuesID(q, "add"); add > 0 {
		if p, ok := byID[add]; ok && p.IsActive {
			data.Item = &itemForm{
				PurchaseID: id,
				ProdID:     p.ID,
				ProdName:   p.Name,
				UnitPrice:  p.Price,
				Rounding:   data.Rounding,
			}
		}
	}
	h.render(c, http.StatusOK, "purchase_bill", fmt.Sprintf("Bill #%d", id), activePurchase, data)
}

// bindItem reads the add-item modal back from the form.
func (h *PurchaseHandler) bindItem(c *gin.Context, id uint) *itemForm {
	price, _ := decimal.NewFromString(c.PostForm("unit_price"))
	f := &itemForm{
		PurchaseID: id,
		ProdID:     formID(c, "prod_id"),
		ProdName:   c.PostForm("prod_name"),
		UnitPrice:  price,
		Weight:     strings.TrimSpace(c.PostForm("weight")),
		Rounding:   service.ParseRounding(c.PostForm("round_mode")).Mode,
		Photo:      c.PostForm("photo"),
	}
	return f
}

// renderItem draws the add-item modal on its own. The bill behind it is
// not reloaded.
func (h *PurchaseHandler) renderItem(c *gin.Context, f *itemForm, err error) {
	f.estimate()
	title := fmt.Sprintf("Bill #%d", f.PurchaseID)
	if err != nil {
		f.Error = service.Message(err)
		h.renderInline(c, "purchase_item", title, activePurchase, f, err)
		return
	}
	h.render(c, http.StatusOK, "purchase_item", title, activePurchase, f)
}

func (h *PurchaseHandler) PreviewItemPhoto(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.notFound(c, activePurchase)
		return
	}
	f := h.bindItem(c, id)
	photo, err := h.svc.PreviewItemPhoto(c.Request.Context(), id)
	if err == nil {
		f.Photo = photo
	}
	h.renderItem(c, f, err)
}

func (h *PurchaseHandler) ReadScale(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.notFound(c, activePurchase)
		return
	}
	f := h.bindItem(c, id)
	reading, err := h.svc.ReadScale(c.Request.Context())
	if err == nil {
		f.Weight = reading.Weight.String()
		if !reading.Stable {
			f.ScaleNote = "The scale was still settling. Read again if the weight looks off."
		}
	}
	h.renderItem(c, f, err)
}

// AddItem commits the modal. Success goes back to the bill, which reloads
// the cart; failure keeps the modal open with the error.
func (h *PurchaseHandler) AddItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.notFound(c, activePurchase)
		return
	}
	f := h.bindItem(c, id)

	weight, err := service.ParseAmount(f.Weight)
	if err != nil {
		h.renderItem(c, f, &service.ValidationError{Field: "weight", Message: "Weight must be a number."})
		return
	}
	draft := models.ItemDraft{ProdID: f.ProdID, Weight: weight, PhotoBase64: f.Photo}
	if err := h.svc.AddItem(c.Request.Context(), id, draft, service.ParseRounding(f.Rounding)); err != nil {
		h.renderItem(c, f, err)
		return
	}
	c.Redirect(http.StatusSeeOther, billPath(id))
}

func (h *PurchaseHandler) EditPrice(c *gin.Context) {
	id, ok1 := paramID(c, "id")
	itemID, ok2 := paramID(c, "itemId")
	if !ok1 || !ok2 {
		h.notFound(c, activePurchase)
		return
	}
	r := service.ParseRounding(c.PostForm("round_mode"))
	if err := h.svc.EditPrice(c.Request.Context(), id, itemID, c.PostForm("price"), r); err != nil {
		redirectError(c, billPath(id)+"?edit="+strconv.FormatUint(uint64(itemID), 10), err)
		return
	}
	c.Redirect(http.StatusSeeOther, billPath(id))
}

func (h *PurchaseHandler) DeleteItem(c *gin.Context) {
	id, ok1 := paramID(c, "id")
	itemID, ok2 := paramID(c, "itemId")
	if !ok1 || !ok2 {
		h.notFound(c, activePurchase)
		return
	}
	if err := h.svc.RemoveItem(c.Request.Context(), id, itemID); err != nil {
		redirectError(c, billPath(id), err)
		return
	}
	redirectFlash(c, billPath(id), "Item removed.")
}

type paidPage struct {
	PurchaseID uint
	Result     *models.PayResult
	Next       string
	Seconds    int
}

func (h *PurchaseHandler) Pay(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.notFound(c, activePurchase)
		return
	}
	printReceipt, _ := strconv.ParseBool(c.DefaultPostForm("print", "false"))
	res, err := h.svc.Pay(c.Request.Context(), id, c.PostForm("payment_method"), printReceipt)
	if err != nil {
		redirectError(c, billPath(id)+"?pay=1", err)
		return
	}
	h.paid(c, id, res)
}

// PrintReceipt retries the receipt of a paid bill from the confirmation.
func (h *PurchaseHandler) PrintReceipt(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.notFound(c, activePurchase)
		return
	}
	res, err := h.svc.PrintReceipt(c.Request.Context(), id)
	if err != nil {
		res = &models.PayResult{PurchaseID: id, Status: models.PurchaseStatusPaid, WillPrint: true, PrintError: service.Message(err)}
	}
	h.paid(c, id, res)
}

// paid shows the confirmation. It moves on to a new bill by itself unless
// the receipt failed to print.
func (h *PurchaseHandler) paid(c *gin.Context, id uint, res *models.PayResult) {
	data := paidPage{PurchaseID: id, Result: res, Next: "/purchase"}
	if res.PrintError == "" {
		data.Seconds = 3
	}
	h.render(c, http.StatusOK, "purchase_paid", fmt.Sprintf("Bill #%d paid", id), activePurchase, data)
}

// LiveCamera proxies the counter camera's MJPEG stream for the add-item
// modal. It ends when the browser goes away.
func (h *PurchaseHandler) LiveCamera(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	stream, err := h.api.LiveCamera(c.Request.Context(), id)
	if err != nil {
		h.log(c, statusFor(err), err)
		c.Status(statusFor(err))
		return
	}
	defer stream.Close()

	c.Header("Cache-Control", "no-store")
	c.Header("Content-Type", stream.ContentType)
	c.Status(http.StatusOK)
	buf := make([]byte, 32<<10)
	for {
		n, err := stream.Body.Read(buf)
		if n > 0 {
			if _, werr := c.Writer.Write(buf[:n]); werr != nil {
				return
			}
			c.Writer.Flush()
		}
		if err != nil {
			if err != io.EOF {
				h.Logger.Debug("camera stream ended", "purchase_id", id, "error", err)
			}
			return
		}
	}
}

func billPath(id uint) string {
	return "/purchase/" + strconv.FormatUint(uint64(id), 10)
}
