package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"buyback-pos/internal/backend"
	"buyback-pos/internal/models"
	"buyback-pos/internal/paging"
	"buyback-pos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type InventoryAPI interface {
	ListInventory(ctx context.Context, f backend.InventoryFilter, p paging.Params) (models.Page[models.InventoryItem], error)
	ExportInventory(ctx context.Context, f backend.InventoryFilter) (*backend.Download, error)
	PurchasedHistory(ctx context.Context, prodID uint, r backend.DateRange, p paging.Params) (models.Page[models.StockMovement], error)
	SoldHistory(ctx context.Context, prodID uint, r backend.DateRange, p paging.Params) (models.Page[models.StockMovement], error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type InventoryHandler struct {
	*Renderer
	api     InventoryAPI
	catalog *service.CatalogService
}

func NewInventoryHandler(r *Renderer, api InventoryAPI, catalog *service.CatalogService) *InventoryHandler {
	return &InventoryHandler{Renderer: r, api: api, catalog: catalog}
}

type sortOption struct {
	Value string
	Label string
}

const sortLastSale = "-last_sale_date"

var inventorySorts = []sortOption{
	{"-balance", "Balance, high to low"},
	{"balance", "Balance, low to high"},
	{"name", "Name A-Z"},
	{"-name", "Name Z-A"},
	{sortLastSale, "Last sold, newest"},
}

type inventoryPage struct {
	Query      url.Values
	Filter     backend.InventoryFilter
	Items      []models.InventoryItem
	Categories []models.Category
	Sorts      []sortOption
	Pager      paging.View
	Selected   map[uint]bool
	Selling    []sellRow
	SellError  string
}

// sellRow is one line of the sell modal with what the operator typed.
type sellRow struct {
	models.InventoryItem
	Qty  string
	Note string
}

func inventoryFilter(q url.Values) backend.InventoryFilter {
	f := backend.InventoryFilter{
		Query:      strings.TrimSpace(q.Get("q")),
		CategoryID: valuesID(q, "category_id"),
		Sort:       q.Get("sort"),
		OnlyActive: q.Get("only_active") != "0",
	}
	valid := false
	for _, s := range inventorySorts {
		if s.Value == f.Sort {
			valid = true
			break
		}
	}
	if !valid {
		f.Sort = "-balance"
	}
	return f
}

func (h *InventoryHandler) load(c *gin.Context, q url.Values) (*inventoryPage, error) {
	f := inventoryFilter(q)
	p := paging.FromValues(q, h.PerPage)
	ctx := c.Request.Context()

	pg, err := h.api.ListInventory(ctx, f, p)
	if err != nil {
		return nil, err
	}
	categories, err := h.api.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return &inventoryPage{
		Query:      q,
		Filter:     f,
		Items:      pg.Items,
		Categories: categories,
		Sorts:      inventorySorts,
		Pager:      pager(pg, p),
		Selected:   map[uint]bool{},
	}, nil
}

// List draws the stock table. sell=1 with sel=<prod_id> values opens the
// sell modal for the ticked rows of the current page.
func (h *InventoryHandler) List(c *gin.Context) {
	data, err := h.load(c, c.Request.URL.Query())
	if err != nil {
		h.fail(c, "inventory", err)
		return
	}
	for _, raw := range c.QueryArray("sel") {
		var id uint
		if _, err := fmt.Sscan(raw, &id); err == nil && id > 0 {
			data.Selected[id] = true
		}
	}
	if c.Query("sell") == "1" {
		for _, it := range data.Items {
			if data.Selected[it.ProdID] {
				data.Selling = append(data.Selling, sellRow{InventoryItem: it})
			}
		}
		if len(data.Selling) == 0 {
			data.SellError = "Tick at least one item to sell."
		}
	}
	h.render(c, http.StatusOK, "inventory", "Inventory", "inventory", data)
}

func (h *InventoryHandler) Sell(c *gin.Context) {
	ids := c.PostFormArray("prod_id")
	qtys := c.PostFormArray("qty")
	balances := c.PostFormArray("balance")
	notes := c.PostFormArray("note")

	candidates := make([]service.SellCandidate, 0, len(ids))
	for i, raw := range ids {
		var cand service.SellCandidate
		if _, err := fmt.Sscan(raw, &cand.ProdID); err != nil {
			continue
		}
		cand.Qty = at(qtys, i)
		cand.Note = at(notes, i)
		cand.Balance, _ = decimal.NewFromString(at(balances, i))
		candidates = append(candidates, cand)
	}

	back := localPath(c.PostForm("next"), "/inventory")
	res, err := h.catalog.Sell(c.Request.Context(), candidates)
	if err != nil {
		h.reopenSell(c, back, candidates, err)
		return
	}
	n := len(res.Created)
	if n == 0 {
		n = len(candidates)
	}
	redirectFlash(c, stripState(back), fmt.Sprintf("Sold %d item(s).", n))
}

// reopenSell draws the table again with the sell modal holding the
// submitted quantities.
func (h *InventoryHandler) reopenSell(c *gin.Context, back string, candidates []service.SellCandidate, sellErr error) {
	q := url.Values{}
	if u, err := url.Parse(back); err == nil {
		q = u.Query()
	}
	data, err := h.load(c, q)
	if err != nil {
		h.fail(c, "inventory", err)
		return
	}

	byID := make(map[uint]models.InventoryItem, len(data.Items))
	for _, it := range data.Items {
		byID[it.ProdID] = it
	}
	for _, cand := range candidates {
		it, ok := byID[cand.ProdID]
		if !ok {
			it = models.InventoryItem{ProdID: cand.ProdID, BalanceWeight: decimal.NewNullDecimal(cand.Balance)}
		}
		data.Selected[cand.ProdID] = true
		data.Selling = append(data.Selling, sellRow{InventoryItem: it, Qty: cand.Qty, Note: cand.Note})
	}
	data.SellError = service.Message(sellErr)
	h.renderInline(c, "inventory", "Inventory", "inventory", data, sellErr)
}

// Export downloads the stock sheet for the current filter. A failure goes
// back to the table unchanged with the error shown.
func (h *InventoryHandler) Export(c *gin.Context) {
	q := c.Request.URL.Query()
	f := inventoryFilter(q)
	if q.Get("sort") == "" {
		f.Sort = sortLastSale
	}
	d, err := h.api.ExportInventory(c.Request.Context(), f)
	if err != nil {
		redirectError(c, "/inventory?"+q.Encode(), err)
		return
	}
	attachment(c, d)
}

type movementTab struct {
	Key   string
	Label string
}

var movementTabs = []movementTab{
	{"purchased", "Bought in"},
	{"sold", "Sold"},
}

type inventoryDetailPage struct {
	Query    url.Values
	ProdID   uint
	ProdName string
	Tab      string
	Tabs     []movementTab
	Dates    backend.DateRange
	Rows     []models.StockMovement
	Pager    paging.View
}

func (h *InventoryHandler) Detail(c *gin.Context) {
	prodID, ok := paramID(c, "prodId")
	if !ok {
		h.notFound(c, "inventory")
		return
	}
	tab := c.DefaultQuery("tab", "purchased")
	if tab != "sold" {
		tab = "purchased"
	}
	dates := backend.ParseDateRange(c.Query("date_from"), c.Query("date_to"))
	p := paging.FromQuery(c, h.PerPage)

	history := h.api.PurchasedHistory
	if tab == "sold" {
		history = h.api.SoldHistory
	}
	pg, err := history(c.Request.Context(), prodID, dates, p)
	if err != nil {
		h.fail(c, "inventory", err)
		return
	}

	name := strings.TrimSpace(c.Query("name"))
	if name == "" && len(pg.Items) > 0 {
		name = pg.Items[0].ProdName
	}
	h.render(c, http.StatusOK, "inventory_detail", "Stock history", "inventory", inventoryDetailPage{
		Query:    c.Request.URL.Query(),
		ProdID:   prodID,
		ProdName: name,
		Tab:      tab,
		Tabs:     movementTabs,
		Dates:    dates,
		Rows:     pg.Items,
		Pager:    pager(pg, p),
	})
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

// stripState drops modal and message parameters from a list URL.
func stripState(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	for _, k := range []string{"sell", "sel", "flash", "error", "modal", "edit"} {
		q.Del(k)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
