package handler

import (
	"net/http"
	"net/url"
	"testing"

	"buyback-pos/config"
	"buyback-pos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inventoryPageJSON() map[string]any {
	return map[string]any{
		"items": []map[string]any{
			{"prod_id": 1, "prod_name": "Copper wire", "category_name": "Metal", "balance_weight": "40.5"},
			{"prod_id": 3, "prod_name": "Cardboard", "category_name": "Paper", "balance_weight": "120"},
		},
		"page":        1,
		"total_pages": 1,
	}
}

func TestExportSendsOneRequest(t *testing.T) {
	app := newTestApp(t, config.DefaultHardwareProfile())
	app.api.on(http.MethodGet, "/inventory/export", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="stock.xlsx"`)
		w.Write([]byte("PK-sheet"))
	})

	w := app.request(t, models.RoleInventory, http.MethodGet, "/inventory/export?q=copper", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, app.api.count(http.MethodGet, "/inventory/export"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment;")
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="stock.xlsx"`)
	assert.Equal(t, "PK-sheet", w.Body.String())
}

func TestExportFailureReturnsToTable(t *testing.T) {
	app := newTestApp(t, config.DefaultHardwareProfile())
	app.api.on(http.MethodGet, "/inventory/export", reply(http.StatusInternalServerError, map[string]string{"detail": "export broke"}))

	w := app.request(t, models.RoleInventory, http.MethodGet, "/inventory/export?q=copper", nil)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/inventory", loc.Path)
	assert.Equal(t, "copper", loc.Query().Get("q"))
	assert.Equal(t, "export broke", loc.Query().Get("error"))
}

func TestSellModalListsTickedRows(t *testing.T) {
	app := newTestApp(t, config.DefaultHardwareProfile())
	app.api.on(http.MethodGet, "/inventory/items", reply(http.StatusOK, inventoryPageJSON()))
	app.api.on(http.MethodGet, "/categories/", reply(http.StatusOK, testCategories))

	w := app.request(t, models.RoleInventory, http.MethodGet, "/inventory?sell=1&sel=3", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `action="/inventory/sell"`)
	assert.Contains(t, body, `name="balance" value="120"`)
	assert.NotContains(t, body, `name="balance" value="40.5"`)
}

func TestSellOverBalanceIsRejectedLocally(t *testing.T) {
	app := newTestApp(t, config.DefaultHardwareProfile())
	app.api.on(http.MethodGet, "/inventory/items", reply(http.StatusOK, inventoryPageJSON()))
	app.api.on(http.MethodGet, "/categories/", reply(http.StatusOK, testCategories))

	form := url.Values{
		"prod_id": {"1"},
		"qty":     {"50"},
		"balance": {"40.5"},
		"note":    {""},
		"next":    {"/inventory?sell=1&sel=1"},
	}
	w := app.request(t, models.RoleInventory, http.MethodPost, "/inventory/sell", form)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Zero(t, app.api.count(http.MethodPost, "/inventory/sell"))
	assert.Contains(t, w.Body.String(), `value="50"`)
}

func TestSellPostsLines(t *testing.T) {
	app := newTestApp(t, config.DefaultHardwareProfile())
	app.api.on(http.MethodPost, "/inventory/sell", reply(http.StatusOK, map[string]any{"ok": true, "created": []map[string]any{{"id": 1}}}))

	form := url.Values{
		"prod_id": {"1"},
		"qty":     {"10"},
		"balance": {"40.5"},
		"note":    {"to smelter"},
		"next":    {"/inventory?q=cop&sell=1&sel=1"},
	}
	w := app.request(t, models.RoleInventory, http.MethodPost, "/inventory/sell", form)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "cop", loc.Query().Get("q"))
	assert.Empty(t, loc.Query().Get("sell"))
	assert.Equal(t, "Sold 1 item(s).", loc.Query().Get("flash"))
	assert.Contains(t, string(app.api.body(http.MethodPost, "/inventory/sell")), `"note":"to smelter"`)
}

func TestInventorySortIsForwarded(t *testing.T) {
	app := newTestApp(t, config.DefaultHardwareProfile())
	var sorts []string
	app.api.on(http.MethodGet, "/inventory/items", func(w http.ResponseWriter, r *http.Request) {
		sorts = append(sorts, r.URL.Query().Get("sort"))
		reply(http.StatusOK, inventoryPageJSON())(w, r)
	})
	app.api.on(http.MethodGet, "/categories/", reply(http.StatusOK, testCategories))

	for _, target := range []string{"/inventory?sort=-last_sale_date", "/inventory?sort=bogus", "/inventory"} {
		w := app.request(t, models.RoleInventory, http.MethodGet, target, nil)
		require.Equal(t, http.StatusOK, w.Code, target)
	}
	assert.Equal(t, []string{"-last_sale_date", "-balance", "-balance"}, sorts)
}

func TestExportDefaultsToLastSale(t *testing.T) {
	app := newTestApp(t, config.DefaultHardwareProfile())
	var sorts []string
	app.api.on(http.MethodGet, "/inventory/export", func(w http.ResponseWriter, r *http.Request) {
		sorts = append(sorts, r.URL.Query().Get("sort"))
		w.Header().Set("Content-Disposition", `attachment; filename="stock.xlsx"`)
		w.Write([]byte("PK"))
	})

	app.request(t, models.RoleInventory, http.MethodGet, "/inventory/export", nil)
	app.request(t, models.RoleInventory, http.MethodGet, "/inventory/export?sort=name", nil)

	assert.Equal(t, []string{"-last_sale_date", "name"}, sorts)
}
