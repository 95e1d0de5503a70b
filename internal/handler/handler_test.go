package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"buyback-pos/config"
	"buyback-pos/internal/backend"
	"buyback-pos/internal/middleware"
	"buyback-pos/internal/models"
	"buyback-pos/internal/service"
	"buyback-pos/internal/utils"
	"buyback-pos/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fakeBackend answers registered routes and counts every call it saw.
type fakeBackend struct {
	mu     sync.Mutex
	calls  []string
	bodies map[string][]byte
	routes map[string]http.HandlerFunc
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{bodies: map[string][]byte{}, routes: map[string]http.HandlerFunc{}}
}

func (f *fakeBackend) on(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = h
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.bodies[key] = body
	h, ok := f.routes[key]
	f.mu.Unlock()

	if !ok {
		reply(http.StatusNotFound, map[string]string{"detail": "Not Found"})(w, r)
		return
	}
	h(w, r)
}

func (f *fakeBackend) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method+" "+path {
			n++
		}
	}
	return n
}

func (f *fakeBackend) body(method, path string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[method+" "+path]
}

func reply(status int, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}
}

type testApp struct {
	router *gin.Engine
	api    *fakeBackend
	tokens *utils.TokenIssuer
}

func newTestApp(t *testing.T, hw config.HardwareProfile) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fb := newFakeBackend()
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := backend.New(srv.URL, 2*time.Second, logger)
	engine, err := view.New(view.Funcs(client))
	require.NoError(t, err)

	r := gin.New()
	r.HTMLRender = engine
	r.Use(middleware.RequestID())

	tokens := utils.NewTokenIssuer("test-secret", 1)
	site := models.SiteInfo{Name: "Test Scrap"}
	pages := NewRenderer(site, 20, logger)
	catalog := service.NewCatalogService(client, nil, logger)
	purchases := service.NewPurchaseService(client, hw, nil, logger)

	h := &Handlers{
		Public:        NewPublicHandler(site, client, nil),
		Products:      NewProductHandler(pages, client, catalog),
		Inventory:     NewInventoryHandler(pages, client, catalog),
		Customers:     NewCustomerHandler(pages, client),
		Purchase:      NewPurchaseHandler(pages, client, purchases),
		PurchaseOrder: NewPurchaseOrderHandler(pages, client),
		Receipts:      NewReceiptHandler(pages, client),
	}
	h.Register(r, tokens)
	return &testApp{router: r, api: fb, tokens: tokens}
}

// request sends target as an operator with role; an empty role sends no
// session. A non-nil form is posted urlencoded.
func (a *testApp) request(t *testing.T, role, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if role != "" {
		token, err := a.tokens.GenerateToken(1, "tester", role)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

var testCategories = []models.Category{{ID: 1, Name: "Metal"}, {ID: 2, Name: "Paper"}}
