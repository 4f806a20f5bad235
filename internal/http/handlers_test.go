package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/pos-checkout-service/internal/catalog"
	"github.com/fairyhunter13/pos-checkout-service/internal/checkout"
	"github.com/fairyhunter13/pos-checkout-service/internal/config"
	"github.com/fairyhunter13/pos-checkout-service/internal/model"
)

func setupApp(t *testing.T) (*App, http.Handler, *catalog.Memory) {
	t.Helper()
	cat := catalog.NewMemory()
	seed := []model.Product{
		{Barcode: "A", Name: "Apples", Price: decimal.RequireFromString("2.50"), Quantity: 10},
		{Barcode: "B", Name: "Bread", Price: decimal.RequireFromString("1.00"), Quantity: 1},
	}
	for _, p := range seed {
		if _, err := cat.Create(context.Background(), p); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	coord := checkout.NewCoordinator(cat, checkout.NewRegistry(), nil, nil)
	app := NewApp(config.Config{}, cat, coord, nil)
	return app, NewRouter(app), cat
}

func doJSON(t *testing.T, h http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	for k, v := range hdr {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestScanReturnsSessionContents(t *testing.T) {
	_, h, _ := setupApp(t)

	w := doJSON(t, h, http.MethodPost, "/products/scan", `{"items":[{"barcode":"A","quantity":2}]}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp sessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RegisterID != DefaultRegisterID || resp.State != checkout.StateScanning {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].Quantity != 2 || resp.Entries[0].Name != "Apples" {
		t.Fatalf("unexpected entries: %+v", resp.Entries)
	}
}

func TestScanValidationAndUnknownBarcode(t *testing.T) {
	_, h, _ := setupApp(t)

	w := doJSON(t, h, http.MethodPost, "/products/scan", `{"items":[]}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty batch, got %d", w.Code)
	}

	w = doJSON(t, h, http.MethodPost, "/products/scan", `{"items":[{"barcode":"A","quantity":0}]}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero quantity, got %d", w.Code)
	}

	w = doJSON(t, h, http.MethodPost, "/products/scan", `{"items":[{"barcode":"ghost","quantity":1}]}`, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown barcode, got %d", w.Code)
	}

	w = doJSON(t, h, http.MethodPost, "/products/scan", `{"bogus":true}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", w.Code)
	}

	r := httptest.NewRequest(http.MethodPost, "/products/scan", bytes.NewBufferString(`{}`))
	r.Header.Set("Content-Type", "text/plain")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, r)
	if rw.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rw.Code)
	}
}

func TestFinishScanFlow(t *testing.T) {
	_, h, cat := setupApp(t)

	w := doJSON(t, h, http.MethodPost, "/products/finish-scan", "", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on empty session, got %d", w.Code)
	}

	doJSON(t, h, http.MethodPost, "/products/scan", `{"items":[{"barcode":"A","quantity":2}]}`, nil)
	w = doJSON(t, h, http.MethodPost, "/products/finish-scan", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var receipt model.Receipt
	if err := json.Unmarshal(w.Body.Bytes(), &receipt); err != nil {
		t.Fatalf("decode receipt: %v", err)
	}
	if !receipt.Finished || !receipt.TotalPrice.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}

	p, err := cat.FindByBarcode(context.Background(), "A")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if p.Quantity != 8 || p.Sold != 2 {
		t.Fatalf("inventory not decremented: %+v", p)
	}
}

func TestFinishScanInsufficientStock(t *testing.T) {
	_, h, cat := setupApp(t)

	doJSON(t, h, http.MethodPost, "/products/scan", `{"items":[{"barcode":"B","quantity":5}]}`, nil)
	w := doJSON(t, h, http.MethodPost, "/products/finish-scan", "", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "insufficient_stock") {
		t.Fatalf("expected insufficient_stock code, got %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Bread") {
		t.Fatalf("error must name the product, got %s", w.Body.String())
	}
	p, _ := cat.FindByBarcode(context.Background(), "B")
	if p.Quantity != 1 {
		t.Fatalf("failed checkout must not touch stock: %+v", p)
	}
}

func TestCancelScanFlow(t *testing.T) {
	_, h, cat := setupApp(t)

	w := doJSON(t, h, http.MethodPost, "/products/cancel-scan", "", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on empty session, got %d", w.Code)
	}

	doJSON(t, h, http.MethodPost, "/products/scan", `{"items":[{"barcode":"A","quantity":3}]}`, nil)
	w = doJSON(t, h, http.MethodPost, "/products/cancel-scan", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp cancelResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Cancelled) != 1 || resp.Cancelled[0].Barcode != "A" {
		t.Fatalf("unexpected cancelled entries: %+v", resp.Cancelled)
	}
	p, _ := cat.FindByBarcode(context.Background(), "A")
	if p.Quantity != 10 || p.Sold != 0 {
		t.Fatalf("cancel must not touch inventory: %+v", p)
	}
}

func TestRegisterHeaderScopesSessions(t *testing.T) {
	_, h, _ := setupApp(t)

	doJSON(t, h, http.MethodPost, "/products/scan", `{"items":[{"barcode":"A","quantity":1}]}`,
		map[string]string{"X-Register-Id": "till-1"})

	// A different register sees an empty session.
	w := doJSON(t, h, http.MethodPost, "/products/finish-scan", "",
		map[string]string{"X-Register-Id": "till-2"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for till-2, got %d", w.Code)
	}

	w = doJSON(t, h, http.MethodPost, "/products/finish-scan", "",
		map[string]string{"X-Register-Id": "till-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for till-1, got %d", w.Code)
	}
}

func TestProductEndpoints(t *testing.T) {
	_, h, _ := setupApp(t)

	w := doJSON(t, h, http.MethodGet, "/products/A", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var p model.Product
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Name != "Apples" {
		t.Fatalf("unexpected product: %+v", p)
	}

	w = doJSON(t, h, http.MethodGet, "/products/ghost", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = doJSON(t, h, http.MethodPost, "/products", `{"barcode":"C","name":"Coffee","price":"7.80","quantity":3}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, http.MethodPost, "/products", `{"barcode":"","name":"x","price":"1","quantity":1}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing barcode, got %d", w.Code)
	}

	w = doJSON(t, h, http.MethodPost, "/products", `{"barcode":"D","name":"x","price":"-1","quantity":1}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative price, got %d", w.Code)
	}

	w = doJSON(t, h, http.MethodGet, "/products", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 list, got %d", w.Code)
	}
	var products []model.Product
	if err := json.Unmarshal(w.Body.Bytes(), &products); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}

	w = doJSON(t, h, http.MethodPut, "/products/C/stock", `{"quantity":9}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 stock update, got %d", w.Code)
	}

	w = doJSON(t, h, http.MethodDelete, "/products/C", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 delete, got %d", w.Code)
	}
	w = doJSON(t, h, http.MethodGet, "/products/C", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("deleted product must 404, got %d", w.Code)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	_, h, _ := setupApp(t)

	w := doJSON(t, h, http.MethodGet, "/healthz", "", map[string]string{"X-Request-Id": "req-42"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("X-Request-Id"); got != "req-42" {
		t.Fatalf("expected request id echoed, got %q", got)
	}

	w = doJSON(t, h, http.MethodGet, "/healthz", "", nil)
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestRecentSalesEmptyWithoutJournal(t *testing.T) {
	_, h, _ := setupApp(t)
	w := doJSON(t, h, http.MethodGet, "/sales/recent", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %s", w.Body.String())
	}
}

func TestOpenAPIAndDocsServed(t *testing.T) {
	_, h, _ := setupApp(t)

	w := doJSON(t, h, http.MethodGet, "/openapi.yaml", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("openapi:")) {
		t.Fatalf("expected openapi content")
	}

	w = doJSON(t, h, http.MethodGet, "/docs", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "swagger-ui") {
		t.Fatalf("expected swagger-ui in docs body")
	}
}

func TestShutdownRejectsScans(t *testing.T) {
	app, h, _ := setupApp(t)
	app.StartShutdown()
	w := doJSON(t, h, http.MethodPost, "/products/scan", `{"items":[{"barcode":"A","quantity":1}]}`, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 during shutdown, got %d", w.Code)
	}
}
