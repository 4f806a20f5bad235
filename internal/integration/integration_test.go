package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/pos-checkout-service/internal/catalog"
	"github.com/fairyhunter13/pos-checkout-service/internal/checkout"
	"github.com/fairyhunter13/pos-checkout-service/internal/config"
	httpapi "github.com/fairyhunter13/pos-checkout-service/internal/http"
	"github.com/fairyhunter13/pos-checkout-service/internal/journal"
	"github.com/fairyhunter13/pos-checkout-service/internal/model"
	"github.com/fairyhunter13/pos-checkout-service/internal/obs"
)

func setupStack(t *testing.T) (http.Handler, *journal.Manager) {
	t.Helper()
	cfg := config.Load()
	obs.InitLogger()
	cat := catalog.NewMemory()
	jm := journal.NewManager(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	jm.Start(ctx)
	t.Cleanup(jm.Stop)
	coord := checkout.NewCoordinator(cat, checkout.NewRegistry(), jm, nil)
	app := httpapi.NewApp(cfg, cat, coord, jm)
	return httpapi.NewRouter(app), jm
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(http.MethodPost, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestIntegration_ScanFinishRecordsSale(t *testing.T) {
	h, jm := setupStack(t)

	w := post(t, h, "/products", `{"barcode":"milk","name":"Milk 1L","price":"1.50","quantity":10}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	w = post(t, h, "/products", `{"barcode":"rice","name":"Rice 1kg","price":"3.25","quantity":4}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", w.Code)
	}

	w = post(t, h, "/products/scan", `{"items":[{"barcode":"milk","quantity":2},{"barcode":"rice","quantity":1}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("scan: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = post(t, h, "/products/scan", `{"items":[{"barcode":"milk","quantity":1}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("scan: expected 200, got %d", w.Code)
	}

	w = post(t, h, "/products/finish-scan", "")
	if w.Code != http.StatusOK {
		t.Fatalf("finish: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var receipt model.Receipt
	if err := json.Unmarshal(w.Body.Bytes(), &receipt); err != nil {
		t.Fatalf("decode receipt: %v", err)
	}
	// 3 * 1.50 + 1 * 3.25
	if !receipt.TotalPrice.Equal(decimal.RequireFromString("7.75")) {
		t.Fatalf("unexpected total: %s", receipt.TotalPrice)
	}
	if len(receipt.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(receipt.Lines))
	}

	rg := httptest.NewRequest(http.MethodGet, "/products/milk", nil)
	wg := httptest.NewRecorder()
	h.ServeHTTP(wg, rg)
	var p model.Product
	if err := json.Unmarshal(wg.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	if p.Quantity != 7 || p.Sold != 3 {
		t.Fatalf("inventory mismatch: %+v", p)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if ok := jm.DrainUntil(ctx); !ok {
		t.Fatalf("drain timeout")
	}
	rs := httptest.NewRequest(http.MethodGet, "/sales/recent", nil)
	ws := httptest.NewRecorder()
	h.ServeHTTP(ws, rs)
	if ws.Code != http.StatusOK {
		t.Fatalf("recent: expected 200, got %d", ws.Code)
	}
	var events []model.SaleEvent
	if err := json.Unmarshal(ws.Body.Bytes(), &events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) != 1 || events[0].Kind != model.SaleEventCheckout || events[0].ReceiptID != receipt.ID {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestIntegration_CancelIsAudited(t *testing.T) {
	h, jm := setupStack(t)

	w := post(t, h, "/products", `{"barcode":"soap","name":"Soap","price":"0.99","quantity":5}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", w.Code)
	}
	if w = post(t, h, "/products/scan", `{"items":[{"barcode":"soap","quantity":2}]}`); w.Code != http.StatusOK {
		t.Fatalf("scan: expected 200, got %d", w.Code)
	}
	if w = post(t, h, "/products/cancel-scan", ""); w.Code != http.StatusOK {
		t.Fatalf("cancel: expected 200, got %d", w.Code)
	}

	// Session is gone, so a finish now conflicts.
	if w = post(t, h, "/products/finish-scan", ""); w.Code != http.StatusConflict {
		t.Fatalf("finish after cancel: expected 409, got %d", w.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if ok := jm.DrainUntil(ctx); !ok {
		t.Fatalf("drain timeout")
	}
	rs := httptest.NewRequest(http.MethodGet, "/sales/recent", nil)
	ws := httptest.NewRecorder()
	h.ServeHTTP(ws, rs)
	var events []model.SaleEvent
	if err := json.Unmarshal(ws.Body.Bytes(), &events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) != 1 || events[0].Kind != model.SaleEventCancellation {
		t.Fatalf("unexpected events: %+v", events)
	}
	if len(events[0].Entries) != 1 || events[0].Entries[0].Quantity != 2 {
		t.Fatalf("cancellation entries wrong: %+v", events[0].Entries)
	}
}
