package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/pos-checkout-service/internal/catalog"
	"github.com/fairyhunter13/pos-checkout-service/internal/checkout"
	"github.com/fairyhunter13/pos-checkout-service/internal/config"
	"github.com/fairyhunter13/pos-checkout-service/internal/journal"
	"github.com/fairyhunter13/pos-checkout-service/internal/model"
)

// App bundles the handler dependencies.
type App struct {
	Cfg         config.Config
	Catalog     catalog.Store
	Coordinator *checkout.Coordinator
	Journal     *journal.Manager
	closing     bool
	started     time.Time
}

func NewApp(cfg config.Config, cat catalog.Store, coord *checkout.Coordinator, jm *journal.Manager) *App {
	return &App{Cfg: cfg, Catalog: cat, Coordinator: coord, Journal: jm, started: time.Now()}
}

// StartShutdown rejects new scan traffic and closes the journal intake.
func (a *App) StartShutdown() {
	a.closing = true
	if a.Journal != nil {
		a.Journal.CloseIntake()
	}
}

type scanRequest struct {
	Items []model.ScanItem `json:"items"`
}

type sessionResponse struct {
	RegisterID string            `json:"register_id"`
	State      checkout.State    `json:"state"`
	Entries    []model.ScanEntry `json:"entries"`
}

type cancelResponse struct {
	RegisterID string            `json:"register_id"`
	Cancelled  []model.ScanEntry `json:"cancelled"`
}

// decodeJSON enforces the request content type and strict field names.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) scanHandler(w http.ResponseWriter, r *http.Request) {
	if a.closing {
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return
	}
	var req scanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	registerID := registerIDFrom(r)
	entries, err := a.Coordinator.Scan(r.Context(), registerID, req.Items)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		RegisterID: registerID,
		State:      checkout.StateScanning,
		Entries:    entries,
	})
}

func (a *App) finishScanHandler(w http.ResponseWriter, r *http.Request) {
	if a.closing {
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return
	}
	registerID := registerIDFrom(r)
	receipt, err := a.Coordinator.Finish(r.Context(), registerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (a *App) cancelScanHandler(w http.ResponseWriter, r *http.Request) {
	registerID := registerIDFrom(r)
	entries, err := a.Coordinator.Cancel(r.Context(), registerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cancelResponse{RegisterID: registerID, Cancelled: entries})
}

func (a *App) getProductHandler(w http.ResponseWriter, r *http.Request) {
	barcode := mux.Vars(r)["barcode"]
	p, err := a.Catalog.FindByBarcode(r.Context(), barcode)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := a.Catalog.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

type createProductRequest struct {
	Barcode     string          `json:"barcode"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
}

func (a *App) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Barcode == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "barcode is required")
		return
	}
	if req.Name == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "name is required")
		return
	}
	if req.Price.IsNegative() {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "price must be >= 0")
		return
	}
	if req.Quantity < 0 {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "quantity must be >= 0")
		return
	}
	p, err := a.Catalog.Create(r.Context(), model.Product{
		Barcode:     req.Barcode,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

type updateStockRequest struct {
	Quantity int64 `json:"quantity"`
}

func (a *App) updateStockHandler(w http.ResponseWriter, r *http.Request) {
	var req updateStockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity < 0 {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "quantity must be >= 0")
		return
	}
	p, err := a.Catalog.UpdateStock(r.Context(), mux.Vars(r)["barcode"], req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *App) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.Catalog.SoftDelete(r.Context(), mux.Vars(r)["barcode"]); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (a *App) recentSalesHandler(w http.ResponseWriter, r *http.Request) {
	if a.Journal == nil {
		writeJSON(w, http.StatusOK, []model.SaleEvent{})
		return
	}
	writeJSON(w, http.StatusOK, a.Journal.Recent())
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"uptime_sec": time.Since(a.started).Seconds(),
	})
}
