package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fairyhunter13/pos-checkout-service/internal/http/openapi"
	"github.com/fairyhunter13/pos-checkout-service/internal/obs"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/products/scan", app.scanHandler).Methods(http.MethodPost)
	r.HandleFunc("/products/finish-scan", app.finishScanHandler).Methods(http.MethodPost)
	r.HandleFunc("/products/cancel-scan", app.cancelScanHandler).Methods(http.MethodPost)

	r.HandleFunc("/products", app.listProductsHandler).Methods(http.MethodGet)
	r.HandleFunc("/products", app.createProductHandler).Methods(http.MethodPost)
	r.HandleFunc("/products/{barcode}", app.getProductHandler).Methods(http.MethodGet)
	r.HandleFunc("/products/{barcode}", app.deleteProductHandler).Methods(http.MethodDelete)
	r.HandleFunc("/products/{barcode}/stock", app.updateStockHandler).Methods(http.MethodPut)

	r.HandleFunc("/sales/recent", app.recentSalesHandler).Methods(http.MethodGet)

	r.HandleFunc("/healthz", app.healthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", obs.MetricsHandler()).Methods(http.MethodGet)
	r.HandleFunc("/openapi.yaml", app.openapiHandler).Methods(http.MethodGet)
	r.HandleFunc("/docs", app.docsHandler).Methods(http.MethodGet)

	return WithRequestID(WithLogging(r))
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(openapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
<head>
  <title>POS Checkout Service API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = () => {
      window.ui = SwaggerUIBundle({ url: "/openapi.yaml", dom_id: "#swagger-ui" });
    };
  </script>
</body>
</html>`
	_, _ = w.Write([]byte(html))
}
