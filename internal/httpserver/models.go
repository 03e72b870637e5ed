package httpserver

import "net/http"

// listModels handles GET /v1/models, returning the built-in catalog
// entries for every configured provider.
func (h *handlers) listModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]interface{}{
		"object": "list",
		"data":   h.reg.ModelCatalog(),
	})
}
