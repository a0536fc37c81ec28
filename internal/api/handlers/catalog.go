package handlers

import (
	"net/http"

	"github.com/dom/coinshelf/internal/catalog"
	"github.com/dom/coinshelf/internal/service"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

type CatalogSearchResponse struct {
	Query   string           `json:"query"`
	Count   int              `json:"count"`
	Results []catalog.Result `json:"results"`
}

func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	results, err := h.catalogService.Search(r.Context(), q, r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, r, "catalog.Search", err)
		return
	}
	if results == nil {
		results = []catalog.Result{}
	}
	writeJSON(w, http.StatusOK, CatalogSearchResponse{Query: q, Count: len(results), Results: results})
}
