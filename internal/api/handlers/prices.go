package handlers

import (
	"net/http"
	"strconv"

	"github.com/dom/coinshelf/internal/domain"
	"github.com/dom/coinshelf/internal/service"
)

type PriceHandler struct {
	priceService *service.PriceService
}

func NewPriceHandler(priceService *service.PriceService) *PriceHandler {
	return &PriceHandler{priceService: priceService}
}

// Metals always answers 200; when every source fails the static fallback
// quote is returned.
func (h *PriceHandler) Metals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.priceService.GetMetalPrices(r.Context()))
}

type PriceHistoryResponse struct {
	Snapshots []*domain.PriceSnapshot `json:"snapshots"`
}

func (h *PriceHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	snapshots, err := h.priceService.History(r.Context(), limit)
	if err != nil {
		writeError(w, r, "prices.History", err)
		return
	}
	if snapshots == nil {
		snapshots = []*domain.PriceSnapshot{}
	}
	writeJSON(w, http.StatusOK, PriceHistoryResponse{Snapshots: snapshots})
}
