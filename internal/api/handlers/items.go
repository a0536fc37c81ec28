package handlers

import (
	"net/http"
	"time"

	"github.com/dom/coinshelf/internal/domain"
	"github.com/dom/coinshelf/internal/service"
	"github.com/dom/coinshelf/internal/storage"
	"github.com/google/uuid"
)

type ItemHandler struct {
	itemService *service.ItemService
}

func NewItemHandler(itemService *service.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// ItemRequest is the create/update payload. Region and is_historical are
// accepted for compatibility with older clients and ignored.
type ItemRequest struct {
	Category      string   `json:"category" validate:"max=32"`
	Type          string   `json:"type" validate:"max=32"`
	Country       string   `json:"country" validate:"required,max=100"`
	Year          *int     `json:"year" validate:"omitempty,min=-3000,max=3000"`
	Denomination  string   `json:"denomination" validate:"max=100"`
	Value         *float64 `json:"value" validate:"omitempty,min=0"`
	Quantity      *int     `json:"quantity" validate:"omitempty,min=1"`
	Notes         string   `json:"notes" validate:"max=5000"`
	ReferenceURL  string   `json:"reference_url" validate:"omitempty,url,max=2048"`
	ImageURL      string   `json:"image_url" validate:"omitempty,url,max=2048"`
	WeightGrams   *float64 `json:"weight_grams" validate:"omitempty,min=0"`
	PurityPercent *float64 `json:"purity_percent" validate:"omitempty,min=0,max=100"`
	Region        *string  `json:"region"`
	IsHistorical  *bool    `json:"is_historical"`
}

func (req ItemRequest) toInput() service.ItemInput {
	category := req.Category
	if category == "" {
		category = req.Type
	}
	return service.ItemInput{
		Category:      category,
		Country:       req.Country,
		Year:          req.Year,
		Denomination:  req.Denomination,
		Value:         req.Value,
		Quantity:      req.Quantity,
		Notes:         req.Notes,
		ReferenceURL:  req.ReferenceURL,
		ImageURL:      req.ImageURL,
		WeightGrams:   req.WeightGrams,
		PurityPercent: req.PurityPercent,
	}
}

// ItemUpdateRequest is the PUT payload. Omitted fields keep their stored
// value; region and is_historical are ignored as on create.
type ItemUpdateRequest struct {
	Category      *string  `json:"category" validate:"omitempty,max=32"`
	Type          *string  `json:"type" validate:"omitempty,max=32"`
	Country       *string  `json:"country" validate:"omitempty,max=100"`
	Year          *int     `json:"year" validate:"omitempty,min=-3000,max=3000"`
	Denomination  *string  `json:"denomination" validate:"omitempty,max=100"`
	Value         *float64 `json:"value" validate:"omitempty,min=0"`
	Quantity      *int     `json:"quantity"`
	Notes         *string  `json:"notes" validate:"omitempty,max=5000"`
	ReferenceURL  *string  `json:"reference_url" validate:"omitempty,url,max=2048"`
	ImageURL      *string  `json:"image_url" validate:"omitempty,url,max=2048"`
	WeightGrams   *float64 `json:"weight_grams" validate:"omitempty,min=0"`
	PurityPercent *float64 `json:"purity_percent" validate:"omitempty,min=0,max=100"`
	Region        *string  `json:"region"`
	IsHistorical  *bool    `json:"is_historical"`
}

func (req ItemUpdateRequest) toPatch() service.ItemPatch {
	category := req.Category
	if category == nil {
		category = req.Type
	}
	return service.ItemPatch{
		Category:      category,
		Country:       req.Country,
		Year:          req.Year,
		Denomination:  req.Denomination,
		Value:         req.Value,
		Quantity:      req.Quantity,
		Notes:         req.Notes,
		ReferenceURL:  req.ReferenceURL,
		ImageURL:      req.ImageURL,
		WeightGrams:   req.WeightGrams,
		PurityPercent: req.PurityPercent,
	}
}

type ItemResponse struct {
	ID            string          `json:"id"`
	Category      domain.Category `json:"category"`
	Country       string          `json:"country"`
	Year          *int            `json:"year"`
	Denomination  string          `json:"denomination"`
	Value         *float64        `json:"value"`
	Quantity      int             `json:"quantity"`
	Notes         string          `json:"notes"`
	ReferenceURL  string          `json:"reference_url"`
	ImageURL      string          `json:"image_url"`
	Region        string          `json:"region"`
	IsHistorical  bool            `json:"is_historical"`
	WeightGrams   *float64        `json:"weight_grams"`
	PurityPercent *float64        `json:"purity_percent"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func newItemResponse(item *domain.Item) ItemResponse {
	resp := ItemResponse{
		ID:           item.ID.String(),
		Category:     item.Category(),
		Country:      item.Country,
		Year:         item.Year,
		Denomination: item.Denomination(),
		Value:        item.Value,
		Quantity:     item.Quantity,
		Notes:        item.Notes,
		ReferenceURL: item.ReferenceURL,
		ImageURL:     item.ImageURL,
		Region:       item.Region,
		IsHistorical: item.IsHistorical,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
	if b, ok := item.Bullion(); ok {
		weight, purity := b.WeightGrams, b.PurityPercent
		resp.WeightGrams = &weight
		resp.PurityPercent = &purity
	}
	return resp
}

func newItemResponses(items []*domain.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, newItemResponse(item))
	}
	return out
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	items, err := h.itemService.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, "items.List", err)
		return
	}
	writeJSON(w, http.StatusOK, newItemResponses(items))
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req ItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "items.Create", err)
		return
	}

	item, err := h.itemService.Create(r.Context(), userID, req.toInput())
	if err != nil {
		writeError(w, r, "items.Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, newItemResponse(item))
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	item, err := h.itemService.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, "items.Get", err)
		return
	}
	writeJSON(w, http.StatusOK, newItemResponse(item))
}

// Update changes only the fields present in the body.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req ItemUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "items.Update", err)
		return
	}

	item, err := h.itemService.Update(r.Context(), userID, id, req.toPatch())
	if err != nil {
		writeError(w, r, "items.Update", err)
		return
	}
	writeJSON(w, http.StatusOK, newItemResponse(item))
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.itemService.Delete(r.Context(), userID, id); err != nil {
		writeError(w, r, "items.Delete", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Item deleted successfully"})
}

type BulkUploadResponse struct {
	Message string              `json:"message"`
	Added   int                 `json:"added"`
	Errors  []service.BulkError `json:"errors"`
	Items   []ItemResponse      `json:"items"`
}

// BulkUpload takes a JSON array of items. Entries that fail validation are
// reported by index and do not block the rest.
func (h *ItemHandler) BulkUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var reqs []ItemRequest
	if err := decodeBody(w, r, &reqs); err != nil {
		writeError(w, r, "items.BulkUpload", err)
		return
	}
	if len(reqs) == 0 {
		http.Error(w, "No items provided", http.StatusBadRequest)
		return
	}

	// Entries failing tag validation are reported with the service's errors,
	// keeping their original index.
	var (
		inputs  []service.ItemInput
		indexes []int
		errs    []service.BulkError
	)
	for i, req := range reqs {
		if err := validateStruct(req); err != nil {
			errs = append(errs, service.BulkError{Index: i, Message: errorMessage(err)})
			continue
		}
		inputs = append(inputs, req.toInput())
		indexes = append(indexes, i)
	}

	result, err := h.itemService.BulkUpload(r.Context(), userID, inputs)
	if err != nil {
		writeError(w, r, "items.BulkUpload", err)
		return
	}
	for _, e := range result.Errors {
		e.Index = indexes[e.Index]
		errs = append(errs, e)
	}
	sortBulkErrors(errs)

	resp := BulkUploadResponse{
		Added:  result.Added,
		Errors: errs,
		Items:  newItemResponses(result.Items),
	}
	if resp.Errors == nil {
		resp.Errors = []service.BulkError{}
	}
	status := http.StatusOK
	if result.Added == 0 {
		status = http.StatusBadRequest
		resp.Message = "No items were added"
	} else {
		resp.Message = "Items uploaded successfully"
	}
	writeJSON(w, status, resp)
}

type ClearAllResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

func (h *ItemHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	deleted, err := h.itemService.ClearAll(r.Context(), userID)
	if err != nil {
		writeError(w, r, "items.ClearAll", err)
		return
	}
	writeJSON(w, http.StatusOK, ClearAllResponse{Message: "Collection cleared", Deleted: deleted})
}

type DuplicateGroupResponse struct {
	Key   domain.DuplicateKey `json:"key"`
	Count int                 `json:"count"`
	Items []ItemResponse      `json:"items"`
}

func (h *ItemHandler) Duplicates(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	groups, err := h.itemService.Duplicates(r.Context(), userID)
	if err != nil {
		writeError(w, r, "items.Duplicates", err)
		return
	}

	resp := make([]DuplicateGroupResponse, 0, len(groups))
	for _, g := range groups {
		items := make([]ItemResponse, 0, len(g.Items))
		for i := range g.Items {
			items = append(items, newItemResponse(&g.Items[i]))
		}
		resp = append(resp, DuplicateGroupResponse{Key: g.Key, Count: g.Count, Items: items})
	}
	writeJSON(w, http.StatusOK, resp)
}

type MergeRequest struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=2,dive,uuid"`
}

// Merge folds item_ids into the first listed item and returns it.
func (h *ItemHandler) Merge(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req MergeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "items.Merge", err)
		return
	}
	ids := make([]uuid.UUID, 0, len(req.ItemIDs))
	for _, raw := range req.ItemIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "Invalid item id", http.StatusBadRequest)
			return
		}
		ids = append(ids, id)
	}

	merged, err := h.itemService.Merge(r.Context(), userID, ids)
	if err != nil {
		writeError(w, r, "items.Merge", err)
		return
	}
	writeJSON(w, http.StatusOK, newItemResponse(merged))
}

func (h *ItemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	stats, err := h.itemService.Stats(r.Context(), userID)
	if err != nil {
		writeError(w, r, "items.Stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type ImageUploadRequest struct {
	ContentType string `json:"content_type" validate:"required"`
}

type ImageUploadResponse struct {
	Upload *storage.Upload `json:"upload"`
	Item   ItemResponse    `json:"item"`
}

func (h *ItemHandler) ImageUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req ImageUploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "items.ImageUpload", err)
		return
	}

	upload, item, err := h.itemService.RequestImageUpload(r.Context(), userID, id, req.ContentType)
	if err != nil {
		writeError(w, r, "items.ImageUpload", err)
		return
	}
	writeJSON(w, http.StatusOK, ImageUploadResponse{Upload: upload, Item: newItemResponse(item)})
}
