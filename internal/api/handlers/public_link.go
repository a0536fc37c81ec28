package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/dom/coinshelf/internal/service"
	"github.com/go-chi/chi/v5"
)

type PublicLinkHandler struct {
	linkService *service.PublicLinkService
	frontendURL string
}

func NewPublicLinkHandler(linkService *service.PublicLinkService, frontendURL string) *PublicLinkHandler {
	return &PublicLinkHandler{linkService: linkService, frontendURL: frontendURL}
}

type PublicLinkResponse struct {
	Message   string    `json:"message,omitempty"`
	PublicID  string    `json:"public_id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

type PublicCollectionResponse struct {
	Owner      service.PublicOwner `json:"owner"`
	ShowValues bool                `json:"show_values"`
	Items      []ItemResponse      `json:"items"`
}

func (h *PublicLinkHandler) shareURL(publicID string) string {
	return h.frontendURL + "/public/" + publicID
}

// Create issues a link, replacing any existing one.
func (h *PublicLinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	link, err := h.linkService.Create(r.Context(), userID)
	if err != nil {
		writeError(w, r, "publicLink.Create", err)
		return
	}
	writeJSON(w, http.StatusOK, PublicLinkResponse{
		Message:   "Public link generated successfully",
		PublicID:  link.PublicID,
		URL:       h.shareURL(link.PublicID),
		CreatedAt: link.CreatedAt,
	})
}

func (h *PublicLinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	link, err := h.linkService.Get(r.Context(), userID)
	if err != nil {
		writeError(w, r, "publicLink.Get", err)
		return
	}
	writeJSON(w, http.StatusOK, PublicLinkResponse{
		PublicID:  link.PublicID,
		URL:       h.shareURL(link.PublicID),
		CreatedAt: link.CreatedAt,
	})
}

func (h *PublicLinkHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.linkService.Revoke(r.Context(), userID); err != nil {
		writeError(w, r, "publicLink.Revoke", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Public link revoked successfully"})
}

// View serves the shared collection to anonymous visitors.
func (h *PublicLinkHandler) View(w http.ResponseWriter, r *http.Request) {
	publicID := strings.TrimSpace(chi.URLParam(r, "publicID"))
	if publicID == "" {
		http.Error(w, "Public collection not found", http.StatusNotFound)
		return
	}

	view, err := h.linkService.View(r.Context(), publicID)
	if err != nil {
		writeError(w, r, "publicLink.View", err)
		return
	}
	writeJSON(w, http.StatusOK, PublicCollectionResponse{
		Owner:      view.Owner,
		ShowValues: view.ShowValues,
		Items:      newItemResponses(view.Items),
	})
}
