package handler

import (
	"context"
	"net/http"

	"github.com/iho/goppob/internal/adapter/http/dto"
	"github.com/iho/goppob/internal/domain"
)

// CatalogService defines the behavior needed by CatalogHandler.
type CatalogService interface {
	ListServices(ctx context.Context) ([]*domain.Service, error)
	ListBanners(ctx context.Context) ([]*domain.Banner, error)
}

// CatalogHandler serves the banner and service listings.
type CatalogHandler struct {
	catalogUC CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogUC CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogUC: catalogUC}
}

// Banners lists banners. It is public.
func (h *CatalogHandler) Banners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.catalogUC.ListBanners(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if len(banners) == 0 {
		writeJSON(w, http.StatusNotFound, dto.Envelope{Status: statusNoRecords, Message: "Data banner tidak ditemukan", Data: []any{}})
		return
	}

	writeSuccess(w, "Sukses", dto.BannersFromDomain(banners))
}

// Services lists payable services.
func (h *CatalogHandler) Services(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalogUC.ListServices(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if len(services) == 0 {
		writeJSON(w, http.StatusNotFound, dto.Envelope{Status: statusNoRecords, Message: "Data service tidak ditemukan", Data: []any{}})
		return
	}

	writeSuccess(w, "Sukses", dto.ServicesFromDomain(services))
}
