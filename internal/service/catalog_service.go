package service

import (
	"context"
	"strings"

	"github.com/dom/coinshelf/internal/catalog"
	"github.com/dom/coinshelf/internal/domain"
)

type CatalogService struct {
	searcher CatalogSearcher
}

func NewCatalogService(searcher CatalogSearcher) *CatalogService {
	return &CatalogService{searcher: searcher}
}

func (s *CatalogService) Search(ctx context.Context, q, category string) ([]catalog.Result, error) {
	if s.searcher == nil {
		return nil, domain.ErrCatalogUnavailable
	}
	var cat domain.Category
	if strings.TrimSpace(category) != "" {
		parsed, err := domain.ParseCategory(category)
		if err != nil {
			return nil, err
		}
		cat = parsed
	}
	return s.searcher.Search(ctx, q, cat)
}
