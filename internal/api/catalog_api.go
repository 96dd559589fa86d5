package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/domain"
)

// CatalogAPI is a read-only view of the external product catalog. It
// loads the product list once and serves price/display lookups from
// memory; Reload refreshes the snapshot. Cart lines referencing products
// missing from the snapshot simply fail to resolve, which the cart treats
// as a zero-value stale reference.
type CatalogAPI struct {
	c *Client

	mu       sync.RWMutex
	products map[string]catalogProduct
}

type catalogProduct struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	ImageURL string               `json:"image_url"`
	Options  []domain.PriceOption `json:"options"`
}

func NewCatalogAPI(c *Client) *CatalogAPI {
	return &CatalogAPI{c: c, products: make(map[string]catalogProduct)}
}

// Reload refetches the product snapshot.
func (a *CatalogAPI) Reload(ctx context.Context) error {
	var resp struct {
		Products []catalogProduct `json:"products"`
	}
	if err := a.c.do(ctx, http.MethodGet, "/products", nil, &resp); err != nil {
		return err
	}

	next := make(map[string]catalogProduct, len(resp.Products))
	for _, p := range resp.Products {
		next[p.ID] = p
	}

	a.mu.Lock()
	a.products = next
	a.mu.Unlock()
	return nil
}

func (a *CatalogAPI) Resolve(productID, size string) (domain.PriceOption, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.products[productID]
	if !ok {
		return domain.PriceOption{}, false
	}
	for _, opt := range p.Options {
		if opt.Size == size {
			return opt, true
		}
	}
	return domain.PriceOption{}, false
}

func (a *CatalogAPI) Product(productID string) (domain.ProductInfo, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.products[productID]
	if !ok {
		return domain.ProductInfo{}, false
	}
	return domain.ProductInfo{Name: p.Name, ImageURL: p.ImageURL}, true
}
