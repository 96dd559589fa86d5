package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/domain"
)

// CartAPI talks to the remote cart service, the source of truth the local
// cart store reconciles against.
type CartAPI struct {
	c *Client
}

func NewCartAPI(c *Client) *CartAPI {
	return &CartAPI{c: c}
}

type cartLineRequest struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type cartSnapshotResponse struct {
	Lines []domain.CartLine `json:"lines"`
}

func (a *CartAPI) AddLine(ctx context.Context, productID, size string, qty int) error {
	return a.c.do(ctx, http.MethodPost, "/cart/items",
		cartLineRequest{ProductID: productID, Size: size, Quantity: qty}, nil)
}

func (a *CartAPI) SetLine(ctx context.Context, productID, size string, qty int) error {
	path := fmt.Sprintf("/cart/items/%s/%s", url.PathEscape(productID), url.PathEscape(size))
	return a.c.do(ctx, http.MethodPut, path, cartLineRequest{
		ProductID: productID, Size: size, Quantity: qty,
	}, nil)
}

func (a *CartAPI) RemoveLine(ctx context.Context, productID, size string) error {
	path := fmt.Sprintf("/cart/items/%s/%s", url.PathEscape(productID), url.PathEscape(size))
	return a.c.do(ctx, http.MethodDelete, path, nil, nil)
}

// GetCart returns the full remote snapshot, used to (re)seed the local
// store after login or a refresh.
func (a *CartAPI) GetCart(ctx context.Context) ([]domain.CartLine, error) {
	var resp cartSnapshotResponse
	if err := a.c.do(ctx, http.MethodGet, "/cart", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Lines, nil
}
