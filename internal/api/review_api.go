package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/domain"
)

type ReviewAPI struct {
	c *Client
}

func NewReviewAPI(c *Client) *ReviewAPI {
	return &ReviewAPI{c: c}
}

type createReviewRequest struct {
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type reviewListResponse struct {
	Reviews []domain.Review `json:"reviews"`
}

// ListMine returns the current user's reviews, the basis for the
// one-review-per-(order,product) gate.
func (a *ReviewAPI) ListMine(ctx context.Context) ([]domain.Review, error) {
	var resp reviewListResponse
	if err := a.c.do(ctx, http.MethodGet, "/reviews/mine", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Reviews, nil
}

func (a *ReviewAPI) ListForProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	var resp reviewListResponse
	path := fmt.Sprintf("/products/%s/reviews", url.PathEscape(productID))
	if err := a.c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Reviews, nil
}

func (a *ReviewAPI) Create(ctx context.Context, orderID, productID string, rating int, comment string) error {
	return a.c.do(ctx, http.MethodPost, "/reviews",
		createReviewRequest{OrderID: orderID, ProductID: productID, Rating: rating, Comment: comment}, nil)
}
