package domain

// LineKey identifies one cart line. The same product in two sizes is two
// independent lines.
type LineKey struct {
	ProductID string
	Size      string
}

// CartLine is one (product, size) -> quantity entry. A line with
// quantity <= 0 never exists in a cart; absence means "not in cart".
type CartLine struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: l.Size}
}

// PriceOption is one of the immutable size variants attached to a catalog
// product: unit price in minor currency units, unit weight in grams.
type PriceOption struct {
	Size       string `json:"size"`
	UnitPrice  int64  `json:"unit_price"`
	UnitWeight int    `json:"unit_weight"`
}

// PriceResolver resolves a (product, size) pair against the catalog.
// The catalog is an external collaborator; a cart is allowed to hold
// stale references that no longer resolve.
type PriceResolver interface {
	Resolve(productID, size string) (PriceOption, bool)
}

// ProductInfo is the display slice of a catalog product used to freeze
// order line items at checkout.
type ProductInfo struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// Catalog extends price resolution with product display data.
type Catalog interface {
	PriceResolver
	Product(productID string) (ProductInfo, bool)
}
