package adapter

import (
	"context"

	"github.com/fqrmix/what-is-the-price-now/internal/domain/model"
)

// PriceFetcher extracts the current (name, price) snapshot from one
// storefront's product page. Each storefront has its own implementation
// and each is independently fallible.
type PriceFetcher interface {
	Fetch(ctx context.Context, rawURL string) (model.Article, error)
}

// ShopDispatch maps product URLs onto supported storefronts and routes
// fetches to the matching PriceFetcher.
type ShopDispatch interface {
	// Resolve matches the URL host against the table of known storefront
	// domains (www-prefixed variants included). Unknown hosts return false.
	Resolve(rawURL string) (model.ShopID, bool)
	Fetch(ctx context.Context, shop model.ShopID, rawURL string) (model.Article, error)
}
