// Package shop maps product URLs to supported storefronts and extracts
// current (name, price) snapshots from their product pages.
package shop

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fqrmix/what-is-the-price-now/internal/domain"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/model"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/ports/adapter"
)

var _ adapter.ShopDispatch = (*Dispatch)(nil)

// hostTable is the static host-name match for known storefronts,
// www-prefixed variants included.
var hostTable = map[string]model.ShopID{
	"vinylbox.ru":           model.ShopVinylBox,
	"www.vinylbox.ru":       model.ShopVinylBox,
	"pult.ru":               model.ShopPultRu,
	"www.pult.ru":           model.ShopPultRu,
	"doctorhead.ru":         model.ShopDrHead,
	"www.doctorhead.ru":     model.ShopDrHead,
	"plastinka.com":         model.ShopPlastinkaCom,
	"www.plastinka.com":     model.ShopPlastinkaCom,
	"korobkavinila.ru":      model.ShopKorobkaVinila,
	"www.korobkavinila.ru":  model.ShopKorobkaVinila,
}

// Dispatch routes fetches through a registry of per-shop fetchers.
type Dispatch struct {
	fetchers map[model.ShopID]adapter.PriceFetcher
	log      *zerolog.Logger
}

// New builds the dispatch with all supported shops registered. The
// timeout bounds every page download so a hung storefront cannot stall a
// caller beyond it.
func New(timeout time.Duration, userAgent string, logger *zerolog.Logger) *Dispatch {
	dispLog := logger.With().Str("component", "ShopDispatch").Logger()
	c := &pageClient{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
	return &Dispatch{
		fetchers: map[model.ShopID]adapter.PriceFetcher{
			model.ShopVinylBox:      &vinylBoxFetcher{c: c},
			model.ShopPultRu:        &pultRuFetcher{c: c},
			model.ShopDrHead:        &drHeadFetcher{c: c},
			model.ShopPlastinkaCom:  &plastinkaComFetcher{c: c},
			model.ShopKorobkaVinila: &korobkaVinilaFetcher{c: c},
		},
		log: &dispLog,
	}
}

// Resolve matches the URL host against the storefront table. Unknown
// hosts return false.
func (d *Dispatch) Resolve(rawURL string) (model.ShopID, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	shop, ok := hostTable[strings.ToLower(u.Hostname())]
	return shop, ok
}

// Fetch downloads and parses the product page through the shop's fetcher.
func (d *Dispatch) Fetch(ctx context.Context, shop model.ShopID, rawURL string) (model.Article, error) {
	f, ok := d.fetchers[shop]
	if !ok {
		return model.Article{}, fmt.Errorf("no fetcher for shop %s: %w", shop, domain.ErrUnsupportedShop)
	}
	d.log.Debug().Str("shop", string(shop)).Str("url", rawURL).Msg("fetching article")
	art, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return model.Article{}, err
	}
	art.Shop = shop
	art.URL = rawURL
	return art, nil
}
