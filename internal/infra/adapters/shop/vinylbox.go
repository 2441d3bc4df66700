package shop

import (
	"context"
	"fmt"
	"strings"

	"github.com/fqrmix/what-is-the-price-now/internal/domain"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/model"
)

// vinylbox.ru renders the price in a dedicated span and splits the
// artist/title across two catalog links.
type vinylBoxFetcher struct {
	c *pageClient
}

func (f *vinylBoxFetcher) Fetch(ctx context.Context, rawURL string) (model.Article, error) {
	doc, err := f.c.document(ctx, rawURL)
	if err != nil {
		return model.Article{}, fmt.Errorf("vinylbox: %w", err)
	}

	priceText := doc.Find("span#block_price").First().Text()
	if strings.TrimSpace(priceText) == "" {
		return model.Article{}, fmt.Errorf("vinylbox: price block missing on %s: %w", rawURL, domain.ErrPriceUnavailable)
	}
	price, err := parsePrice(priceText)
	if err != nil {
		return model.Article{}, fmt.Errorf("vinylbox: %w", err)
	}

	artist := strings.TrimSpace(doc.Find("div.artist-name a").First().Text())
	title := strings.TrimSpace(doc.Find("div.album-name a").First().Text())
	name := strings.TrimSpace(artist + " - " + title)
	if name == "-" {
		return model.Article{}, fmt.Errorf("vinylbox: article name missing on %s: %w", rawURL, domain.ErrPriceUnavailable)
	}

	return model.Article{Name: name, Price: price}, nil
}
