package shop

import (
	"context"
	"fmt"
	"strings"

	"github.com/fqrmix/what-is-the-price-now/internal/domain"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/model"
)

type korobkaVinilaFetcher struct {
	c *pageClient
}

const (
	korobkaPriceSelector = "div.product-info__price"
	korobkaNameSelector  = "div.product-info h1"
)

func (f *korobkaVinilaFetcher) Fetch(ctx context.Context, rawURL string) (model.Article, error) {
	doc, err := f.c.document(ctx, rawURL)
	if err != nil {
		return model.Article{}, fmt.Errorf("korobkavinila: %w", err)
	}

	price, err := parsePrice(doc.Find(korobkaPriceSelector).First().Text())
	if err != nil {
		return model.Article{}, fmt.Errorf("korobkavinila: %w", err)
	}
	name := strings.TrimSpace(doc.Find(korobkaNameSelector).First().Text())
	if name == "" {
		return model.Article{}, fmt.Errorf("korobkavinila: article name missing on %s: %w", rawURL, domain.ErrPriceUnavailable)
	}

	return model.Article{Name: name, Price: price}, nil
}
