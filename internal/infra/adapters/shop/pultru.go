package shop

import (
	"context"
	"fmt"
	"strings"

	"github.com/fqrmix/what-is-the-price-now/internal/domain"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/model"
)

type pultRuFetcher struct {
	c *pageClient
}

const (
	pultRuPriceSelector = "div.b-card div.b-card-prices div.amount--current"
	pultRuNameSelector  = "div.b-card h1"
)

func (f *pultRuFetcher) Fetch(ctx context.Context, rawURL string) (model.Article, error) {
	doc, err := f.c.document(ctx, rawURL)
	if err != nil {
		return model.Article{}, fmt.Errorf("pultru: %w", err)
	}

	price, err := parsePrice(doc.Find(pultRuPriceSelector).First().Text())
	if err != nil {
		return model.Article{}, fmt.Errorf("pultru: %w", err)
	}
	name := strings.TrimSpace(doc.Find(pultRuNameSelector).First().Text())
	if name == "" {
		return model.Article{}, fmt.Errorf("pultru: article name missing on %s: %w", rawURL, domain.ErrPriceUnavailable)
	}

	return model.Article{Name: name, Price: price}, nil
}
