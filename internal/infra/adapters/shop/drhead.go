package shop

import (
	"context"
	"fmt"
	"strings"

	"github.com/fqrmix/what-is-the-price-now/internal/domain"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/model"
)

type drHeadFetcher struct {
	c *pageClient
}

const (
	drHeadPriceSelector = "div.product-price > span"
	drHeadNameSelector  = "div.box--overlay h1"
)

func (f *drHeadFetcher) Fetch(ctx context.Context, rawURL string) (model.Article, error) {
	doc, err := f.c.document(ctx, rawURL)
	if err != nil {
		return model.Article{}, fmt.Errorf("drhead: %w", err)
	}

	price, err := parsePrice(doc.Find(drHeadPriceSelector).First().Text())
	if err != nil {
		return model.Article{}, fmt.Errorf("drhead: %w", err)
	}
	name := strings.TrimSpace(doc.Find(drHeadNameSelector).First().Text())
	if name == "" {
		return model.Article{}, fmt.Errorf("drhead: article name missing on %s: %w", rawURL, domain.ErrPriceUnavailable)
	}

	return model.Article{Name: name, Price: price}, nil
}
