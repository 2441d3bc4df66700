package shop

import (
	"context"
	"fmt"
	"strings"

	"github.com/fqrmix/what-is-the-price-now/internal/domain"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/model"
)

type plastinkaComFetcher struct {
	c *pageClient
}

const (
	plastinkaPriceSelector = "div.product-card__price > span"
	plastinkaNameSelector  = "div.page-product > h1"
)

func (f *plastinkaComFetcher) Fetch(ctx context.Context, rawURL string) (model.Article, error) {
	doc, err := f.c.document(ctx, rawURL)
	if err != nil {
		return model.Article{}, fmt.Errorf("plastinkacom: %w", err)
	}

	price, err := parsePrice(doc.Find(plastinkaPriceSelector).First().Text())
	if err != nil {
		return model.Article{}, fmt.Errorf("plastinkacom: %w", err)
	}
	name := strings.TrimSpace(doc.Find(plastinkaNameSelector).First().Text())
	if name == "" {
		return model.Article{}, fmt.Errorf("plastinkacom: article name missing on %s: %w", rawURL, domain.ErrPriceUnavailable)
	}

	return model.Article{Name: name, Price: price}, nil
}
