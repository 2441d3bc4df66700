package shop

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/fqrmix/what-is-the-price-now/internal/domain"
)

// pageClient downloads product pages and hands them to goquery.
type pageClient struct {
	http      *http.Client
	userAgent string
}

func (c *pageClient) document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return doc, nil
}

// parsePrice extracts a decimal amount from storefront price text such as
// "12 500 руб." or "1 500 ₽". Fractional parts are kept when present.
func parsePrice(text string) (decimal.Decimal, error) {
	var b strings.Builder
	for _, r := range strings.ReplaceAll(text, ",", ".") {
		if unicode.IsDigit(r) || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return decimal.Decimal{}, fmt.Errorf("no digits in price text %q: %w", text, domain.ErrPriceUnavailable)
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(b.String(), "."))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse price %q: %w", text, domain.ErrPriceUnavailable)
	}
	return d, nil
}
