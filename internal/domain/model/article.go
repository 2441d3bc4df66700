package model

import (
	"github.com/shopspring/decimal"
)

// ShopID identifies a supported storefront.
type ShopID string

const (
	ShopVinylBox      ShopID = "VINYLBOX"
	ShopPultRu        ShopID = "PULTRU"
	ShopDrHead        ShopID = "DRHEAD"
	ShopPlastinkaCom  ShopID = "PLASTINKACOM"
	ShopKorobkaVinila ShopID = "KOROBKAVINILA"
)

// Article is a cached snapshot of a tracked product. Price holds the last
// known value and is mutated only after a confirmed change.
type Article struct {
	Name  string
	Price decimal.Decimal
	Shop  ShopID
	URL   string
}
