package models

import "strings"

// ItemType tags a quote line with where its price came from.
const (
	ItemProduct = "product"
	ItemService = "service"
	ItemFree    = "libre" // free line, no catalog backing
)

// CatalogItem is the shared shape of the product and service stores. Ref is
// a human-assigned code usable as a secondary lookup key. Price is canonical
// integer cents; the business is VAT-exempt so TTC == HT and a single price
// field suffices.
type CatalogItem struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Unit        string `json:"unit"`
	PriceCent   int    `json:"price_ttc_cent"`
	Active      bool   `json:"active"`
}

func (it *CatalogItem) Validate() error {
	if strings.TrimSpace(it.Label) == "" {
		return &ValidationError{Field: "label", Reason: "libellé requis"}
	}
	if it.PriceCent < 0 {
		return &ValidationError{Field: "price_ttc_cent", Reason: "prix négatif"}
	}
	return nil
}
