// Package catalog manages the product and service stores and resolves
// partial quote-line references against them.
package catalog

import (
	"strings"

	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/diewo77/go-backoffice/internal/money"
	"github.com/diewo77/go-backoffice/internal/store"
)

// Service orchestrates the two catalog stores. Products and services share
// the CatalogItem shape but live in separate files.
type Service struct {
	products *store.Store
	services *store.Store
}

func New(products, services *store.Store) *Service {
	return &Service{products: products, services: services}
}

// LineRef is the partial description a quote line carries: any of an item
// id, a ref code, or just a label.
type LineRef struct {
	ItemID string
	Ref    string
	Label  string
}

func (s *Service) storeFor(itemType string) *store.Store {
	if itemType == models.ItemService {
		return s.services
	}
	return s.products
}

// ---- CRUD ----

func (s *Service) List(itemType string) []models.CatalogItem {
	return decodeAll(s.storeFor(itemType).ListAll())
}

func (s *Service) Get(itemType, id string) (models.CatalogItem, bool) {
	rec, ok := s.storeFor(itemType).Get(id)
	if !ok {
		return models.CatalogItem{}, false
	}
	return decodeItem(rec)
}

func (s *Service) Add(itemType string, it models.CatalogItem) (models.CatalogItem, error) {
	if err := it.Validate(); err != nil {
		return models.CatalogItem{}, err
	}
	if it.ID == "" {
		it.ID = models.GenID()
	}
	rec, err := models.ToRecord(it)
	if err != nil {
		return models.CatalogItem{}, err
	}
	if _, err := s.storeFor(itemType).Add(rec); err != nil {
		return models.CatalogItem{}, err
	}
	return it, nil
}

func (s *Service) Update(itemType string, it models.CatalogItem) (models.CatalogItem, error) {
	if err := it.Validate(); err != nil {
		return models.CatalogItem{}, err
	}
	rec, err := models.ToRecord(it)
	if err != nil {
		return models.CatalogItem{}, err
	}
	if _, err := s.storeFor(itemType).Upsert(rec); err != nil {
		return models.CatalogItem{}, err
	}
	return it, nil
}

func (s *Service) Delete(itemType, id string) bool {
	return s.storeFor(itemType).Delete(id)
}

// ---- Lookup ----

// Lookup resolves ref to the best-matching catalog item, trying in order:
// exact id, exact trimmed ref code (case-sensitive), then trimmed
// case-insensitive label as a last resort. Each strategy tries products
// before services. On label ties, active items win; within the same active
// flag the first in store order wins. Returns a copy; never errors.
func (s *Service) Lookup(ref LineRef) (models.CatalogItem, string, bool) {
	ordered := []struct {
		typ   string
		store *store.Store
	}{
		{models.ItemProduct, s.products},
		{models.ItemService, s.services},
	}

	if id := strings.TrimSpace(ref.ItemID); id != "" {
		for _, c := range ordered {
			if rec, ok := c.store.Get(id); ok {
				if it, ok := decodeItem(rec); ok {
					return it, c.typ, true
				}
			}
		}
	}

	if code := strings.TrimSpace(ref.Ref); code != "" {
		for _, c := range ordered {
			rec, ok := c.store.FindOne(func(r store.Record) bool {
				v, _ := r["ref"].(string)
				return strings.TrimSpace(v) == code
			})
			if ok {
				if it, ok := decodeItem(rec); ok {
					return it, c.typ, true
				}
			}
		}
	}

	if label := strings.TrimSpace(ref.Label); label != "" {
		want := strings.ToLower(label)
		for _, c := range ordered {
			matches := decodeAll(c.store.Find(func(r store.Record) bool {
				v, _ := r["label"].(string)
				return strings.ToLower(strings.TrimSpace(v)) == want
			}))
			if len(matches) == 0 {
				continue
			}
			for _, it := range matches {
				if it.Active {
					return it, c.typ, true
				}
			}
			return matches[0], c.typ, true
		}
	}

	return models.CatalogItem{}, "", false
}

func decodeItem(rec store.Record) (models.CatalogItem, bool) {
	var it models.CatalogItem
	if err := models.FromRecord(rec, &it); err != nil {
		return models.CatalogItem{}, false
	}
	// hand-edited files sometimes carry the price under a legacy name
	it.PriceCent = money.NormalizeCents(rec)
	return it, true
}

// decodeAll skips records that no longer decode rather than failing the
// whole listing.
func decodeAll(recs []store.Record) []models.CatalogItem {
	out := make([]models.CatalogItem, 0, len(recs))
	for _, rec := range recs {
		if it, ok := decodeItem(rec); ok {
			out = append(out, it)
		}
	}
	return out
}
