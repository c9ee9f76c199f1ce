package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"giftlist/internal/catalog"
	"giftlist/pkg/platform/sentinel"
)

// Memory is a mutex-guarded in-memory catalog store, used by unit tests and
// by dev mode when no DATABASE_URL is configured.
type Memory struct {
	mu         sync.RWMutex
	brands     map[int64]*catalog.Brand
	currencies map[string]*catalog.Currency
	products   map[int64]*catalog.Product
	nextBrand  int64
	nextProd   int64
}

func NewMemory() *Memory {
	return &Memory{
		brands:     make(map[int64]*catalog.Brand),
		currencies: make(map[string]*catalog.Currency),
		products:   make(map[int64]*catalog.Product),
	}
}

func (m *Memory) ListBrands(ctx context.Context) ([]*catalog.Brand, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*catalog.Brand, 0, len(m.brands))
	for _, b := range m.brands {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListCurrencies(ctx context.Context) ([]*catalog.Currency, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*catalog.Currency, 0, len(m.currencies))
	for _, c := range m.currencies {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *Memory) ListProducts(ctx context.Context) ([]*catalog.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*catalog.Product, 0, len(m.products))
	for _, p := range m.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) FindProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *Memory) FindBrand(ctx context.Context, id int64) (*catalog.Brand, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.brands[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

// UpsertBrand finds a brand by name (case-insensitive) or creates it.
func (m *Memory) UpsertBrand(ctx context.Context, name string) (*catalog.Brand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.brands {
		if strings.EqualFold(b.Name, name) {
			cp := *b
			return &cp, nil
		}
	}
	m.nextBrand++
	b := &catalog.Brand{ID: m.nextBrand, Name: name}
	m.brands[b.ID] = b
	cp := *b
	return &cp, nil
}

// UpsertCurrency finds a currency by code (upper-cased) or creates it.
func (m *Memory) UpsertCurrency(ctx context.Context, code string) (*catalog.Currency, error) {
	code = strings.ToUpper(code)
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.currencies[code]; ok {
		cp := *c
		return &cp, nil
	}
	c := &catalog.Currency{Code: code}
	m.currencies[code] = c
	cp := *c
	return &cp, nil
}

// SaveProduct inserts or, when the ID matches an existing row, overwrites a
// product. Rows loaded with an explicit unknown ID keep that ID.
func (m *Memory) SaveProduct(ctx context.Context, product *catalog.Product) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *product
	if cp.CurrencyCode == "" {
		cp.CurrencyCode = catalog.DefaultCurrency
	}
	if cp.ID == 0 {
		m.nextProd++
		cp.ID = m.nextProd
	} else if cp.ID > m.nextProd {
		m.nextProd = cp.ID
	}
	m.products[cp.ID] = &cp
	out := cp
	return &out, nil
}
