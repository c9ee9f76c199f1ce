// Package store provides the registry persistence gateway: a mutex-guarded
// in-memory implementation and a PostgreSQL implementation. Both expose the
// same atomic operations so the accounting core never has to reason about
// interleavings.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"giftlist/internal/catalog"
	"giftlist/internal/registry/models"
	"giftlist/pkg/platform/sentinel"
)

// ProductFinder resolves catalog prices for items without a snapshot. The
// catalog store satisfies it.
type ProductFinder interface {
	FindProduct(ctx context.Context, id int64) (*catalog.Product, error)
	FindBrand(ctx context.Context, id int64) (*catalog.Brand, error)
}

// Memory keeps all registry state behind one mutex, which makes every
// operation trivially atomic. Used by unit tests and dev mode.
type Memory struct {
	mu        sync.Mutex
	products  ProductFinder
	giftLists map[int64]*models.GiftList
	guests    map[int64]*models.Guest
	items     map[int64]*models.GiftListItem
	purchases map[int64]*models.Purchase
	nextID    int64
}

func NewMemory(products ProductFinder) *Memory {
	return &Memory{
		products:  products,
		giftLists: make(map[int64]*models.GiftList),
		guests:    make(map[int64]*models.Guest),
		items:     make(map[int64]*models.GiftListItem),
		purchases: make(map[int64]*models.Purchase),
	}
}

// ---------------------------------------------------------------------------
// GiftListStore / GuestStore
// ---------------------------------------------------------------------------

// CreateGiftList persists a registry. At most one active registry per owner:
// a second active one fails with ErrAlreadyUsed.
func (m *Memory) CreateGiftList(ctx context.Context, gl *models.GiftList) (*models.GiftList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gl.Active {
		for _, existing := range m.giftLists {
			if existing.OwnerUserID == gl.OwnerUserID && existing.Active {
				return nil, sentinel.ErrAlreadyUsed
			}
		}
	}
	cp := *gl
	m.nextID++
	cp.ID = m.nextID
	m.giftLists[cp.ID] = &cp
	out := cp
	return &out, nil
}

// CreateGuest persists an invitation.
func (m *Memory) CreateGuest(ctx context.Context, g *models.Guest) (*models.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *g
	m.nextID++
	cp.ID = m.nextID
	m.guests[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *Memory) FindActiveByOwner(ctx context.Context, ownerUserID int64) (*models.GiftList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, gl := range m.giftLists {
		if gl.OwnerUserID == ownerUserID && gl.Active {
			cp := *gl
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (m *Memory) FindByID(ctx context.Context, id int64) (*models.GiftList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gl, ok := m.giftLists[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *gl
	return &cp, nil
}

func (m *Memory) FindInvitation(ctx context.Context, giftListID, userID int64) (*models.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.guests {
		if g.GiftListID == giftListID && g.UserID == userID {
			cp := *g
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// ---------------------------------------------------------------------------
// ItemStore
// ---------------------------------------------------------------------------

func (m *Memory) ListByGiftList(ctx context.Context, giftListID int64) ([]*models.ItemView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listLocked(ctx, giftListID, false)
}

func (m *Memory) ListAvailable(ctx context.Context, giftListID int64) ([]*models.ItemView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listLocked(ctx, giftListID, true)
}

func (m *Memory) listLocked(ctx context.Context, giftListID int64, availableOnly bool) ([]*models.ItemView, error) {
	var out []*models.ItemView
	for _, item := range m.items {
		if item.GiftListID != giftListID {
			continue
		}
		if availableOnly && !item.Available() {
			continue
		}
		view, err := m.viewLocked(ctx, item)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AddOrIncrement creates the item on the first add for this (registry,
// product) pair, snapshotting the catalog price, and increments qty on every
// later add. The whole find-or-create runs under the store lock.
func (m *Memory) AddOrIncrement(ctx context.Context, giftListID int64, product *catalog.Product, addedBy int64, now time.Time) (*models.ItemView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range m.items {
		if item.GiftListID == giftListID && item.ProductID == product.ID {
			item.Qty++
			item.AddedBy = addedBy
			return m.viewLocked(ctx, item)
		}
	}

	price := product.Price
	m.nextID++
	item := &models.GiftListItem{
		ID:         m.nextID,
		GiftListID: giftListID,
		ProductID:  product.ID,
		Qty:        1,
		Price:      &price,
		DateAdded:  now,
		AddedBy:    addedBy,
	}
	m.items[item.ID] = item
	return m.viewLocked(ctx, item)
}

// RemoveOne decrements qty, deleting the item when it reaches zero. Fails
// with ErrConflict when the decrement would leave qty below qty_purchased.
func (m *Memory) RemoveOne(ctx context.Context, giftListID, itemID int64) (*models.ItemView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[itemID]
	if !ok || item.GiftListID != giftListID {
		return nil, sentinel.ErrNotFound
	}
	if item.Qty-1 < item.QtyPurchased {
		return nil, sentinel.ErrConflict
	}

	if item.Qty == 1 {
		delete(m.items, itemID)
		gone := *item
		gone.Qty = 0
		return m.viewLocked(ctx, &gone)
	}
	item.Qty--
	return m.viewLocked(ctx, item)
}

// ---------------------------------------------------------------------------
// PurchaseStore
// ---------------------------------------------------------------------------

// PurchaseOne is the capacity-checked purchase: increment qty_purchased and
// append to the ledger under one lock hold. Exhausted capacity is
// ErrConflict, an item outside the registry is ErrNotFound.
func (m *Memory) PurchaseOne(ctx context.Context, giftListID, itemID, guestID int64, now time.Time) (*models.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[itemID]
	if !ok || item.GiftListID != giftListID {
		return nil, sentinel.ErrNotFound
	}
	if !item.Available() {
		return nil, sentinel.ErrConflict
	}

	total, err := m.effectivePriceLocked(ctx, item)
	if err != nil {
		return nil, err
	}

	item.QtyPurchased++
	m.nextID++
	p := &models.Purchase{
		ID:       m.nextID,
		ItemID:   item.ID,
		Qty:      1,
		GuestID:  guestID,
		DatePaid: now,
		Total:    total,
	}
	m.purchases[p.ID] = p
	cp := *p
	return &cp, nil
}

func (m *Memory) ListByGuest(ctx context.Context, giftListID, guestID int64) ([]*models.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Purchase
	for _, p := range m.purchases {
		if p.GuestID != guestID {
			continue
		}
		item, ok := m.items[p.ItemID]
		if !ok || item.GiftListID != giftListID {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func (m *Memory) viewLocked(ctx context.Context, item *models.GiftListItem) (*models.ItemView, error) {
	price, err := m.effectivePriceLocked(ctx, item)
	if err != nil {
		return nil, err
	}
	return &models.ItemView{
		ID:           item.ID,
		GiftListID:   item.GiftListID,
		ProductID:    item.ProductID,
		Qty:          item.Qty,
		QtyPurchased: item.QtyPurchased,
		Price:        price,
		DateAdded:    item.DateAdded,
		AddedBy:      item.AddedBy,
	}, nil
}

func (m *Memory) effectivePriceLocked(ctx context.Context, item *models.GiftListItem) (decimal.Decimal, error) {
	if item.Price != nil {
		return *item.Price, nil
	}
	product, err := m.products.FindProduct(ctx, item.ProductID)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return product.Price, nil
}
