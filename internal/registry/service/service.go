// Package service implements the registry accounting core: the item and
// purchase lifecycle with its quantity invariants. All check-then-act
// sequences that race under concurrent requests are pushed down into atomic
// store operations; this layer handles entitlement and error translation.
package service

import (
	"context"
	"errors"
	"time"

	"giftlist/internal/catalog"
	"giftlist/internal/platform/metrics"
	"giftlist/internal/registry/models"
	dErrors "giftlist/pkg/domain-errors"
	"giftlist/pkg/platform/sentinel"
	"giftlist/pkg/requestcontext"
)

// GiftListStore resolves registries.
type GiftListStore interface {
	FindActiveByOwner(ctx context.Context, ownerUserID int64) (*models.GiftList, error)
	FindByID(ctx context.Context, id int64) (*models.GiftList, error)
}

// GuestStore resolves invitations.
type GuestStore interface {
	FindInvitation(ctx context.Context, giftListID, userID int64) (*models.Guest, error)
}

// ItemStore owns gift list items. AddOrIncrement and RemoveOne are atomic
// per (giftList, product) / item: concurrent calls never duplicate rows or
// lose updates.
type ItemStore interface {
	ListByGiftList(ctx context.Context, giftListID int64) ([]*models.ItemView, error)
	ListAvailable(ctx context.Context, giftListID int64) ([]*models.ItemView, error)
	AddOrIncrement(ctx context.Context, giftListID int64, product *catalog.Product, addedBy int64, now time.Time) (*models.ItemView, error)
	RemoveOne(ctx context.Context, giftListID, itemID int64) (*models.ItemView, error)
}

// PurchaseStore owns the purchase ledger. PurchaseOne performs the
// capacity-checked increment and the ledger insert as one atomic operation;
// it fails with sentinel.ErrConflict when qty_purchased has reached qty and
// sentinel.ErrNotFound when the item does not belong to the registry.
type PurchaseStore interface {
	PurchaseOne(ctx context.Context, giftListID, itemID, guestID int64, now time.Time) (*models.Purchase, error)
	ListByGuest(ctx context.Context, giftListID, guestID int64) ([]*models.Purchase, error)
}

// ProductResolver is satisfied by the catalog service.
type ProductResolver interface {
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
}

// Service is the registry accounting core.
type Service struct {
	giftLists GiftListStore
	guests    GuestStore
	items     ItemStore
	purchases PurchaseStore
	products  ProductResolver
	metrics   *metrics.Metrics
}

func New(giftLists GiftListStore, guests GuestStore, items ItemStore, purchases PurchaseStore, products ProductResolver, m *metrics.Metrics) *Service {
	return &Service{
		giftLists: giftLists,
		guests:    guests,
		items:     items,
		purchases: purchases,
		products:  products,
		metrics:   m,
	}
}

// ListItems returns the items of the caller's active registry with effective
// prices resolved.
func (s *Service) ListItems(ctx context.Context, ownerUserID int64) ([]*models.ItemView, error) {
	gl, err := s.ownRegistry(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByGiftList(ctx, gl.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list items")
	}
	return items, nil
}

// AddItem adds one unit of a product to the caller's registry. The first add
// for a (registry, product) pair creates the item and snapshots the catalog
// price; later adds increment qty and record the acting user.
func (s *Service) AddItem(ctx context.Context, ownerUserID, productID int64) (*models.ItemView, error) {
	gl, err := s.ownRegistry(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err // already a coded error from the catalog
	}

	item, err := s.items.AddOrIncrement(ctx, gl.ID, product, ownerUserID, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add item")
	}
	if s.metrics != nil {
		s.metrics.GiftItemsAdded.Inc()
	}
	return item, nil
}

// RemoveItem removes one unit of an item from the caller's registry,
// deleting the item when its quantity reaches zero. Removal that would push
// qty below qty_purchased is rejected: purchased gifts cannot be un-wanted.
// The returned projection is re-read post-update state; a deleted item comes
// back with qty 0.
func (s *Service) RemoveItem(ctx context.Context, ownerUserID, itemID int64) (*models.ItemView, error) {
	gl, err := s.ownRegistry(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}

	item, err := s.items.RemoveOne(ctx, gl.ID, itemID)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "item not found")
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.New(dErrors.CodeConflict, "item has purchases against it")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove item")
	}
	if s.metrics != nil {
		s.metrics.GiftItemsRemoved.Inc()
	}
	return item, nil
}

// GuestView lists the still-available items of an active registry the caller
// is invited to.
func (s *Service) GuestView(ctx context.Context, guestUserID, giftListID int64) ([]*models.ItemView, error) {
	if _, _, err := s.invitation(ctx, guestUserID, giftListID); err != nil {
		return nil, err
	}
	items, err := s.items.ListAvailable(ctx, giftListID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list items")
	}
	return items, nil
}

// ListPurchases returns the caller's own purchases within a registry.
func (s *Service) ListPurchases(ctx context.Context, guestUserID, giftListID int64) ([]*models.Purchase, error) {
	_, guest, err := s.invitation(ctx, guestUserID, giftListID)
	if err != nil {
		return nil, err
	}
	purchases, err := s.purchases.ListByGuest(ctx, giftListID, guest.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list purchases")
	}
	return purchases, nil
}

// PurchaseItem records one guest buying one unit of an item. The capacity
// check and the increment happen atomically in the store, so two concurrent
// purchases of the last unit cannot both succeed.
func (s *Service) PurchaseItem(ctx context.Context, guestUserID, giftListID, itemID int64) (*models.Purchase, error) {
	_, guest, err := s.invitation(ctx, guestUserID, giftListID)
	if err != nil {
		return nil, err
	}

	purchase, err := s.purchases.PurchaseOne(ctx, giftListID, itemID, guest.ID, requestcontext.Now(ctx))
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			if s.metrics != nil {
				s.metrics.PurchaseConflicts.Inc()
			}
			return nil, dErrors.New(dErrors.CodeConflict, "item could not be purchased")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "item not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to purchase item")
	}
	if s.metrics != nil {
		s.metrics.PurchasesCompleted.Inc()
	}
	return purchase, nil
}

// ownRegistry resolves the caller's active registry. Ownership failures map
// to NotFound so the API does not leak which registries exist.
func (s *Service) ownRegistry(ctx context.Context, ownerUserID int64) (*models.GiftList, error) {
	gl, err := s.giftLists.FindActiveByOwner(ctx, ownerUserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "gift list not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load gift list")
	}
	return gl, nil
}

// invitation checks that giftListID names an active registry the user holds
// an invitation to. Inactive registries and missing invitations are both
// NotFound.
func (s *Service) invitation(ctx context.Context, userID, giftListID int64) (*models.GiftList, *models.Guest, error) {
	gl, err := s.giftLists.FindByID(ctx, giftListID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "gift list not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load gift list")
	}
	if !gl.Active {
		return nil, nil, dErrors.New(dErrors.CodeNotFound, "gift list not found")
	}

	guest, err := s.guests.FindInvitation(ctx, giftListID, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "gift list not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load invitation")
	}
	return gl, guest, nil
}
