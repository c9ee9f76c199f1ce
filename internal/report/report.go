// Package report computes purchased/remaining summaries for a registry and
// renders them as a downloadable PDF. Pure reads over accounting state.
package report

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	dErrors "giftlist/pkg/domain-errors"
	"giftlist/pkg/platform/sentinel"
)

// PurchasedRow is one purchase with its product and guest resolved.
type PurchasedRow struct {
	ProductName   string          `json:"product_name"`
	BrandName     string          `json:"brand_name"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	QtyPurchased  int             `json:"qty_purchased"`
	RecipientName string          `json:"recipient"`
	DatePaid      time.Time       `json:"date_paid"`
	Total         decimal.Decimal `json:"total"`
}

// RemainingRow is one item with units still waiting to be bought.
type RemainingRow struct {
	ProductName  string          `json:"product_name"`
	BrandName    string          `json:"brand_name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	RemainingQty int             `json:"remaining_qty"`
}

// Store aggregates accounting state. Implementations order purchased rows by
// date_paid descending then total descending, and omit remaining rows that
// hit zero. Both fail with sentinel.ErrNotFound when the registry does not
// exist or is inactive.
type Store interface {
	PurchasedRows(ctx context.Context, giftListID int64) ([]*PurchasedRow, error)
	RemainingRows(ctx context.Context, giftListID int64) ([]*RemainingRow, error)
}

// OwnerResolver resolves the caller's active registry; the registry gift
// list store satisfies it.
type OwnerResolver interface {
	FindActiveByOwnerID(ctx context.Context, ownerUserID int64) (int64, error)
}

// Service is the reporting aggregator.
type Service struct {
	store  Store
	owners OwnerResolver
}

func NewService(store Store, owners OwnerResolver) *Service {
	return &Service{store: store, owners: owners}
}

// Summary is the full report payload for one registry.
type Summary struct {
	Purchased []*PurchasedRow
	Remaining []*RemainingRow
}

// ForOwner builds the summary for the caller's active registry.
func (s *Service) ForOwner(ctx context.Context, ownerUserID int64) (*Summary, error) {
	giftListID, err := s.owners.FindActiveByOwnerID(ctx, ownerUserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "gift list not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load gift list")
	}

	purchased, err := s.store.PurchasedRows(ctx, giftListID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to aggregate purchases")
	}
	remaining, err := s.store.RemainingRows(ctx, giftListID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to aggregate remaining items")
	}
	return &Summary{Purchased: purchased, Remaining: remaining}, nil
}
