// Package models holds the gift registry entities: the couple's list, guest
// invitations, list items with their quantity accounting, and the
// append-only purchase ledger.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GiftList is a couple's registry for one wedding. Inactive lists let the
// couple build the registry before making it public; guests never see them.
type GiftList struct {
	ID          int64     `json:"id"`
	WeddingDate time.Time `json:"wedding_date"`
	WeddingName string    `json:"wedding_name"`
	SpouseXName string    `json:"spouse_x_name"`
	SpouseYName string    `json:"spouse_y_name"`
	OwnerUserID int64     `json:"user"`
	Active      bool      `json:"active"`
}

// Guest is an invitation binding one user to one registry.
type Guest struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	RecipientName string `json:"recipient"`
	GiftListID    int64  `json:"wedding"`
	UserID        int64  `json:"user"`
}

// GiftListItem pairs a registry with a product and tracks how many are
// wanted versus already bought.
//
// Invariant: 0 <= QtyPurchased <= Qty at all times. Price is snapshotted
// when the item is created so the gift price stays fixed even if the catalog
// price changes later.
type GiftListItem struct {
	ID           int64
	GiftListID   int64
	ProductID    int64
	Qty          int
	QtyPurchased int
	Price        *decimal.Decimal
	DateAdded    time.Time
	AddedBy      int64
}

// EffectivePrice returns the snapshotted price if set, else the catalog
// price supplied by the caller.
func (i *GiftListItem) EffectivePrice(catalogPrice decimal.Decimal) decimal.Decimal {
	if i.Price != nil {
		return *i.Price
	}
	return catalogPrice
}

// Available reports whether a guest can still purchase this item.
func (i *GiftListItem) Available() bool {
	return i.QtyPurchased < i.Qty
}

// ItemView is the projection returned to clients: the item with its
// effective price resolved.
type ItemView struct {
	ID           int64           `json:"id"`
	GiftListID   int64           `json:"gift_list"`
	ProductID    int64           `json:"product"`
	Qty          int             `json:"qty"`
	QtyPurchased int             `json:"qty_purchased"`
	Price        decimal.Decimal `json:"price"`
	DateAdded    time.Time       `json:"date_added"`
	AddedBy      int64           `json:"added_by"`
}

// Purchase is one guest buying one unit of an item. Purchases are never
// mutated or deleted after creation.
type Purchase struct {
	ID       int64           `json:"id"`
	ItemID   int64           `json:"item"`
	Qty      int             `json:"qty"`
	GuestID  int64           `json:"customer"`
	DatePaid time.Time       `json:"date_paid"`
	Total    decimal.Decimal `json:"total"`
}
