package store

import (
	"context"
	"fmt"
	"sort"

	"giftlist/internal/report"
	"giftlist/pkg/platform/sentinel"
)

// Report aggregation lives next to the accounting state so both backends can
// answer it from one place: SQL joins in Postgres, map walks in memory.

// FindActiveByOwnerID satisfies report.OwnerResolver.
func (m *Memory) FindActiveByOwnerID(ctx context.Context, ownerUserID int64) (int64, error) {
	gl, err := m.FindActiveByOwner(ctx, ownerUserID)
	if err != nil {
		return 0, err
	}
	return gl.ID, nil
}

func (m *Memory) PurchasedRows(ctx context.Context, giftListID int64) ([]*report.PurchasedRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	gl, ok := m.giftLists[giftListID]
	if !ok || !gl.Active {
		return nil, sentinel.ErrNotFound
	}

	var out []*report.PurchasedRow
	for _, p := range m.purchases {
		item, ok := m.items[p.ItemID]
		if !ok || item.GiftListID != giftListID {
			continue
		}
		guest, ok := m.guests[p.GuestID]
		if !ok {
			continue
		}
		product, err := m.products.FindProduct(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		brand, err := m.products.FindBrand(ctx, product.BrandID)
		if err != nil {
			return nil, err
		}
		out = append(out, &report.PurchasedRow{
			ProductName:   product.Name,
			BrandName:     brand.Name,
			UnitPrice:     item.EffectivePrice(product.Price),
			QtyPurchased:  p.Qty,
			RecipientName: guest.RecipientName,
			DatePaid:      p.DatePaid,
			Total:         p.Total,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DatePaid.Equal(out[j].DatePaid) {
			return out[i].DatePaid.After(out[j].DatePaid)
		}
		return out[i].Total.GreaterThan(out[j].Total)
	})
	return out, nil
}

func (m *Memory) RemainingRows(ctx context.Context, giftListID int64) ([]*report.RemainingRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	gl, ok := m.giftLists[giftListID]
	if !ok || !gl.Active {
		return nil, sentinel.ErrNotFound
	}

	var out []*report.RemainingRow
	for _, item := range m.items {
		if item.GiftListID != giftListID {
			continue
		}
		remaining := item.Qty - item.QtyPurchased
		if remaining <= 0 {
			continue
		}
		product, err := m.products.FindProduct(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		brand, err := m.products.FindBrand(ctx, product.BrandID)
		if err != nil {
			return nil, err
		}
		out = append(out, &report.RemainingRow{
			ProductName:  product.Name,
			BrandName:    brand.Name,
			UnitPrice:    item.EffectivePrice(product.Price),
			RemainingQty: remaining,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out, nil
}

// FindActiveByOwnerID satisfies report.OwnerResolver.
func (s *Postgres) FindActiveByOwnerID(ctx context.Context, ownerUserID int64) (int64, error) {
	gl, err := s.FindActiveByOwner(ctx, ownerUserID)
	if err != nil {
		return 0, err
	}
	return gl.ID, nil
}

func (s *Postgres) PurchasedRows(ctx context.Context, giftListID int64) ([]*report.PurchasedRow, error) {
	if err := s.requireActive(ctx, giftListID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.name, b.name, COALESCE(i.price, p.price), pu.qty, g.recipient_name, pu.date_paid, pu.total
		FROM purchases pu
		JOIN gift_list_items i ON i.id = pu.item_id
		JOIN products p ON p.id = i.product_id
		JOIN brands b ON b.id = p.brand_id
		JOIN guests g ON g.id = pu.guest_id
		WHERE i.gift_list_id = $1
		ORDER BY pu.date_paid DESC, pu.total DESC
	`, giftListID)
	if err != nil {
		return nil, fmt.Errorf("purchased rows: %w", err)
	}
	defer rows.Close()

	var out []*report.PurchasedRow
	for rows.Next() {
		var r report.PurchasedRow
		if err := rows.Scan(&r.ProductName, &r.BrandName, &r.UnitPrice, &r.QtyPurchased,
			&r.RecipientName, &r.DatePaid, &r.Total); err != nil {
			return nil, fmt.Errorf("scan purchased row: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *Postgres) RemainingRows(ctx context.Context, giftListID int64) ([]*report.RemainingRow, error) {
	if err := s.requireActive(ctx, giftListID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.name, b.name, COALESCE(i.price, p.price), i.qty - i.qty_purchased
		FROM gift_list_items i
		JOIN products p ON p.id = i.product_id
		JOIN brands b ON b.id = p.brand_id
		WHERE i.gift_list_id = $1 AND i.qty > i.qty_purchased
		ORDER BY p.name
	`, giftListID)
	if err != nil {
		return nil, fmt.Errorf("remaining rows: %w", err)
	}
	defer rows.Close()

	var out []*report.RemainingRow
	for rows.Next() {
		var r report.RemainingRow
		if err := rows.Scan(&r.ProductName, &r.BrandName, &r.UnitPrice, &r.RemainingQty); err != nil {
			return nil, fmt.Errorf("scan remaining row: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *Postgres) requireActive(ctx context.Context, giftListID int64) error {
	gl, err := s.FindByID(ctx, giftListID)
	if err != nil {
		return err
	}
	if !gl.Active {
		return sentinel.ErrNotFound
	}
	return nil
}
