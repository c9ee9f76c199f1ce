package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"giftlist/internal/catalog"
	"giftlist/internal/registry/models"
	"giftlist/pkg/platform/sentinel"
)

// Postgres persists registry state in PostgreSQL. Atomicity comes from
// conditional single-statement updates and short transactions, never from
// service-side locking.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// ---------------------------------------------------------------------------
// GiftListStore / GuestStore
// ---------------------------------------------------------------------------

// CreateGiftList inserts a registry. The partial unique index on
// (owner_user_id) WHERE active enforces one active registry per owner.
func (s *Postgres) CreateGiftList(ctx context.Context, gl *models.GiftList) (*models.GiftList, error) {
	saved := *gl
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO gift_lists (wedding_date, wedding_name, spouse_x_name, spouse_y_name, owner_user_id, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, gl.WeddingDate, gl.WeddingName, gl.SpouseXName, gl.SpouseYName, gl.OwnerUserID, gl.Active).Scan(&saved.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, sentinel.ErrAlreadyUsed
		}
		return nil, fmt.Errorf("create gift list: %w", err)
	}
	return &saved, nil
}

// CreateGuest inserts an invitation.
func (s *Postgres) CreateGuest(ctx context.Context, g *models.Guest) (*models.Guest, error) {
	saved := *g
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO guests (email, recipient_name, gift_list_id, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, g.Email, g.RecipientName, g.GiftListID, g.UserID).Scan(&saved.ID)
	if err != nil {
		return nil, fmt.Errorf("create guest: %w", err)
	}
	return &saved, nil
}

func (s *Postgres) FindActiveByOwner(ctx context.Context, ownerUserID int64) (*models.GiftList, error) {
	return s.findGiftList(ctx,
		`SELECT id, wedding_date, wedding_name, spouse_x_name, spouse_y_name, owner_user_id, active
		 FROM gift_lists WHERE owner_user_id = $1 AND active`, ownerUserID)
}

func (s *Postgres) FindByID(ctx context.Context, id int64) (*models.GiftList, error) {
	return s.findGiftList(ctx,
		`SELECT id, wedding_date, wedding_name, spouse_x_name, spouse_y_name, owner_user_id, active
		 FROM gift_lists WHERE id = $1`, id)
}

func (s *Postgres) findGiftList(ctx context.Context, query string, arg any) (*models.GiftList, error) {
	var gl models.GiftList
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&gl.ID, &gl.WeddingDate, &gl.WeddingName, &gl.SpouseXName, &gl.SpouseYName, &gl.OwnerUserID, &gl.Active)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find gift list: %w", err)
	}
	return &gl, nil
}

func (s *Postgres) FindInvitation(ctx context.Context, giftListID, userID int64) (*models.Guest, error) {
	var g models.Guest
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, recipient_name, gift_list_id, user_id
		FROM guests WHERE gift_list_id = $1 AND user_id = $2
	`, giftListID, userID).Scan(&g.ID, &g.Email, &g.RecipientName, &g.GiftListID, &g.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find invitation: %w", err)
	}
	return &g, nil
}

// ---------------------------------------------------------------------------
// ItemStore
// ---------------------------------------------------------------------------

const itemViewSelect = `
	SELECT i.id, i.gift_list_id, i.product_id, i.qty, i.qty_purchased,
	       COALESCE(i.price, p.price) AS price, i.date_added, i.added_by
	FROM gift_list_items i
	JOIN products p ON p.id = i.product_id
`

func (s *Postgres) ListByGiftList(ctx context.Context, giftListID int64) ([]*models.ItemView, error) {
	return s.listItems(ctx, itemViewSelect+` WHERE i.gift_list_id = $1 ORDER BY i.id`, giftListID)
}

func (s *Postgres) ListAvailable(ctx context.Context, giftListID int64) ([]*models.ItemView, error) {
	return s.listItems(ctx,
		itemViewSelect+` WHERE i.gift_list_id = $1 AND i.qty > i.qty_purchased ORDER BY i.id`, giftListID)
}

func (s *Postgres) listItems(ctx context.Context, query string, args ...any) ([]*models.ItemView, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var out []*models.ItemView
	for rows.Next() {
		var v models.ItemView
		if err := rows.Scan(&v.ID, &v.GiftListID, &v.ProductID, &v.Qty, &v.QtyPurchased,
			&v.Price, &v.DateAdded, &v.AddedBy); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

// AddOrIncrement relies on the unique (gift_list_id, product_id) index: the
// insert either creates the item with a price snapshot or bumps qty on the
// existing row, in a single statement.
func (s *Postgres) AddOrIncrement(ctx context.Context, giftListID int64, product *catalog.Product, addedBy int64, now time.Time) (*models.ItemView, error) {
	var v models.ItemView
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO gift_list_items (gift_list_id, product_id, qty, qty_purchased, price, date_added, added_by)
		VALUES ($1, $2, 1, 0, $3, $4, $5)
		ON CONFLICT (gift_list_id, product_id) DO UPDATE SET
			qty = gift_list_items.qty + 1,
			added_by = EXCLUDED.added_by
		RETURNING id, gift_list_id, product_id, qty, qty_purchased, COALESCE(price, $3), date_added, added_by
	`, giftListID, product.ID, product.Price, now, addedBy).Scan(
		&v.ID, &v.GiftListID, &v.ProductID, &v.Qty, &v.QtyPurchased, &v.Price, &v.DateAdded, &v.AddedBy)
	if err != nil {
		return nil, fmt.Errorf("add or increment item: %w", err)
	}
	return &v, nil
}

// RemoveOne decrements qty or deletes the row, both guarded so qty never
// drops below qty_purchased. Conditional statements keep this race-free
// without an explicit row lock.
func (s *Postgres) RemoveOne(ctx context.Context, giftListID, itemID int64) (*models.ItemView, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin remove tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var item models.GiftListItem
	err = tx.QueryRowContext(ctx, `
		SELECT id, qty, qty_purchased FROM gift_list_items
		WHERE id = $1 AND gift_list_id = $2
		FOR UPDATE
	`, itemID, giftListID).Scan(&item.ID, &item.Qty, &item.QtyPurchased)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock item: %w", err)
	}
	if item.Qty-1 < item.QtyPurchased {
		return nil, sentinel.ErrConflict
	}

	if item.Qty == 1 {
		var v models.ItemView
		err = tx.QueryRowContext(ctx, `
			DELETE FROM gift_list_items i USING products p
			WHERE i.id = $1 AND p.id = i.product_id
			RETURNING i.id, i.gift_list_id, i.product_id, 0, i.qty_purchased,
			          COALESCE(i.price, p.price), i.date_added, i.added_by
		`, itemID).Scan(&v.ID, &v.GiftListID, &v.ProductID, &v.Qty, &v.QtyPurchased,
			&v.Price, &v.DateAdded, &v.AddedBy)
		if err != nil {
			return nil, fmt.Errorf("delete item: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit remove tx: %w", err)
		}
		return &v, nil
	}

	var v models.ItemView
	err = tx.QueryRowContext(ctx, `
		UPDATE gift_list_items i SET qty = i.qty - 1
		FROM products p
		WHERE i.id = $1 AND p.id = i.product_id
		RETURNING i.id, i.gift_list_id, i.product_id, i.qty, i.qty_purchased,
		          COALESCE(i.price, p.price), i.date_added, i.added_by
	`, itemID).Scan(&v.ID, &v.GiftListID, &v.ProductID, &v.Qty, &v.QtyPurchased,
		&v.Price, &v.DateAdded, &v.AddedBy)
	if err != nil {
		return nil, fmt.Errorf("decrement item: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit remove tx: %w", err)
	}
	return &v, nil
}

// ---------------------------------------------------------------------------
// PurchaseStore
// ---------------------------------------------------------------------------

// PurchaseOne runs the one true race behind a conditional update: the
// increment only happens while capacity remains, and the ledger insert joins
// it in the same transaction. Concurrent purchases of the last unit resolve
// to exactly one winner.
func (s *Postgres) PurchaseOne(ctx context.Context, giftListID, itemID, guestID int64, now time.Time) (*models.Purchase, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin purchase tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var p models.Purchase
	err = tx.QueryRowContext(ctx, `
		UPDATE gift_list_items i SET qty_purchased = i.qty_purchased + 1
		FROM products pr
		WHERE i.id = $1 AND i.gift_list_id = $2 AND pr.id = i.product_id
		  AND i.qty_purchased < i.qty
		RETURNING i.id, COALESCE(i.price, pr.price)
	`, itemID, giftListID).Scan(&p.ItemID, &p.Total)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, s.classifyPurchaseFailure(ctx, giftListID, itemID)
		}
		return nil, fmt.Errorf("increment qty_purchased: %w", err)
	}

	p.Qty = 1
	p.GuestID = guestID
	p.DatePaid = now
	err = tx.QueryRowContext(ctx, `
		INSERT INTO purchases (item_id, qty, guest_id, date_paid, total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, p.ItemID, p.Qty, p.GuestID, p.DatePaid, p.Total).Scan(&p.ID)
	if err != nil {
		return nil, fmt.Errorf("insert purchase: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit purchase tx: %w", err)
	}
	return &p, nil
}

// classifyPurchaseFailure distinguishes a missing item from exhausted
// capacity after the conditional update matched nothing.
func (s *Postgres) classifyPurchaseFailure(ctx context.Context, giftListID, itemID int64) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM gift_list_items WHERE id = $1 AND gift_list_id = $2)
	`, itemID, giftListID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("classify purchase failure: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrConflict
}

func (s *Postgres) ListByGuest(ctx context.Context, giftListID, guestID int64) ([]*models.Purchase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pu.id, pu.item_id, pu.qty, pu.guest_id, pu.date_paid, pu.total
		FROM purchases pu
		JOIN gift_list_items i ON i.id = pu.item_id
		WHERE i.gift_list_id = $1 AND pu.guest_id = $2
		ORDER BY pu.id
	`, giftListID, guestID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var out []*models.Purchase
	for rows.Next() {
		var p models.Purchase
		if err := rows.Scan(&p.ID, &p.ItemID, &p.Qty, &p.GuestID, &p.DatePaid, &p.Total); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
