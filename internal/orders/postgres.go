package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sneakerstore/sneakerstore/internal/platform/db"
	"github.com/sneakerstore/sneakerstore/internal/platform/httpx"
)

// Schema creates the order number sequence and the orders table.
var Schema = []string{
	`CREATE SEQUENCE IF NOT EXISTS order_number_seq START 1`,
	`CREATE TABLE IF NOT EXISTS orders (
	id               TEXT PRIMARY KEY,
	customer_id      BIGINT,
	customer_name    TEXT NOT NULL,
	customer_email   TEXT NOT NULL DEFAULT '',
	customer_phone   TEXT NOT NULL DEFAULT '',
	items            JSONB NOT NULL,
	total            BIGINT NOT NULL,
	status           TEXT NOT NULL,
	ordered_at       TIMESTAMPTZ NOT NULL,
	shipping_address TEXT NOT NULL DEFAULT '',
	payment_method   TEXT NOT NULL DEFAULT '',
	notes            TEXT NOT NULL DEFAULT '',
	updated_at       TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS orders_ordered_at_idx ON orders (ordered_at DESC)`,
}

const orderColumns = `id, customer_id, customer_name, customer_email, customer_phone, items, total, status, ordered_at, shipping_address, payment_method, notes, updated_at`

// PGRepository stores orders in PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// EnsureSchema creates the sequence and table when missing.
func (r *PGRepository) EnsureSchema(ctx context.Context) error {
	return db.EnsureSchema(ctx, r.pool, Schema...)
}

func (r *PGRepository) List(ctx context.Context) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY ordered_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, fmt.Errorf("orders: order %s: %w", id, httpx.ErrNotFound)
	}
	return o, err
}

// Create draws the next code from order_number_seq and inserts the order in
// the same transaction.
func (r *PGRepository) Create(ctx context.Context, order Order) (Order, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return Order{}, err
	}
	err = db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var seq int64
		if err := tx.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&seq); err != nil {
			return err
		}
		order.ID = FormatID(seq)
		return r.insert(ctx, tx, order, items)
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Order{}, fmt.Errorf("orders: order %s: %w", order.ID, httpx.ErrDuplicate)
		}
		return Order{}, err
	}
	return order, nil
}

// Import stores an order under its existing code, used by the seed script.
func (r *PGRepository) Import(ctx context.Context, order Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := r.insert(ctx, tx, order, items); err != nil {
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("orders: order %s: %w", order.ID, httpx.ErrDuplicate)
			}
			return err
		}
		if seq, ok := ParseID(order.ID); ok {
			_, err := tx.Exec(ctx, `SELECT setval('order_number_seq', GREATEST($1, (SELECT last_value FROM order_number_seq)))`, seq)
			return err
		}
		return nil
	})
}

func (r *PGRepository) insert(ctx context.Context, tx pgx.Tx, o Order, items []byte) error {
	var customerID *int64
	if o.Customer.ID > 0 {
		customerID = &o.Customer.ID
	}
	const query = `INSERT INTO orders (` + orderColumns + `)
VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10, $11, $12, $13)`
	_, err := tx.Exec(ctx, query,
		o.ID, customerID, o.Customer.Name, o.Customer.Email, o.Customer.Phone, string(items), o.Total,
		string(o.Status), o.Date, o.ShippingAddress, o.PaymentMethod, o.Notes, o.UpdatedAt,
	)
	return err
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id string, status Status, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`, string(status), at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("orders: order %s: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func (r *PGRepository) AttachCustomer(ctx context.Context, id string, customerID int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET customer_id = $1 WHERE id = $2`, customerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("orders: order %s: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o          Order
		customerID *int64
		items      []byte
		status     string
	)
	if err := row.Scan(&o.ID, &customerID, &o.Customer.Name, &o.Customer.Email, &o.Customer.Phone, &items, &o.Total,
		&status, &o.Date, &o.ShippingAddress, &o.PaymentMethod, &o.Notes, &o.UpdatedAt); err != nil {
		return Order{}, err
	}
	if customerID != nil {
		o.Customer.ID = *customerID
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return Order{}, fmt.Errorf("orders: decode items: %w", err)
	}
	o.Status = Status(status)
	return o, nil
}

var _ Repository = (*PGRepository)(nil)
