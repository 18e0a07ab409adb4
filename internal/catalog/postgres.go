package catalog

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

// Schema creates the products table.
const Schema = `
CREATE TABLE IF NOT EXISTS products (
	id           BIGSERIAL PRIMARY KEY,
	name         TEXT NOT NULL,
	price        BIGINT NOT NULL CHECK (price > 0),
	images       JSONB NOT NULL,
	category     TEXT NOT NULL,
	brand_name   TEXT NOT NULL,
	brand_custom BOOLEAN NOT NULL DEFAULT FALSE,
	description  TEXT NOT NULL DEFAULT '',
	sizes        JSONB NOT NULL DEFAULT '[]',
	status       TEXT NOT NULL,
	sales        INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
)`

const productColumns = `id, name, price, images, category, brand_name, brand_custom, description, sizes, status, sales, created_at, updated_at`

// PGRepository stores products in PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a PostgreSQL backed repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// EnsureSchema creates the products table when missing.
func (r *PGRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, Schema)
	return err
}

func (r *PGRepository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, fmt.Errorf("catalog: product %d: %w", id, httpx.ErrNotFound)
	}
	return p, err
}

func (r *PGRepository) Create(ctx context.Context, product Product) (Product, error) {
	images, sizes, err := encodeJSONColumns(product)
	if err != nil {
		return Product{}, err
	}
	const query = `INSERT INTO products (name, price, images, category, brand_name, brand_custom, description, sizes, status, sales, created_at, updated_at)
VALUES ($1, $2, $3::jsonb, $4, $5, $6, $7, $8::jsonb, $9, $10, $11, $12) RETURNING id`
	err = r.pool.QueryRow(ctx, query,
		product.Name, product.Price, images, string(product.Category), product.Brand.Name(), product.Brand.IsCustom(),
		product.Description, sizes, string(product.Status), product.Sales, product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID)
	if err != nil {
		return Product{}, err
	}
	return product, nil
}

func (r *PGRepository) Update(ctx context.Context, product Product) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return updateProduct(ctx, tx, product)
	})
}

// Modify locks the product row for the duration of fn.
func (r *PGRepository) Modify(ctx context.Context, id int64, fn func(*Product) error) (Product, error) {
	var product Product
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		p, err := scanProduct(tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("catalog: product %d: %w", id, httpx.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if err := fn(&p); err != nil {
			return err
		}
		if err := updateProduct(ctx, tx, p); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	return product, nil
}

func updateProduct(ctx context.Context, tx pgx.Tx, product Product) error {
	images, sizes, err := encodeJSONColumns(product)
	if err != nil {
		return err
	}
	const query = `UPDATE products SET name = $1, price = $2, images = $3::jsonb, category = $4, brand_name = $5, brand_custom = $6,
description = $7, sizes = $8::jsonb, status = $9, sales = $10, updated_at = $11 WHERE id = $12`
	tag, err := tx.Exec(ctx, query,
		product.Name, product.Price, images, string(product.Category), product.Brand.Name(), product.Brand.IsCustom(),
		product.Description, sizes, string(product.Status), product.Sales, product.UpdatedAt, product.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("catalog: product %d: %w", product.ID, httpx.ErrNotFound)
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("catalog: product %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func encodeJSONColumns(p Product) (string, string, error) {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return "", "", err
	}
	sizes := p.Sizes
	if sizes == nil {
		sizes = []SizeStock{}
	}
	encodedSizes, err := json.Marshal(sizes)
	if err != nil {
		return "", "", err
	}
	return string(images), string(encodedSizes), nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p           Product
		images      []byte
		sizes       []byte
		category    string
		brandName   string
		brandCustom bool
		status      string
		createdAt   time.Time
		updatedAt   time.Time
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &images, &category, &brandName, &brandCustom, &p.Description, &sizes, &status, &p.Sales, &createdAt, &updatedAt); err != nil {
		return Product{}, err
	}
	if err := json.Unmarshal(images, &p.Images); err != nil {
		return Product{}, fmt.Errorf("catalog: decode images: %w", err)
	}
	if err := json.Unmarshal(sizes, &p.Sizes); err != nil {
		return Product{}, fmt.Errorf("catalog: decode sizes: %w", err)
	}
	var err error
	if brandCustom {
		p.Brand, err = CustomBrand(brandName)
	} else {
		p.Brand, err = KnownBrand(brandName)
	}
	if err != nil {
		return Product{}, err
	}
	p.Category = Category(category)
	p.Status = Status(status)
	p.CreatedAt = createdAt
	p.UpdatedAt = updatedAt
	return p, nil
}

var _ Repository = (*PGRepository)(nil)
