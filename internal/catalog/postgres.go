package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fairyhunter13/pos-checkout-service/internal/model"

	_ "github.com/lib/pq"
)

const productColumns = `id, barcode, name, description, price, quantity, sold, created_at, updated_at`

// Postgres is a Store backed by a products table:
//
//	CREATE TABLE products (
//	    id         uuid PRIMARY KEY,
//	    barcode    text NOT NULL UNIQUE,
//	    name       text NOT NULL,
//	    description text,
//	    price      numeric(12,2) NOT NULL CHECK (price >= 0),
//	    quantity   bigint NOT NULL DEFAULT 0 CHECK (quantity >= 0),
//	    sold       bigint NOT NULL DEFAULT 0,
//	    created_at timestamptz NOT NULL DEFAULT now(),
//	    updated_at timestamptz NOT NULL DEFAULT now(),
//	    deleted    boolean NOT NULL DEFAULT false
//	);
type Postgres struct {
	DB *sql.DB
}

// OpenPostgres connects to the given DSN and verifies the connection.
func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &Postgres{DB: db}, nil
}

// Close releases the underlying connection pool.
func (s *Postgres) Close() error { return s.DB.Close() }

// storageErr folds driver and context failures into the error taxonomy.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (model.Product, error) {
	var p model.Product
	var desc sql.NullString
	err := row.Scan(&p.ID, &p.Barcode, &p.Name, &desc, &p.Price, &p.Quantity, &p.Sold, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Product{}, err
	}
	if desc.Valid {
		p.Description = desc.String
	}
	return p, nil
}

// FindByBarcode resolves a live product outside any transaction.
func (s *Postgres) FindByBarcode(ctx context.Context, barcode string) (model.Product, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE barcode = $1 AND NOT deleted`, barcode)
	p, err := scanProduct(row)
	if err != nil {
		return model.Product{}, storageErr(err)
	}
	return p, nil
}

// Create inserts a product and returns it with its generated id.
func (s *Postgres) Create(ctx context.Context, p model.Product) (model.Product, error) {
	p.ID = uuid.NewString()
	row := s.DB.QueryRowContext(ctx,
		`INSERT INTO products (id, barcode, name, description, price, quantity, sold)
		 VALUES ($1, $2, $3, $4, $5, $6, 0)
		 RETURNING `+productColumns,
		p.ID, p.Barcode, p.Name, sql.NullString{String: p.Description, Valid: p.Description != ""}, p.Price, p.Quantity)
	created, err := scanProduct(row)
	if err != nil {
		return model.Product{}, storageErr(err)
	}
	return created, nil
}

// List returns all live products ordered by barcode.
func (s *Postgres) List(ctx context.Context) ([]model.Product, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE NOT deleted ORDER BY barcode`)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	out := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, storageErr(err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}

// UpdateStock replaces the on-hand quantity of a live product.
func (s *Postgres) UpdateStock(ctx context.Context, barcode string, quantity int64) (model.Product, error) {
	row := s.DB.QueryRowContext(ctx,
		`UPDATE products SET quantity = $2, updated_at = now()
		 WHERE barcode = $1 AND NOT deleted
		 RETURNING `+productColumns, barcode, quantity)
	p, err := scanProduct(row)
	if err != nil {
		return model.Product{}, storageErr(err)
	}
	return p, nil
}

// SoftDelete hides a product from lookups without removing the row.
func (s *Postgres) SoftDelete(ctx context.Context, barcode string) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE products SET deleted = true, updated_at = now() WHERE barcode = $1 AND NOT deleted`, barcode)
	if err != nil {
		return storageErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Begin opens a database transaction.
func (s *Postgres) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr(err)
	}
	return &postgresTx{tx: tx}, nil
}

type postgresTx struct {
	tx *sql.Tx
}

// FindByBarcode re-fetches the product with a row lock, so the quantity
// read here stays valid until the transaction ends.
func (t *postgresTx) FindByBarcode(ctx context.Context, barcode string) (model.Product, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE barcode = $1 AND NOT deleted FOR UPDATE`, barcode)
	p, err := scanProduct(row)
	if err != nil {
		return model.Product{}, storageErr(err)
	}
	return p, nil
}

// DecrementAndSell applies the sale to one product. The quantity guard is
// part of the UPDATE itself, so even without a prior locking read two
// racing transactions cannot decrement past zero.
func (t *postgresTx) DecrementAndSell(ctx context.Context, barcode string, qty int64) (model.Product, error) {
	row := t.tx.QueryRowContext(ctx,
		`UPDATE products SET quantity = quantity - $2, sold = sold + $2, updated_at = now()
		 WHERE barcode = $1 AND NOT deleted AND quantity >= $2
		 RETURNING `+productColumns, barcode, qty)
	p, err := scanProduct(row)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, storageErr(err)
	}
	// Nothing matched: either the product is gone or stock is short.
	cur, lookErr := t.FindByBarcode(ctx, barcode)
	if lookErr != nil {
		return model.Product{}, lookErr
	}
	return model.Product{}, &InsufficientStockError{
		Barcode:   barcode,
		Name:      cur.Name,
		Requested: qty,
		Remaining: cur.Quantity,
	}
}

func (t *postgresTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return storageErr(err)
	}
	return nil
}

func (t *postgresTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return storageErr(err)
	}
	return nil
}
