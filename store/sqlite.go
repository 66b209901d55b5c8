// Package store persists transactions in SQLite (pure Go, no CGo).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/etnz/positions"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
    id          INTEGER PRIMARY KEY,
    created_at  TEXT    NOT NULL,
    user_id     TEXT    NOT NULL,
    instrument  TEXT    NOT NULL,
    action      TEXT    NOT NULL,
    quantity    TEXT    NOT NULL,
    price       TEXT    NOT NULL,
    total_price TEXT    NOT NULL,
    currency    TEXT    NOT NULL DEFAULT '',
    memo        TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_tx_user ON transactions(user_id, instrument);
`

// SQLite is a transaction store. Amounts are stored as decimal text so they
// read back exactly.
type SQLite struct {
	db *sql.DB
}

// Open opens (or creates) the database at dsn and applies the schema.
func Open(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store.Open: open %q: %w", dsn, err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store.Open: apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

// Save validates and inserts transactions in a single database transaction.
// An ID already stored is an error and nothing is saved.
func (s *SQLite) Save(ctx context.Context, txs ...positions.Transaction) error {
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("store.Save: %w", err)
		}
	}

	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store.Save: begin tx: %w", err)
	}
	defer dbtx.Rollback()

	stmt, err := dbtx.PrepareContext(ctx, `
		INSERT INTO transactions
			(id, created_at, user_id, instrument, action, quantity, price, total_price, currency, memo)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("store.Save: prepare: %w", err)
	}
	defer stmt.Close()

	for _, tx := range txs {
		if _, err := stmt.ExecContext(ctx,
			int64(tx.ID),
			tx.CreatedAt.UTC().Format(time.RFC3339Nano),
			tx.User,
			tx.Instrument,
			string(tx.Action),
			tx.Quantity.String(),
			tx.Price.Decimal().String(),
			tx.TotalPrice.Decimal().String(),
			tx.Currency(),
			tx.Memo,
		); err != nil {
			return fmt.Errorf("store.Save: insert %d: %w", tx.ID, err)
		}
	}

	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("store.Save: commit: %w", err)
	}
	return nil
}

// Ledger loads every stored transaction into a ledger.
func (s *SQLite) Ledger(ctx context.Context) (*positions.Ledger, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, user_id, instrument, action, quantity, price, total_price, currency, memo
		FROM transactions
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("store.Ledger: query: %w", err)
	}
	defer rows.Close()

	var txs []positions.Transaction
	for rows.Next() {
		var (
			id                                  int64
			createdAt, action                   string
			quantity, price, totalPrice, curStr string
			tx                                  positions.Transaction
		)
		if err := rows.Scan(&id, &createdAt, &tx.User, &tx.Instrument, &action,
			&quantity, &price, &totalPrice, &curStr, &tx.Memo); err != nil {
			return nil, fmt.Errorf("store.Ledger: scan row: %w", err)
		}
		tx.ID = positions.ID(id)
		if tx.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("store.Ledger: transaction %d: %w", id, err)
		}
		if tx.Action, err = positions.ParseAction(action); err != nil {
			return nil, fmt.Errorf("store.Ledger: transaction %d: %w", id, err)
		}
		if tx.Quantity, err = positions.ParseQuantity(quantity); err != nil {
			return nil, fmt.Errorf("store.Ledger: transaction %d: %w", id, err)
		}
		p, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("store.Ledger: transaction %d: price: %w", id, err)
		}
		tp, err := decimal.NewFromString(totalPrice)
		if err != nil {
			return nil, fmt.Errorf("store.Ledger: transaction %d: total price: %w", id, err)
		}
		tx.Price = positions.M(p, curStr)
		tx.TotalPrice = positions.M(tp, curStr)
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store.Ledger: rows: %w", err)
	}

	ledger := positions.NewLedger()
	if err := ledger.Append(txs...); err != nil {
		return nil, fmt.Errorf("store.Ledger: %w", err)
	}
	return ledger, nil
}
