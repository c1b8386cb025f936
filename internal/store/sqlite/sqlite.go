// Package sqlite persists storefront records in a single SQLite file using
// the pure-Go modernc driver. It mirrors the postgres layout with JSON text
// columns.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/store"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/xid"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. ":memory:" is accepted for
// tests; the pool is pinned to one connection so every query sees the same
// database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS storefront_records (
		key        TEXT PRIMARY KEY,
		payload    JSON NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS storefront_orders (
		id        TEXT PRIMARY KEY,
		placed_at TEXT NOT NULL,
		payload   JSON NOT NULL
	);`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *Store) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := s.loadRecord(ctx, store.KeyProducts, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) SaveProducts(ctx context.Context, products []domain.Product) error {
	return s.saveRecord(ctx, store.KeyProducts, products)
}

func (s *Store) LoadSettings(ctx context.Context) (*domain.Settings, error) {
	var settings domain.Settings
	if err := s.loadRecord(ctx, store.KeySettings, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings domain.Settings) error {
	return s.saveRecord(ctx, store.KeySettings, settings)
}

func (s *Store) loadRecord(ctx context.Context, key string, dest any) error {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM storefront_records WHERE key = ?`, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}
	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return fmt.Errorf("decode %s record: %w", key, err)
	}
	return nil
}

func (s *Store) saveRecord(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO storefront_records (key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, key, string(payload), time.Now().UTC().Format(timeLayout))
	return err
}

func (s *Store) CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	if len(order.Lines) == 0 {
		return nil, store.ErrEmptyCart
	}
	if strings.TrimSpace(order.ID) == "" {
		order.ID = xid.New("ord")
	}
	if order.PlacedAt.IsZero() {
		order.PlacedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO storefront_orders (id, placed_at, payload)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`, order.ID, order.PlacedAt.UTC().Format(timeLayout), string(payload))
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrInvalidInput
	}
	created := order
	return &created, nil
}

func (s *Store) ListOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM storefront_orders
		ORDER BY placed_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orders := make([]domain.Order, 0, 32)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var order domain.Order
		if err := json.Unmarshal([]byte(payload), &order); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM storefront_orders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
