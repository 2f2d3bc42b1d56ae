// Package localstore is the single-process order store: SQLite in WAL mode,
// publishing every committed write to an in-process feed.
package localstore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

//go:embed schema.sql
var schemaSQL string

type Publisher interface {
	Publish(order *models.Order)
}

type Store struct {
	db  *sql.DB
	hub Publisher
	now func() time.Time

	// serializes read-modify-write; SQLite has a single writer anyway.
	mu sync.Mutex
}

// Open creates or opens the database at path. hub may be nil.
func Open(path string, hub Publisher) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{
		db:  db,
		hub: hub,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// WithClock replaces the timestamp source.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *order
	now := s.now()
	created.CreatedAt = now
	created.UpdatedAt = now

	doc, err := json.Marshal(&created)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (id, uid, status, doc, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, created.ID, created.UID, string(created.Status), string(doc), now.UnixNano(), now.UnixNano())
	if isConstraintViolation(err) {
		return nil, models.ErrOrderExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.publish(&created)
	return &created, nil
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM orders WHERE id = ?`, orderID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return decodeOrder(doc)
}

func (s *Store) UpdateOrder(ctx context.Context, orderID string, fn func(*models.Order) error) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var doc string
	err = tx.QueryRowContext(ctx, `SELECT doc FROM orders WHERE id = ?`, orderID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	order, err := decodeOrder(doc)
	if err != nil {
		return nil, err
	}
	if err := fn(order); err != nil {
		return nil, err
	}
	order.UpdatedAt = s.now()

	updated, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = ?, doc = ?, updated_at = ? WHERE id = ?
	`, string(order.Status), string(updated), order.UpdatedAt.UnixNano(), orderID); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order update: %w", err)
	}

	s.publish(order)
	return order, nil
}

func (s *Store) ListOrdersByStatus(ctx context.Context, status models.OrderStatus, limit int) ([]*models.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc FROM orders
		WHERE status = ?
		ORDER BY created_at ASC, id ASC
		LIMIT ?
	`, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		order, err := decodeOrder(doc)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *Store) publish(order *models.Order) {
	if s.hub == nil {
		return
	}
	snapshot := *order
	s.hub.Publish(&snapshot)
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

func decodeOrder(doc string) (*models.Order, error) {
	var order models.Order
	if err := json.Unmarshal([]byte(doc), &order); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}
	return &order, nil
}
