package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

// DatabaseClient keeps each order as a JSONB document next to the columns
// the worker queue filters on.
type DatabaseClient struct {
	db  *sql.DB
	now func() time.Time
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewDatabaseClientFromDB(db), nil
}

func NewDatabaseClientFromDB(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the timestamp source.
func (d *DatabaseClient) WithClock(now func() time.Time) *DatabaseClient {
	d.now = now
	return d
}

func (d *DatabaseClient) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	created := *order
	now := d.now()
	created.CreatedAt = now
	created.UpdatedAt = now

	doc, err := json.Marshal(&created)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}

	res, err := d.db.ExecContext(ctx, `
		INSERT INTO orders (id, uid, status, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, created.ID, created.UID, string(created.Status), doc, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if n == 0 {
		return nil, models.ErrOrderExists
	}

	return &created, nil
}

func (d *DatabaseClient) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var doc []byte
	err := d.db.QueryRowContext(ctx, `
		SELECT doc FROM orders WHERE id = $1
	`, orderID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return decodeOrder(doc)
}

// UpdateOrder runs fn on the current document under a row lock and stores
// the result. An error from fn aborts the update and is returned as is.
func (d *DatabaseClient) UpdateOrder(ctx context.Context, orderID string, fn func(*models.Order) error) (*models.Order, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var doc []byte
	err = tx.QueryRowContext(ctx, `
		SELECT doc FROM orders WHERE id = $1 FOR UPDATE
	`, orderID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	order, err := decodeOrder(doc)
	if err != nil {
		return nil, err
	}
	if err := fn(order); err != nil {
		return nil, err
	}
	order.UpdatedAt = d.now()

	updated, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, doc = $2, updated_at = $3
		WHERE id = $4
	`, string(order.Status), updated, order.UpdatedAt, orderID); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order update: %w", err)
	}
	return order, nil
}

// ListOrdersByStatus returns the oldest orders first.
func (d *DatabaseClient) ListOrdersByStatus(ctx context.Context, status models.OrderStatus, limit int) ([]*models.Order, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT doc FROM orders
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		var doc []byte
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

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

func decodeOrder(doc []byte) (*models.Order, error) {
	var order models.Order
	if err := json.Unmarshal(doc, &order); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}
	return &order, nil
}
