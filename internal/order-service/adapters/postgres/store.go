// Package postgres persists orders in the storefront's Postgres database.
// Headers live in orders and lines in orders_items; the two inserts are
// separate statements, which is why admission compensates by hand.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jcmexdev/mealprep-builder/internal/order-service/domain"
)

// Ensure Store implements the port at compile time.
var _ domain.Store = (*Store)(nil)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the order tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS orders (
			id                      UUID PRIMARY KEY,
			user_id                 TEXT,
			customer_email          TEXT NOT NULL,
			customer_phone          TEXT,
			delivery_instructions   TEXT,
			delivery_date           TEXT,
			delivery_time_slot      TEXT,
			payment_intent_id       TEXT,
			payment_method_id       TEXT,
			stripe_customer_id      TEXT,
			currency                TEXT NOT NULL DEFAULT 'USD',
			subtotal                NUMERIC(10,2) NOT NULL DEFAULT 0,
			tax                     NUMERIC(10,2) NOT NULL DEFAULT 0,
			delivery_fee            NUMERIC(10,2) NOT NULL DEFAULT 0,
			tip                     NUMERIC(10,2) NOT NULL DEFAULT 0,
			amount                  NUMERIC(10,2) NOT NULL DEFAULT 0,
			status                  TEXT NOT NULL DEFAULT 'pending',
			payment_status          TEXT NOT NULL DEFAULT 'pending',
			shipping_address        JSONB,
			billing_address         JSONB,
			delivery_distance_miles DOUBLE PRECISION,
			created_at              TIMESTAMPTZ NOT NULL,
			updated_at              TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS orders_items (
			id                   UUID PRIMARY KEY,
			_parent_id           UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			_order               INTEGER NOT NULL,
			product_id           TEXT,
			meal_plan_id         TEXT,
			variant_id           TEXT,
			quantity             INTEGER NOT NULL CHECK (quantity >= 1),
			unit_price           NUMERIC(10,2) NOT NULL CHECK (unit_price >= 0),
			total_price          NUMERIC(10,2) NOT NULL CHECK (total_price >= 0),
			special_instructions TEXT,
			builder_selection    JSONB
		);

		CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_orders_items_parent ON orders_items(_parent_id, _order);
	`)
	if err != nil {
		return fmt.Errorf("postgres: ensure order schema: %w", err)
	}
	return nil
}

func (s *Store) InsertOrder(ctx context.Context, o *domain.Order) error {
	shipping, err := marshalNullable(o.ShippingAddress)
	if err != nil {
		return err
	}
	billing, err := marshalNullable(o.BillingAddress)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO orders (
			id, user_id, customer_email, customer_phone, delivery_instructions,
			delivery_date, delivery_time_slot, payment_intent_id, payment_method_id,
			stripe_customer_id, currency, subtotal, tax, delivery_fee, tip, amount,
			status, payment_status, shipping_address, billing_address,
			delivery_distance_miles, created_at, updated_at
		) VALUES (
			$1, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''),
			NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''),
			NULLIF($10, ''), $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20,
			$21, $22, $23
		)`,
		o.ID, o.CustomerID, o.CustomerEmail, o.CustomerPhone, o.DeliveryInstructions,
		o.DeliveryDate, o.DeliveryTimeSlot, o.PaymentIntentID, o.PaymentMethodID,
		o.PaymentCustomerID, o.Currency, o.Subtotal, o.Tax, o.DeliveryFee, o.Tip, o.Total,
		string(o.Status), string(o.PaymentStatus), shipping, billing,
		o.DeliveryDistanceMiles, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert order %s: %w", o.ID, err)
	}
	return nil
}

func (s *Store) InsertItems(ctx context.Context, orderID string, items []domain.OrderItem) error {
	batch := &pgx.Batch{}
	for _, it := range items {
		builder, err := marshalNullable(it.Builder)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO orders_items (
				id, _parent_id, _order, product_id, meal_plan_id, variant_id,
				quantity, unit_price, total_price, special_instructions, builder_selection
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11)`,
			it.ID, orderID, it.Position, it.ProductID, it.MealPlanID, it.VariantID,
			it.Quantity, it.UnitPrice, it.TotalPrice, it.SpecialInstructions, builder,
		)
	}

	if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("postgres: insert items for order %s: %w", orderID, err)
	}
	return nil
}

func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete order %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const orderColumns = `
	id::text, COALESCE(user_id, ''), customer_email, COALESCE(customer_phone, ''),
	COALESCE(delivery_instructions, ''), COALESCE(delivery_date, ''), COALESCE(delivery_time_slot, ''),
	COALESCE(payment_intent_id, ''), COALESCE(payment_method_id, ''), COALESCE(stripe_customer_id, ''),
	currency, subtotal::float8, tax::float8, delivery_fee::float8, tip::float8, amount::float8,
	status, payment_status, shipping_address, billing_address, delivery_distance_miles,
	created_at, updated_at`

func (s *Store) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	o, err := scanOrder(s.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id::text = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: get order %s: %w", id, err)
	}

	if o.Items, err = s.items(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Store) ListOrders(ctx context.Context, customerID string) ([]domain.Order, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list orders: %w", err)
	}

	for i := range orders {
		if orders[i].Items, err = s.items(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *Store) UpdateOrder(ctx context.Context, id string, u domain.Update, at time.Time) (*domain.Order, error) {
	var status, paymentStatus *string
	if u.Status != nil {
		v := string(*u.Status)
		status = &v
	}
	if u.PaymentStatus != nil {
		v := string(*u.PaymentStatus)
		paymentStatus = &v
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE orders
		SET status            = COALESCE($2, status),
		    payment_status    = COALESCE($3, payment_status),
		    payment_intent_id = COALESCE($4, payment_intent_id),
		    updated_at        = $5
		WHERE id::text = $1`,
		id, status, paymentStatus, u.PaymentIntentID, at,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: update order %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return s.GetOrder(ctx, id)
}

func (s *Store) items(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id::text, _order, product_id, meal_plan_id, variant_id, quantity,
		       unit_price::float8, total_price::float8, COALESCE(special_instructions, ''),
		       builder_selection
		FROM orders_items
		WHERE _parent_id::text = $1
		ORDER BY _order`, orderID)
	if err != nil {
		return nil, fmt.Errorf("postgres: items for order %s: %w", orderID, err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var it domain.OrderItem
		var builder []byte
		if err := rows.Scan(
			&it.ID, &it.Position, &it.ProductID, &it.MealPlanID, &it.VariantID, &it.Quantity,
			&it.UnitPrice, &it.TotalPrice, &it.SpecialInstructions, &builder,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan item: %w", err)
		}
		if builder != nil {
			it.Builder = &domain.BuilderSelection{}
			if err := json.Unmarshal(builder, it.Builder); err != nil {
				return nil, fmt.Errorf("postgres: decode builder selection: %w", err)
			}
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: items for order %s: %w", orderID, err)
	}
	return items, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var status, paymentStatus string
	var shipping, billing []byte
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.CustomerEmail, &o.CustomerPhone,
		&o.DeliveryInstructions, &o.DeliveryDate, &o.DeliveryTimeSlot,
		&o.PaymentIntentID, &o.PaymentMethodID, &o.PaymentCustomerID,
		&o.Currency, &o.Subtotal, &o.Tax, &o.DeliveryFee, &o.Tip, &o.Total,
		&status, &paymentStatus, &shipping, &billing, &o.DeliveryDistanceMiles,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = domain.Status(status)
	o.PaymentStatus = domain.PaymentStatus(paymentStatus)

	if o.ShippingAddress, err = unmarshalAddress(shipping); err != nil {
		return nil, err
	}
	if o.BillingAddress, err = unmarshalAddress(billing); err != nil {
		return nil, err
	}
	return &o, nil
}

func unmarshalAddress(raw []byte) (*domain.AddressSnapshot, error) {
	if raw == nil {
		return nil, nil
	}
	var a domain.AddressSnapshot
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("postgres: decode address snapshot: %w", err)
	}
	return &a, nil
}

// marshalNullable encodes v for a JSONB column, NULL when v is nil.
func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode json column: %w", err)
	}
	return b, nil
}
