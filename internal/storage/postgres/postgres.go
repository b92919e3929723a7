package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	merchantsvc "github.com/mkanatbekov/epay-gateway/internal/merchant"
	ordersvc "github.com/mkanatbekov/epay-gateway/internal/order"
	"github.com/mkanatbekov/epay-gateway/internal/types/merchant"
	"github.com/mkanatbekov/epay-gateway/internal/types/order"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const uniqueViolation = "23505"

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &PostgresStorage{db: db}

	if err := s.db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStorage) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS merchants (
            id SERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            external_id TEXT,
            merchant_id BIGINT NOT NULL REFERENCES merchants(id),
            status TEXT NOT NULL,
            currency TEXT NOT NULL,
            amount NUMERIC(18,2) NOT NULL,
            consumer_email TEXT NOT NULL,
            consumer_name TEXT NOT NULL,
            consumer_language TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            last_request_b64 TEXT,
            last_request_at TIMESTAMPTZ,
            last_cart_b64 TEXT,
            last_cart_at TIMESTAMPTZ,
            last_response_b64 TEXT,
            last_response_at TIMESTAMPTZ,
            paid_at TIMESTAMPTZ,
            payment_reference TEXT
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            id SERIAL PRIMARY KEY,
            order_id TEXT NOT NULL REFERENCES orders(id),
            name TEXT NOT NULL,
            cost NUMERIC(18,2) NOT NULL,
            quantity INT NOT NULL
        )`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func (s *PostgresStorage) CreateMerchant(ctx context.Context, m *merchant.Merchant) error {
	q := `INSERT INTO merchants (login, password_hash, created_at) VALUES ($1,$2,$3) RETURNING id`
	err := s.db.QueryRowContext(ctx, q, m.Login, m.PasswordHash, m.CreatedAt).Scan(&m.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return merchantsvc.ErrMerchantExists
	}
	return err
}

func (s *PostgresStorage) FindMerchantByLogin(ctx context.Context, login string) (*merchant.Merchant, error) {
	m := &merchant.Merchant{}
	q := `SELECT id, login, password_hash, created_at FROM merchants WHERE login=$1`
	if err := s.db.QueryRowContext(ctx, q, login).
		Scan(&m.ID, &m.Login, &m.PasswordHash, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, merchantsvc.ErrMerchantNotFound
		}
		return nil, err
	}
	return m, nil
}

// SaveOrder upserts the order and its items in one transaction and returns
// the canonical persisted copy.
func (s *PostgresStorage) SaveOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const q = `
        INSERT INTO orders (
            id, external_id, merchant_id, status, currency, amount,
            consumer_email, consumer_name, consumer_language, created_at,
            last_request_b64, last_request_at,
            last_cart_b64, last_cart_at,
            last_response_b64, last_response_at,
            paid_at, payment_reference
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
        ON CONFLICT (id) DO UPDATE SET
            status = EXCLUDED.status,
            last_request_b64 = EXCLUDED.last_request_b64,
            last_request_at = EXCLUDED.last_request_at,
            last_cart_b64 = EXCLUDED.last_cart_b64,
            last_cart_at = EXCLUDED.last_cart_at,
            last_response_b64 = EXCLUDED.last_response_b64,
            last_response_at = EXCLUDED.last_response_at,
            paid_at = EXCLUDED.paid_at,
            payment_reference = EXCLUDED.payment_reference`

	var reqB64, cartB64, respB64 sql.NullString
	var reqAt, cartAt, respAt sql.NullTime
	if o.LastRequest != nil {
		reqB64 = sql.NullString{String: o.LastRequest.ContentB64, Valid: true}
		reqAt = sql.NullTime{Time: o.LastRequest.CreatedAt, Valid: true}
	}
	if o.LastCart != nil {
		cartB64 = sql.NullString{String: o.LastCart.ContentB64, Valid: true}
		cartAt = sql.NullTime{Time: o.LastCart.CreatedAt, Valid: true}
	}
	if o.LastResponse != nil {
		respB64 = sql.NullString{String: o.LastResponse.ContentB64, Valid: true}
		respAt = sql.NullTime{Time: o.LastResponse.CreatedAt, Valid: true}
	}
	var externalID sql.NullString
	if o.ExternalID != "" {
		externalID = sql.NullString{String: o.ExternalID, Valid: true}
	}
	var paidAt sql.NullTime
	if o.PaidAt != nil {
		paidAt = sql.NullTime{Time: *o.PaidAt, Valid: true}
	}
	var reference sql.NullString
	if o.PaymentReference != "" {
		reference = sql.NullString{String: o.PaymentReference, Valid: true}
	}

	if _, err := tx.ExecContext(ctx, q,
		o.ID, externalID, o.MerchantID, o.Status, o.Currency, o.Amount,
		o.ConsumerEmail, o.ConsumerName, o.ConsumerLanguage, o.CreatedAt,
		reqB64, reqAt, cartB64, cartAt, respB64, respAt,
		paidAt, reference,
	); err != nil {
		return nil, fmt.Errorf("upsert order: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id=$1`, o.ID); err != nil {
		return nil, fmt.Errorf("delete items: %w", err)
	}
	for _, it := range o.Items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, name, cost, quantity) VALUES ($1,$2,$3,$4)`,
			o.ID, it.Name, it.Cost, it.Quantity,
		); err != nil {
			return nil, fmt.Errorf("insert item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.FindOrderByID(ctx, o.ID)
}

func (s *PostgresStorage) FindOrderByID(ctx context.Context, id string) (*order.Order, error) {
	const q = `
        SELECT id, external_id, merchant_id, status, currency, amount,
               consumer_email, consumer_name, consumer_language, created_at,
               last_request_b64, last_request_at,
               last_cart_b64, last_cart_at,
               last_response_b64, last_response_at,
               paid_at, payment_reference
        FROM orders WHERE id = $1`

	var o order.Order
	var externalID, reqB64, cartB64, respB64, reference sql.NullString
	var reqAt, cartAt, respAt, paidAt sql.NullTime

	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&o.ID, &externalID, &o.MerchantID, &o.Status, &o.Currency, &o.Amount,
		&o.ConsumerEmail, &o.ConsumerName, &o.ConsumerLanguage, &o.CreatedAt,
		&reqB64, &reqAt, &cartB64, &cartAt, &respB64, &respAt,
		&paidAt, &reference,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ordersvc.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	o.ExternalID = externalID.String
	if reqB64.Valid {
		o.LastRequest = &order.Document{ContentB64: reqB64.String, CreatedAt: reqAt.Time}
	}
	if cartB64.Valid {
		o.LastCart = &order.Document{ContentB64: cartB64.String, CreatedAt: cartAt.Time}
	}
	if respB64.Valid {
		o.LastResponse = &order.Document{ContentB64: respB64.String, CreatedAt: respAt.Time}
	}
	if paidAt.Valid {
		t := paidAt.Time
		o.PaidAt = &t
	}
	o.PaymentReference = reference.String

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, cost, quantity FROM order_items WHERE order_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it order.OrderItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Cost, &it.Quantity); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

func (s *PostgresStorage) GetPaymentStats(ctx context.Context, merchantID int64) (decimal.Decimal, int64, int64, error) {
	var paidTotal decimal.Decimal
	var paidCount, pendingCount int64

	const qPaid = `
        SELECT COALESCE(SUM(amount),0), COUNT(*)
        FROM orders
        WHERE merchant_id=$1 AND status IN ('COMPLETED','AUTHORIZATION_PASS','ENROLLED')`
	if err := s.db.QueryRowContext(ctx, qPaid, merchantID).Scan(&paidTotal, &paidCount); err != nil {
		return decimal.Zero, 0, 0, err
	}

	const qPending = `
        SELECT COUNT(*) FROM orders WHERE merchant_id=$1 AND status='NEW'`
	if err := s.db.QueryRowContext(ctx, qPending, merchantID).Scan(&pendingCount); err != nil {
		return decimal.Zero, 0, 0, err
	}
	return paidTotal, paidCount, pendingCount, nil
}
