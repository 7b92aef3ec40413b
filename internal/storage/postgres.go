package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// uniqueViolation is the Postgres SQLSTATE for unique-constraint errors.
const uniqueViolation = "23505"

// PostgresStore is a Store backed by Postgres via the pgx stdlib driver.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to Postgres, verifies the connection and creates the
// schema if needed.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS email_templates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			subject TEXT NOT NULL,
			html_body TEXT NOT NULL,
			schema_json JSONB,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS discounts (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			percent_off INTEGER NOT NULL DEFAULT 0,
			amount_off_cents BIGINT NOT NULL DEFAULT 0,
			provider_coupon_id TEXT,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			expires_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS subscriptions (
			id TEXT PRIMARY KEY,
			provider_subscription_id TEXT NOT NULL UNIQUE,
			customer_email TEXT NOT NULL,
			price_id TEXT NOT NULL,
			status TEXT NOT NULL,
			current_period_end TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_email ON subscriptions (customer_email)`,
		`CREATE TABLE IF NOT EXISTS purchases (
			id TEXT PRIMARY KEY,
			provider_session_id TEXT NOT NULL UNIQUE,
			customer_email TEXT NOT NULL,
			amount_cents BIGINT NOT NULL,
			line_items_json JSONB,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_email ON purchases (customer_email)`,
		`CREATE TABLE IF NOT EXISTS referrals (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			referrer_email TEXT NOT NULL,
			referee_email TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			referrer_coupon_id TEXT,
			referee_coupon_id TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_referrals_referee ON referrals (referee_email, status)`,
		`CREATE TABLE IF NOT EXISTS wholesale_inquiries (
			id TEXT PRIMARY KEY,
			company TEXT NOT NULL,
			contact_name TEXT NOT NULL,
			email TEXT NOT NULL,
			cases_per_month INTEGER NOT NULL DEFAULT 0,
			message TEXT,
			status TEXT NOT NULL DEFAULT 'new',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			slug TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			price_cents BIGINT NOT NULL,
			provider_price_id TEXT,
			subscription BOOLEAN NOT NULL DEFAULT FALSE,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// duplicate maps unique-constraint violations onto ErrDuplicate so callers
// can branch on the sentinel regardless of the store implementation.
func duplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

// Templates

func (s *PostgresStore) CreateTemplate(ctx context.Context, t *EmailTemplate) error {
	schemaJSON, err := marshalSchema(t.Schema)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO email_templates (id, name, subject, html_body, schema_json, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.ID, t.Name, t.Subject, t.HTMLBody, schemaJSON, t.CreatedAt, t.UpdatedAt)
	return duplicate(err)
}

func (s *PostgresStore) GetTemplate(ctx context.Context, id string) (*EmailTemplate, error) {
	return s.scanTemplate(s.db.QueryRowContext(ctx,
		`SELECT id, name, subject, html_body, schema_json, created_at, updated_at
		 FROM email_templates WHERE id=$1`, id))
}

func (s *PostgresStore) GetTemplateByName(ctx context.Context, name string) (*EmailTemplate, error) {
	return s.scanTemplate(s.db.QueryRowContext(ctx,
		`SELECT id, name, subject, html_body, schema_json, created_at, updated_at
		 FROM email_templates WHERE name=$1`, name))
}

func (s *PostgresStore) scanTemplate(row *sql.Row) (*EmailTemplate, error) {
	var t EmailTemplate
	var schemaJSON sql.NullString
	err := row.Scan(&t.ID, &t.Name, &t.Subject, &t.HTMLBody, &schemaJSON, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if schemaJSON.Valid && schemaJSON.String != "" {
		if err := json.Unmarshal([]byte(schemaJSON.String), &t.Schema); err != nil {
			return nil, fmt.Errorf("decode template schema: %w", err)
		}
	}
	return &t, nil
}

func (s *PostgresStore) ListTemplates(ctx context.Context) ([]*EmailTemplate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, subject, html_body, schema_json, created_at, updated_at
		 FROM email_templates ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*EmailTemplate
	for rows.Next() {
		var t EmailTemplate
		var schemaJSON sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &t.Subject, &t.HTMLBody, &schemaJSON, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if schemaJSON.Valid && schemaJSON.String != "" {
			if err := json.Unmarshal([]byte(schemaJSON.String), &t.Schema); err != nil {
				return nil, fmt.Errorf("decode template schema: %w", err)
			}
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateTemplate(ctx context.Context, t *EmailTemplate) error {
	schemaJSON, err := marshalSchema(t.Schema)
	if err != nil {
		return err
	}
	t.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE email_templates SET name=$2, subject=$3, html_body=$4, schema_json=$5, updated_at=$6 WHERE id=$1`,
		t.ID, t.Name, t.Subject, t.HTMLBody, schemaJSON, t.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PostgresStore) DeleteTemplate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM email_templates WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func marshalSchema(schema map[string]any) (sql.NullString, error) {
	if schema == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(schema)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode template schema: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Discounts

func (s *PostgresStore) CreateDiscount(ctx context.Context, d *Discount) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO discounts (id, code, percent_off, amount_off_cents, provider_coupon_id, active, expires_at, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		d.ID, d.Code, d.PercentOff, d.AmountOffCents, nullString(d.ProviderCouponID), d.Active, d.ExpiresAt, d.CreatedAt, d.UpdatedAt)
	return duplicate(err)
}

func (s *PostgresStore) GetDiscount(ctx context.Context, id string) (*Discount, error) {
	return scanDiscount(s.db.QueryRowContext(ctx, discountSelect+` WHERE id=$1`, id))
}

func (s *PostgresStore) GetDiscountByCode(ctx context.Context, code string) (*Discount, error) {
	return scanDiscount(s.db.QueryRowContext(ctx, discountSelect+` WHERE lower(code)=lower($1)`, code))
}

const discountSelect = `SELECT id, code, percent_off, amount_off_cents, provider_coupon_id, active, expires_at, created_at, updated_at FROM discounts`

func scanDiscount(row *sql.Row) (*Discount, error) {
	var d Discount
	var couponID sql.NullString
	var expires sql.NullTime
	err := row.Scan(&d.ID, &d.Code, &d.PercentOff, &d.AmountOffCents, &couponID, &d.Active, &expires, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	d.ProviderCouponID = couponID.String
	if expires.Valid {
		d.ExpiresAt = &expires.Time
	}
	return &d, nil
}

func (s *PostgresStore) ListDiscounts(ctx context.Context) ([]*Discount, error) {
	rows, err := s.db.QueryContext(ctx, discountSelect+` ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Discount
	for rows.Next() {
		var d Discount
		var couponID sql.NullString
		var expires sql.NullTime
		if err := rows.Scan(&d.ID, &d.Code, &d.PercentOff, &d.AmountOffCents, &couponID, &d.Active, &expires, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		d.ProviderCouponID = couponID.String
		if expires.Valid {
			d.ExpiresAt = &expires.Time
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateDiscount(ctx context.Context, d *Discount) error {
	d.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE discounts SET code=$2, percent_off=$3, amount_off_cents=$4, provider_coupon_id=$5, active=$6, expires_at=$7, updated_at=$8 WHERE id=$1`,
		d.ID, d.Code, d.PercentOff, d.AmountOffCents, nullString(d.ProviderCouponID), d.Active, d.ExpiresAt, d.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PostgresStore) DeleteDiscount(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM discounts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Subscriptions

func (s *PostgresStore) UpsertSubscription(ctx context.Context, sub *Subscription) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, provider_subscription_id, customer_email, price_id, status, current_period_end, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (provider_subscription_id) DO UPDATE SET
		   customer_email=EXCLUDED.customer_email,
		   price_id=EXCLUDED.price_id,
		   status=EXCLUDED.status,
		   current_period_end=EXCLUDED.current_period_end,
		   updated_at=EXCLUDED.updated_at`,
		sub.ID, sub.ProviderSubscriptionID, sub.CustomerEmail, sub.PriceID, sub.Status, sub.CurrentPeriodEnd, sub.CreatedAt, time.Now().UTC())
	return err
}

const subscriptionSelect = `SELECT id, provider_subscription_id, customer_email, price_id, status, current_period_end, created_at, updated_at FROM subscriptions`

func scanSubscription(row *sql.Row) (*Subscription, error) {
	var sub Subscription
	err := row.Scan(&sub.ID, &sub.ProviderSubscriptionID, &sub.CustomerEmail, &sub.PriceID, &sub.Status, &sub.CurrentPeriodEnd, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &sub, nil
}

func (s *PostgresStore) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	return scanSubscription(s.db.QueryRowContext(ctx, subscriptionSelect+` WHERE id=$1`, id))
}

func (s *PostgresStore) GetSubscriptionByProviderID(ctx context.Context, providerID string) (*Subscription, error) {
	return scanSubscription(s.db.QueryRowContext(ctx, subscriptionSelect+` WHERE provider_subscription_id=$1`, providerID))
}

func (s *PostgresStore) ListSubscriptions(ctx context.Context) ([]*Subscription, error) {
	rows, err := s.db.QueryContext(ctx, subscriptionSelect+` ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Subscription
	for rows.Next() {
		var sub Subscription
		if err := rows.Scan(&sub.ID, &sub.ProviderSubscriptionID, &sub.CustomerEmail, &sub.PriceID, &sub.Status, &sub.CurrentPeriodEnd, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &sub)
	}
	return out, rows.Err()
}

// Purchases

func (s *PostgresStore) CreatePurchase(ctx context.Context, p *Purchase) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO purchases (id, provider_session_id, customer_email, amount_cents, line_items_json, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		p.ID, p.ProviderSessionID, p.CustomerEmail, p.AmountCents, nullString(p.LineItemsJSON), p.CreatedAt)
	return duplicate(err)
}

func (s *PostgresStore) GetPurchaseBySession(ctx context.Context, sessionID string) (*Purchase, error) {
	var p Purchase
	var items sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, provider_session_id, customer_email, amount_cents, line_items_json, created_at
		 FROM purchases WHERE provider_session_id=$1`, sessionID).
		Scan(&p.ID, &p.ProviderSessionID, &p.CustomerEmail, &p.AmountCents, &items, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	p.LineItemsJSON = items.String
	return &p, nil
}

func (s *PostgresStore) ListPurchases(ctx context.Context) ([]*Purchase, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, provider_session_id, customer_email, amount_cents, line_items_json, created_at
		 FROM purchases ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Purchase
	for rows.Next() {
		var p Purchase
		var items sql.NullString
		if err := rows.Scan(&p.ID, &p.ProviderSessionID, &p.CustomerEmail, &p.AmountCents, &items, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.LineItemsJSON = items.String
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountPurchasesByEmail(ctx context.Context, email string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM purchases WHERE lower(customer_email)=lower($1)`, email).Scan(&n)
	return n, err
}

// Referrals

func (s *PostgresStore) CreateReferral(ctx context.Context, r *Referral) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO referrals (id, code, referrer_email, referee_email, status, referrer_coupon_id, referee_coupon_id, created_at, completed_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		r.ID, r.Code, r.ReferrerEmail, nullString(r.RefereeEmail), r.Status,
		nullString(r.ReferrerCouponID), nullString(r.RefereeCouponID), r.CreatedAt, r.CompletedAt)
	return duplicate(err)
}

const referralSelect = `SELECT id, code, referrer_email, referee_email, status, referrer_coupon_id, referee_coupon_id, created_at, completed_at FROM referrals`

func scanReferral(row *sql.Row) (*Referral, error) {
	var r Referral
	var referee, refCoupon, refeCoupon sql.NullString
	var completed sql.NullTime
	err := row.Scan(&r.ID, &r.Code, &r.ReferrerEmail, &referee, &r.Status, &refCoupon, &refeCoupon, &r.CreatedAt, &completed)
	if err != nil {
		return nil, notFound(err)
	}
	r.RefereeEmail = referee.String
	r.ReferrerCouponID = refCoupon.String
	r.RefereeCouponID = refeCoupon.String
	if completed.Valid {
		r.CompletedAt = &completed.Time
	}
	return &r, nil
}

func (s *PostgresStore) GetReferralByCode(ctx context.Context, code string) (*Referral, error) {
	return scanReferral(s.db.QueryRowContext(ctx, referralSelect+` WHERE code=$1`, code))
}

func (s *PostgresStore) GetPendingReferralByReferee(ctx context.Context, email string) (*Referral, error) {
	return scanReferral(s.db.QueryRowContext(ctx,
		referralSelect+` WHERE status='pending' AND lower(referee_email)=lower($1)`, email))
}

func (s *PostgresStore) UpdateReferral(ctx context.Context, r *Referral) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE referrals SET referee_email=$2, status=$3, referrer_coupon_id=$4, referee_coupon_id=$5, completed_at=$6 WHERE id=$1`,
		r.ID, nullString(r.RefereeEmail), r.Status, nullString(r.ReferrerCouponID), nullString(r.RefereeCouponID), r.CompletedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PostgresStore) ListReferrals(ctx context.Context) ([]*Referral, error) {
	rows, err := s.db.QueryContext(ctx, referralSelect+` ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Referral
	for rows.Next() {
		var r Referral
		var referee, refCoupon, refeCoupon sql.NullString
		var completed sql.NullTime
		if err := rows.Scan(&r.ID, &r.Code, &r.ReferrerEmail, &referee, &r.Status, &refCoupon, &refeCoupon, &r.CreatedAt, &completed); err != nil {
			return nil, err
		}
		r.RefereeEmail = referee.String
		r.ReferrerCouponID = refCoupon.String
		r.RefereeCouponID = refeCoupon.String
		if completed.Valid {
			r.CompletedAt = &completed.Time
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// Wholesale inquiries

func (s *PostgresStore) CreateInquiry(ctx context.Context, w *WholesaleInquiry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wholesale_inquiries (id, company, contact_name, email, cases_per_month, message, status, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		w.ID, w.Company, w.ContactName, w.Email, w.CasesPerMonth, nullString(w.Message), w.Status, w.CreatedAt, w.UpdatedAt)
	return duplicate(err)
}

func (s *PostgresStore) GetInquiry(ctx context.Context, id string) (*WholesaleInquiry, error) {
	var w WholesaleInquiry
	var message sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, company, contact_name, email, cases_per_month, message, status, created_at, updated_at
		 FROM wholesale_inquiries WHERE id=$1`, id).
		Scan(&w.ID, &w.Company, &w.ContactName, &w.Email, &w.CasesPerMonth, &message, &w.Status, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	w.Message = message.String
	return &w, nil
}

func (s *PostgresStore) ListInquiries(ctx context.Context) ([]*WholesaleInquiry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company, contact_name, email, cases_per_month, message, status, created_at, updated_at
		 FROM wholesale_inquiries ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*WholesaleInquiry
	for rows.Next() {
		var w WholesaleInquiry
		var message sql.NullString
		if err := rows.Scan(&w.ID, &w.Company, &w.ContactName, &w.Email, &w.CasesPerMonth, &message, &w.Status, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		w.Message = message.String
		out = append(out, &w)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateInquiry(ctx context.Context, w *WholesaleInquiry) error {
	w.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE wholesale_inquiries SET company=$2, contact_name=$3, email=$4, cases_per_month=$5, message=$6, status=$7, updated_at=$8 WHERE id=$1`,
		w.ID, w.Company, w.ContactName, w.Email, w.CasesPerMonth, nullString(w.Message), w.Status, w.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Products

func (s *PostgresStore) CreateProduct(ctx context.Context, p *Product) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, slug, name, price_cents, provider_price_id, subscription, active, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.Slug, p.Name, p.PriceCents, nullString(p.ProviderPriceID), p.Subscription, p.Active, p.CreatedAt, p.UpdatedAt)
	return duplicate(err)
}

const productSelect = `SELECT id, slug, name, price_cents, provider_price_id, subscription, active, created_at, updated_at FROM products`

func scanProduct(row *sql.Row) (*Product, error) {
	var p Product
	var priceID sql.NullString
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.PriceCents, &priceID, &p.Subscription, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	p.ProviderPriceID = priceID.String
	return &p, nil
}

func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*Product, error) {
	return scanProduct(s.db.QueryRowContext(ctx, productSelect+` WHERE id=$1`, id))
}

func (s *PostgresStore) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	return scanProduct(s.db.QueryRowContext(ctx, productSelect+` WHERE slug=$1`, slug))
}

func (s *PostgresStore) ListProducts(ctx context.Context) ([]*Product, error) {
	rows, err := s.db.QueryContext(ctx, productSelect+` ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Product
	for rows.Next() {
		var p Product
		var priceID sql.NullString
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.PriceCents, &priceID, &p.Subscription, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.ProviderPriceID = priceID.String
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, p *Product) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET slug=$2, name=$3, price_cents=$4, provider_price_id=$5, subscription=$6, active=$7, updated_at=$8 WHERE id=$1`,
		p.ID, p.Slug, p.Name, p.PriceCents, nullString(p.ProviderPriceID), p.Subscription, p.Active, p.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Ensure PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
