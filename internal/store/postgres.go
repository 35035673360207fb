package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/punchamoorthee/formgate/internal/models"
)

type Store struct {
	Db *pgxpool.Pool
}

func NewStore(connString string) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Store{Db: pool}, nil
}

func (s *Store) Close() {
	s.Db.Close()
}

// EnsureSchema creates the three record tables if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS shares (
			phone         TEXT PRIMARY KEY,
			friend_shares INT NOT NULL DEFAULT 0,
			group_shares  INT NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS payments (
			phone       TEXT NOT NULL,
			reference   TEXT NOT NULL UNIQUE,
			status      TEXT NOT NULL DEFAULT 'pending',
			upgrade     BOOLEAN NOT NULL DEFAULT FALSE,
			amount      BIGINT NOT NULL,
			verified_at TIMESTAMPTZ,
			PRIMARY KEY (phone, reference)
		);
		CREATE INDEX IF NOT EXISTS idx_payments_phone ON payments (phone);
		CREATE TABLE IF NOT EXISTS applications (
			phone      TEXT PRIMARY KEY,
			form       JSONB NOT NULL,
			upgraded   BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		return fmt.Errorf("schema bootstrap failed: %w", err)
	}
	return nil
}

// IncrementShare bumps one counter for phone by a single atomic upsert,
// clamped to cap. Both counters are returned post-update.
func (s *Store) IncrementShare(ctx context.Context, phone, kind string, limit int) (*models.ShareRecord, error) {
	var query string
	switch kind {
	case models.ShareKindFriend:
		query = `INSERT INTO shares (phone, friend_shares, group_shares) VALUES ($1, 1, 0)
			ON CONFLICT (phone) DO UPDATE SET friend_shares = LEAST(shares.friend_shares + 1, $2)
			RETURNING friend_shares, group_shares`
	case models.ShareKindGroup:
		query = `INSERT INTO shares (phone, friend_shares, group_shares) VALUES ($1, 0, 1)
			ON CONFLICT (phone) DO UPDATE SET group_shares = LEAST(shares.group_shares + 1, $2)
			RETURNING friend_shares, group_shares`
	default:
		return nil, fmt.Errorf("unknown share kind %q", kind)
	}

	rec := models.ShareRecord{Phone: phone}
	err := s.Db.QueryRow(ctx, query, phone, limit).Scan(&rec.Friends, &rec.Groups)
	if err != nil {
		return nil, fmt.Errorf("share increment failed: %w", err)
	}
	return &rec, nil
}

// GetShares returns the counters for phone, or the zero record when the
// phone has never shared.
func (s *Store) GetShares(ctx context.Context, phone string) (*models.ShareRecord, error) {
	rec := models.ShareRecord{Phone: phone}
	err := s.Db.QueryRow(ctx,
		"SELECT friend_shares, group_shares FROM shares WHERE phone = $1",
		phone).Scan(&rec.Friends, &rec.Groups)
	if err == pgx.ErrNoRows {
		return &rec, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreatePayment records a pending payment. Re-initiating the same
// (phone, reference) pair is an upsert, not a duplicate.
func (s *Store) CreatePayment(ctx context.Context, rec *models.PaymentRecord) error {
	_, err := s.Db.Exec(ctx, `
		INSERT INTO payments (phone, reference, status, upgrade, amount)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (reference) DO UPDATE
		SET upgrade = EXCLUDED.upgrade, amount = EXCLUDED.amount`,
		rec.Phone, rec.Reference, rec.Status, rec.Upgrade, rec.Amount)
	if err != nil {
		return fmt.Errorf("payment insert failed: %w", err)
	}
	return nil
}

// GetPayment returns the record for reference, or nil when absent.
func (s *Store) GetPayment(ctx context.Context, reference string) (*models.PaymentRecord, error) {
	var rec models.PaymentRecord
	err := s.Db.QueryRow(ctx, `
		SELECT phone, reference, status, upgrade, amount, verified_at
		FROM payments WHERE reference = $1`,
		reference).Scan(&rec.Phone, &rec.Reference, &rec.Status, &rec.Upgrade, &rec.Amount, &rec.VerifiedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// HasSuccessfulPayment reports whether any payment for phone has reached
// the success status.
func (s *Store) HasSuccessfulPayment(ctx context.Context, phone string) (bool, error) {
	var exists bool
	err := s.Db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM payments WHERE phone = $1 AND status = 'success')",
		phone).Scan(&exists)
	return exists, err
}

// MarkPaymentSuccess moves the payment for (phone, reference) to success in
// one conditional upsert. The status guard keeps a record that already
// failed from flipping to success (first terminal state wins), and the
// COALESCE keeps the original verification timestamp on replays. The
// webhook path may land here before any pending row exists, hence the
// insert arm.
func (s *Store) MarkPaymentSuccess(ctx context.Context, phone, reference string, upgrade bool, amount int64) error {
	_, err := s.Db.Exec(ctx, `
		INSERT INTO payments (phone, reference, status, upgrade, amount, verified_at)
		VALUES ($1, $2, 'success', $3, $4, now())
		ON CONFLICT (reference) DO UPDATE
		SET status = 'success',
		    upgrade = EXCLUDED.upgrade,
		    verified_at = COALESCE(payments.verified_at, now())
		WHERE payments.status <> 'failed'`,
		phone, reference, upgrade, amount)
	if err != nil {
		return fmt.Errorf("payment success upsert failed: %w", err)
	}
	return nil
}

// MarkPaymentFailed moves a pending payment to failed. Terminal records
// are left untouched.
func (s *Store) MarkPaymentFailed(ctx context.Context, reference string) error {
	_, err := s.Db.Exec(ctx,
		"UPDATE payments SET status = 'failed' WHERE reference = $1 AND status = 'pending'",
		reference)
	if err != nil {
		return fmt.Errorf("payment failure update failed: %w", err)
	}
	return nil
}

// UpsertApplication stores the submitted form for phone. A resubmission
// replaces the form but preserves the upgraded flag.
func (s *Store) UpsertApplication(ctx context.Context, app *models.Application) error {
	form, err := json.Marshal(app.Form)
	if err != nil {
		return fmt.Errorf("form encode failed: %w", err)
	}
	_, err = s.Db.Exec(ctx, `
		INSERT INTO applications (phone, form, upgraded, updated_at)
		VALUES ($1, $2, FALSE, now())
		ON CONFLICT (phone) DO UPDATE SET form = EXCLUDED.form, updated_at = now()`,
		app.Phone, form)
	if err != nil {
		return fmt.Errorf("application upsert failed: %w", err)
	}
	return nil
}

// GetApplication returns the application for phone, or nil when absent.
func (s *Store) GetApplication(ctx context.Context, phone string) (*models.Application, error) {
	var (
		app  models.Application
		form []byte
	)
	err := s.Db.QueryRow(ctx,
		"SELECT phone, form, upgraded, updated_at FROM applications WHERE phone = $1",
		phone).Scan(&app.Phone, &form, &app.Upgraded, &app.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(form, &app.Form); err != nil {
		return nil, fmt.Errorf("form decode failed: %w", err)
	}
	return &app, nil
}

// SetApplicationUpgraded flips the one-way upgraded flag for phone.
func (s *Store) SetApplicationUpgraded(ctx context.Context, phone string) error {
	_, err := s.Db.Exec(ctx,
		"UPDATE applications SET upgraded = TRUE, updated_at = now() WHERE phone = $1",
		phone)
	if err != nil {
		return fmt.Errorf("upgrade flag update failed: %w", err)
	}
	return nil
}
