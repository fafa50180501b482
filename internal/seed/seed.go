package seed

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/gr24/internal/labels"
	"github.com/Simplici0/gr24/internal/pricing"
	"github.com/Simplici0/gr24/internal/sheet"
	"github.com/Simplici0/gr24/internal/store"
)

// SampleSheetTitle names the sheet created on first start.
const SampleSheetTitle = "Beispiel / Example"

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
	Pricing       pricing.Config
	Language      labels.Language
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(ctx, tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureSampleSheet(ctx, tx, cfg, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(ctx context.Context, tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureSampleSheet(ctx context.Context, tx *sql.Tx, cfg Config, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM sheets LIMIT 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check sheet existence: %w", err)
	}
	if exists {
		return nil
	}

	sh := sheet.New(cfg.Pricing, cfg.Language)
	sh.Start()
	if err := sh.SetInputs(0, SampleRow()); err != nil {
		return fmt.Errorf("compute sample row: %w", err)
	}

	if err := store.InsertTx(ctx, tx, uuid.NewString(), SampleSheetTitle, sh, time.Now()); err != nil {
		return fmt.Errorf("insert sample sheet: %w", err)
	}
	stats.Inserts++
	return nil
}

// SampleRow is the worked example shown in a fresh installation: it prices
// at 44.26 with 4.00 profit.
func SampleRow() pricing.RawInput {
	return pricing.RawInput{
		Quantity:      "10",
		PurchasePrice: "20.00",
		ShippingCost:  "2.00",
		PackagingCost: "1.00",
		MarginPct:     "20.00",
		AmazonFeePct:  "15.00",
		EbayFeePct:    "0.00",
		ExtraFeePct:   "5.00",
		VATPct:        "19.00",
	}
}
