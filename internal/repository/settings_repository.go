package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Setting keys owned by the operator.
const (
	SettingCardNumber = "card_number"
	SettingCardOwner  = "card_owner"
)

type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context, key, def string) (string, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `SELECT v FROM settings WHERE k = $1`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("get setting %q: %w", key, err)
	}
	if v == "" {
		return def, nil
	}
	return v, nil
}

// EnsureDefaults seeds placeholder payment details so the instruction
// text is never empty before the operator configures real ones.
func (r *SettingsRepository) EnsureDefaults(ctx context.Context) error {
	defaults := map[string]string{
		SettingCardNumber: "0000 0000 0000 0000",
		SettingCardOwner:  "CARD OWNER",
	}
	for key, def := range defaults {
		v, err := r.Get(ctx, key, "")
		if err != nil {
			return err
		}
		if v != "" {
			continue
		}
		if err := r.Set(ctx, key, def); err != nil {
			return err
		}
	}
	return nil
}

func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (k, v) VALUES ($1, $2)
		ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v
	`, key, value)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}
