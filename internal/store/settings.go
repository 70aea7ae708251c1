package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/erazemk/lendshare/internal/auth"
)

const jwtSecretKey = "jwt_secret"

// GetJWTSecret returns the session signing secret persisted in settings,
// generating one on first use. A stored secret shorter than
// auth.MinSecretLength is replaced, which invalidates sessions signed with it.
func GetJWTSecret(ctx context.Context, db DBTX) (string, error) {
	candidate, err := newJWTSecret()
	if err != nil {
		return "", err
	}

	// INSERT OR IGNORE + re-read keeps concurrent first starts on one secret.
	_, err = db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, jwtSecretKey, candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt secret: %w", err)
	}

	secret, err := getSetting(ctx, db, jwtSecretKey)
	if err != nil {
		return "", err
	}
	if len(secret) >= auth.MinSecretLength {
		return secret, nil
	}

	_, err = db.ExecContext(ctx,
		`UPDATE settings SET value = ? WHERE key = ? AND value = ?`, candidate, jwtSecretKey, secret,
	)
	if err != nil {
		return "", fmt.Errorf("replacing short jwt secret: %w", err)
	}
	return getSetting(ctx, db, jwtSecretKey)
}

func newJWTSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func getSetting(ctx context.Context, db DBTX, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("setting %q missing", key)
	}
	if err != nil {
		return "", fmt.Errorf("querying setting %q: %w", key, err)
	}
	return value, nil
}
