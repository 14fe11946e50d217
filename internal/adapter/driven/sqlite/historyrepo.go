package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ericfisherdev/keyprov/internal/domain/model"
	"github.com/ericfisherdev/keyprov/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.HistoryStore = (*HistoryRepo)(nil)

// HistoryRepo is the SQLite implementation of the HistoryStore port. API key
// values are encrypted with AES-256-GCM before write and decrypted after read.
type HistoryRepo struct {
	db  *sql.DB
	key []byte // 32-byte AES-256 key; nil when history is disabled.
}

// NewHistoryRepo creates a new HistoryRepo. key must be 32 bytes for
// AES-256-GCM, or nil to disable history (all operations will return
// driven.ErrEncryptionKeyNotSet).
func NewHistoryRepo(db *sql.DB, key []byte) *HistoryRepo {
	return &HistoryRepo{db: db, key: key}
}

// Record appends one provisioning outcome with the key value encrypted.
func (r *HistoryRepo) Record(ctx context.Context, rec model.ProvisionRecord) error {
	encrypted, err := r.encrypt(rec.Key)
	if err != nil {
		return err
	}

	const query = `INSERT INTO provisions
		(username, account_id, service_id, service_name, plan_id, application_id, key_value, reused)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		rec.Username, rec.AccountID, rec.ServiceID, rec.ServiceName,
		rec.PlanID, rec.ApplicationID, encrypted, rec.Reused,
	)
	if err != nil {
		return fmt.Errorf("record provision for service %q: %w", rec.ServiceID, err)
	}
	return nil
}

// List returns all recorded provisions, newest first, with decrypted keys.
func (r *HistoryRepo) List(ctx context.Context) ([]model.ProvisionRecord, error) {
	if r.key == nil {
		return nil, driven.ErrEncryptionKeyNotSet
	}

	const query = `SELECT id, username, account_id, service_id, service_name,
		plan_id, application_id, key_value, reused, created_at
		FROM provisions ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list provisions: %w", err)
	}
	defer rows.Close()

	var recs []model.ProvisionRecord
	for rows.Next() {
		var rec model.ProvisionRecord
		var encrypted, createdAt string
		if err := rows.Scan(&rec.ID, &rec.Username, &rec.AccountID, &rec.ServiceID,
			&rec.ServiceName, &rec.PlanID, &rec.ApplicationID, &encrypted, &rec.Reused, &createdAt); err != nil {
			return nil, fmt.Errorf("scan provision: %w", err)
		}

		rec.Key, err = r.decrypt(encrypted)
		if err != nil {
			return nil, fmt.Errorf("decrypt provision %d: %w", rec.ID, err)
		}

		rec.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for provision %d: %w", rec.ID, err)
		}

		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate provisions: %w", err)
	}

	return recs, nil
}

// encrypt encrypts plaintext using AES-256-GCM and returns a base64-encoded
// string containing the nonce (12 bytes) prepended to the ciphertext.
func (r *HistoryRepo) encrypt(plaintext string) (string, error) {
	if r.key == nil {
		return "", driven.ErrEncryptionKeyNotSet
	}

	block, err := aes.NewCipher(r.key)
	if err != nil {
		return "", fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("cipher.NewGCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts a base64-encoded AES-256-GCM ciphertext.
func (r *HistoryRepo) decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	block, err := aes.NewCipher(r.key)
	if err != nil {
		return "", fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("cipher.NewGCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}

// parseTime handles the formats SQLite emits for CURRENT_TIMESTAMP columns.
func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format %q", s)
}
