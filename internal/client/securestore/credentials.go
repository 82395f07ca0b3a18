// Package securestore keeps the durable half of a session on the device: the
// bearer token, sealed with a key that only this device can derive, and a
// JSON snapshot of the employee profile.
package securestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/payslips/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/payslips/internal/common"
	"github.com/dmitrijs2005/payslips/internal/cryptox"
	"github.com/dmitrijs2005/payslips/internal/dbx"
)

const saltSize = 16

var ErrUnreadableToken = errors.New("stored token cannot be decrypted on this device")

// CredentialStore persists exactly one opaque bearer token.
// Get returns "" when no token is stored.
type CredentialStore interface {
	Save(ctx context.Context, token string) error
	Get(ctx context.Context) (string, error)
	Delete(ctx context.Context) error
}

// SQLiteCredentialStore seals the token with AES-GCM under a key derived
// from the device secret and a per-install salt. Token and salt live in the
// metadata table and are written in one transaction.
type SQLiteCredentialStore struct {
	db     *sql.DB
	secret []byte

	mu      sync.Mutex
	keySalt []byte
	key     []byte
}

func NewSQLiteCredentialStore(db *sql.DB, deviceSecret []byte) *SQLiteCredentialStore {
	return &SQLiteCredentialStore{db: db, secret: append([]byte(nil), deviceSecret...)}
}

func (s *SQLiteCredentialStore) repo() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

// deriveKey memoises the argon2 derivation for the current salt.
func (s *SQLiteCredentialStore) deriveKey(salt []byte) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil && string(s.keySalt) == string(salt) {
		return s.key
	}
	s.keySalt = append([]byte(nil), salt...)
	s.key = cryptox.DeriveKey(s.secret, salt)
	return s.key
}

func (s *SQLiteCredentialStore) Save(ctx context.Context, token string) error {
	salt, err := s.repo().Get(ctx, common.MetaKeyTokenSalt)
	if err != nil {
		return err
	}
	if salt == nil {
		salt = common.GenerateRandByteArray(saltSize)
	}

	sealed, err := cryptox.Seal(s.deriveKey(salt), []byte(token))
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}

	return dbx.WithTx(ctx, s.db, func(tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.MetaKeyTokenSalt, salt); err != nil {
			return err
		}
		return repo.Set(ctx, common.MetaKeyToken, sealed)
	})
}

func (s *SQLiteCredentialStore) Get(ctx context.Context) (string, error) {
	stored, err := s.repo().GetMany(ctx, common.MetaKeyToken, common.MetaKeyTokenSalt)
	if err != nil {
		return "", err
	}
	sealed, salt := stored[common.MetaKeyToken], stored[common.MetaKeyTokenSalt]
	if sealed == nil {
		return "", nil
	}
	if salt == nil {
		return "", ErrUnreadableToken
	}

	plain, err := cryptox.Open(s.deriveKey(salt), sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableToken, err)
	}
	defer common.WipeByteArray(plain)

	return string(plain), nil
}

// Delete removes the token. Deleting an absent token is not an error.
func (s *SQLiteCredentialStore) Delete(ctx context.Context) error {
	return s.repo().Delete(ctx, common.MetaKeyToken)
}
