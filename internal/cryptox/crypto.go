// Package cryptox wraps the key derivation and authenticated encryption used
// for data kept on the device: the bearer token and the unlock PIN verifier.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"errors"

	"github.com/dmitrijs2005/payslips/internal/common"
	"golang.org/x/crypto/argon2"
)

const KeySize = 32

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// DeriveKey stretches a secret (device secret, PIN) with argon2id.
func DeriveKey(secret []byte, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, KeySize)
}

// MakeVerifier returns a value that can be stored to check a derived key
// later without storing the key itself.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// Seal encrypts plaintext with AES-GCM under key. The random nonce is
// prepended to the returned ciphertext.
func Seal(key, plaintext []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())
	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal. It fails if the key is wrong or the data was modified.
func Open(key, sealed []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	n := aesgcm.NonceSize()
	if len(sealed) < n {
		return nil, ErrCiphertextTooShort
	}

	return aesgcm.Open(nil, sealed[:n], sealed[n:], nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
