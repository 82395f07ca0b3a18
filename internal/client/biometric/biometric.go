// Package biometric provides the local "something you are" check that unlocks
// a stored session without a network round trip. A terminal has no sensor,
// so the capability is a device PIN verified against an argon2 verifier kept
// in the local database.
package biometric

import (
	"bytes"
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/payslips/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/payslips/internal/common"
	"github.com/dmitrijs2005/payslips/internal/cryptox"
	"github.com/dmitrijs2005/payslips/internal/dbx"
	"golang.org/x/term"
)

const (
	MinPINLength = 4
	saltSize     = 16
)

var (
	ErrCancelled   = errors.New("authentication cancelled")
	ErrMismatch    = errors.New("pin does not match")
	ErrNotEnrolled = errors.New("no unlock pin enrolled on this device")
	ErrWeakPIN     = fmt.Errorf("pin must have at least %d characters", MinPINLength)
)

// Test seams for the terminal.
var (
	readPIN    = term.ReadPassword
	isTerminal = term.IsTerminal
	stdinFd    = func() int { return int(os.Stdin.Fd()) }
)

// Capability is the device-local identity check. Evaluate is called at most
// once per unlock attempt and never retried by the caller.
type Capability interface {
	IsAvailable(ctx context.Context) bool
	Evaluate(ctx context.Context, reason string) error
}

type PINCapability struct {
	db  *sql.DB
	out io.Writer
}

func NewPINCapability(db *sql.DB, out io.Writer) *PINCapability {
	return &PINCapability{db: db, out: out}
}

func (p *PINCapability) repo() metadata.Repository {
	return metadata.NewSQLiteRepository(p.db)
}

// Enroll replaces the device PIN. Salt and verifier are written together.
func (p *PINCapability) Enroll(ctx context.Context, pin []byte) error {
	if len(bytes.TrimSpace(pin)) < MinPINLength {
		return ErrWeakPIN
	}

	salt := common.GenerateRandByteArray(saltSize)
	key := cryptox.DeriveKey(pin, salt)
	defer common.WipeByteArray(key)
	verifier := cryptox.MakeVerifier(key)

	return dbx.WithTx(ctx, p.db, func(tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.MetaKeyPinSalt, salt); err != nil {
			return err
		}
		return repo.Set(ctx, common.MetaKeyPinVerifier, verifier)
	})
}

// Enrolled reports whether a PIN verifier is stored.
func (p *PINCapability) Enrolled(ctx context.Context) bool {
	v, err := p.repo().Get(ctx, common.MetaKeyPinVerifier)
	return err == nil && v != nil
}

// IsAvailable is true when a PIN is enrolled and stdin is an interactive
// terminal to read it from.
func (p *PINCapability) IsAvailable(ctx context.Context) bool {
	return p.Enrolled(ctx) && isTerminal(stdinFd())
}

func (p *PINCapability) Evaluate(ctx context.Context, reason string) error {
	stored, err := p.repo().GetMany(ctx, common.MetaKeyPinSalt, common.MetaKeyPinVerifier)
	if err != nil {
		return err
	}
	salt, verifier := stored[common.MetaKeyPinSalt], stored[common.MetaKeyPinVerifier]
	if salt == nil || verifier == nil {
		return ErrNotEnrolled
	}

	if reason != "" {
		fmt.Fprintln(p.out, reason)
	}
	fmt.Fprint(p.out, "Enter PIN: ")
	pin, err := readPIN(stdinFd())
	fmt.Fprintln(p.out)
	defer common.WipeByteArray(pin)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	if ctx.Err() != nil || len(pin) == 0 {
		return ErrCancelled
	}

	key := cryptox.DeriveKey(pin, salt)
	defer common.WipeByteArray(key)

	if subtle.ConstantTimeCompare(cryptox.MakeVerifier(key), verifier) != 1 {
		return ErrMismatch
	}
	return nil
}

// Disenroll removes the PIN; Evaluate then fails with ErrNotEnrolled.
func (p *PINCapability) Disenroll(ctx context.Context) error {
	return p.repo().Delete(ctx, common.MetaKeyPinVerifier, common.MetaKeyPinSalt)
}
