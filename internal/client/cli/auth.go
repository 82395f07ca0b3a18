package cli

import (
	"bytes"
	"context"
	"errors"

	"github.com/dmitrijs2005/payslips/internal/client/session"
	"github.com/dmitrijs2005/payslips/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errPINMismatch = errors.New("PINs do not match")

// Login prompts for email and password and signs in against the backend.
// The password is wiped before returning. The returned error is already
// classified by the session manager.
func (a *App) Login(ctx context.Context) error {
	if a.sessions.IsAuthenticated() {
		a.printf("Already logged in as %s\n", a.sessions.User().FullName())
		return nil
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.sessions.Login(ctx, email, string(password)); err != nil {
		return err
	}

	a.printf("Welcome, %s\n", a.sessions.User().FullName())
	if a.pin != nil && !a.pin.Enrolled(ctx) {
		a.printf("Tip: run 'setpin' to unlock with a PIN next time.\n")
	}
	return nil
}

// Unlock runs the quick unlock of a stored session. A failed or cancelled
// attempt is not an error: the user can try again or log in.
func (a *App) Unlock(ctx context.Context) error {
	err := a.sessions.UnlockWithBiometrics(ctx)
	switch {
	case err == nil:
		a.printf("Unlocked. Welcome back, %s\n", a.sessions.User().FullName())
		return nil
	case errors.Is(err, session.ErrBiometricsUnavailable):
		a.printf("PIN unlock is not set up on this device. Use 'login'.\n")
		return nil
	case errors.Is(err, session.ErrUnlockFailed):
		a.printf("Unlock failed. Try 'unlock' again or use 'login'.\n")
		return nil
	default:
		return err
	}
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}
	a.printf("Logged out\n")
	return nil
}

// SetPIN enrols the PIN used by 'unlock'. It needs an unlocked session so a
// stranger cannot replace the PIN of a locked one.
func (a *App) SetPIN(ctx context.Context) error {
	if !a.sessions.IsAuthenticated() {
		return session.ErrNotAuthenticated
	}

	pin, err := getPassword(a.out, "New PIN: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	confirm, err := getPassword(a.out, "Repeat PIN: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(pin, confirm) {
		return errPINMismatch
	}

	if err := a.pin.Enroll(ctx, pin); err != nil {
		return err
	}
	a.printf("PIN saved. Use 'unlock' next time.\n")
	return nil
}
