package session

import "errors"

var (
	ErrLoginInProgress       = errors.New("a login is already in progress")
	ErrUnlockInProgress      = errors.New("an unlock is already in progress")
	ErrNoStoredSession       = errors.New("no stored session on this device")
	ErrBiometricsUnavailable = errors.New("biometric unlock is not available")
	ErrUnlockFailed          = errors.New("biometric unlock failed")
	ErrNotAuthenticated      = errors.New("not authenticated")
)
