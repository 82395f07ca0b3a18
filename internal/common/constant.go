// Package common contains shared constants and sentinel errors used across
// payslips components.
package common

// AuthorizationHeaderName carries the bearer token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// Metadata keys of the local key/value store.
const (
	MetaKeyToken       = "auth_token"
	MetaKeyTokenSalt   = "auth_token_salt"
	MetaKeyCurrentUser = "current_user"
	MetaKeyPinSalt     = "pin_salt"
	MetaKeyPinVerifier = "pin_verifier"
	MetaKeyPushToken   = "push_token"
)
