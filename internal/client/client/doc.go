// Package client contains the transport side of the payslips client.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) to talk
//     to the payroll backend: Login, RegisterPushToken, FetchReceipts,
//     FetchReceiptPDF and Ping.
//  2. A concrete REST/JSON implementation (see HTTPClient) that attaches the
//     bearer token and classifies every failure.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Failures are reported with the sentinels of package common so callers can
// match them with errors.Is / errors.As:
//
//   - common.ErrNetwork: no HTTP response was obtained.
//   - *common.ServerError: non-2xx status; 401/403 also match common.ErrUnauthorized.
//   - common.ErrDecoding: the body did not match the expected schema.
//   - common.ErrValidation: the request could not be built.
//
// Context cancellation is returned unwrapped.
package client
