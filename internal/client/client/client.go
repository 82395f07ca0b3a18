package client

import (
	"context"

	"github.com/dmitrijs2005/payslips/internal/client/models"
)

// Client is the contract with the payroll backend. Errors are classified
// with the sentinels of package common: ErrNetwork, ErrDecoding,
// *ServerError (which also matches ErrUnauthorized for 401/403) and
// ErrValidation for requests that cannot be built.
type Client interface {
	Login(ctx context.Context, email, password, pushToken string) (*models.LoginResponse, error)
	RegisterPushToken(ctx context.Context, pushToken, authToken string) error
	FetchReceipts(ctx context.Context, authToken string, employeeID, receiptType int) ([]models.Receipt, error)
	FetchReceiptPDF(ctx context.Context, authToken string, target models.Target) ([]byte, error)
	Ping(ctx context.Context) error
	Close() error
}
