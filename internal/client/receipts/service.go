// Package receipts lists payroll periods and retrieves their PDFs for the
// authenticated employee. Nothing is cached; each call goes to the server.
package receipts

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/payslips/internal/client/models"
	"github.com/dmitrijs2005/payslips/internal/client/session"
	"github.com/dmitrijs2005/payslips/internal/common"
	"github.com/dmitrijs2005/payslips/internal/filex"
	"github.com/dmitrijs2005/payslips/internal/logging"
)

var pdfMagic = []byte("%PDF")

// Fetcher is the receipts half of the backend client.
type Fetcher interface {
	FetchReceipts(ctx context.Context, authToken string, employeeID, receiptType int) ([]models.Receipt, error)
	FetchReceiptPDF(ctx context.Context, authToken string, target models.Target) ([]byte, error)
}

// Identity supplies the bearer token and the current employee.
type Identity interface {
	Token(ctx context.Context) (string, error)
	User() *models.Employee
}

type Service interface {
	// List returns the employee's receipts, newest period first. A non-empty
	// year keeps only receipts whose payment date mentions it.
	List(ctx context.Context, year string) ([]models.Receipt, error)
	// Target builds the target for one of the employee's periods.
	Target(period int) (models.Target, error)
	FetchPDF(ctx context.Context, target models.Target) ([]byte, error)
	// Download fetches the PDF and stores it in the download directory,
	// returning the file path.
	Download(ctx context.Context, target models.Target) (string, error)
}

type service struct {
	client      Fetcher
	identity    Identity
	receiptType int
	downloadDir string
	logger      logging.Logger
}

func NewService(client Fetcher, identity Identity, receiptType int, downloadDir string, logger logging.Logger) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &service{
		client:      client,
		identity:    identity,
		receiptType: receiptType,
		downloadDir: downloadDir,
		logger:      logger,
	}
}

func (s *service) credentials(ctx context.Context) (string, *models.Employee, error) {
	token, err := s.identity.Token(ctx)
	if err != nil {
		return "", nil, err
	}
	user := s.identity.User()
	if user == nil {
		return "", nil, session.ErrNotAuthenticated
	}
	return token, user, nil
}

func (s *service) List(ctx context.Context, year string) ([]models.Receipt, error) {
	token, user, err := s.credentials(ctx)
	if err != nil {
		return nil, err
	}

	all, err := s.client.FetchReceipts(ctx, token, user.ID, s.receiptType)
	if err != nil {
		return nil, fmt.Errorf("fetch receipts: %w", err)
	}

	result := make([]models.Receipt, 0, len(all))
	for _, r := range all {
		if year == "" || r.PaidIn(year) {
			result = append(result, r)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Period > result[j].Period
	})

	s.logger.Debug(ctx, "receipts listed", "total", len(all), "shown", len(result), "year", year)
	return result, nil
}

func (s *service) Target(period int) (models.Target, error) {
	user := s.identity.User()
	if user == nil {
		return models.Target{}, session.ErrNotAuthenticated
	}
	return models.Target{EmployeeID: user.ID, Period: period, Type: s.receiptType}, nil
}

func (s *service) FetchPDF(ctx context.Context, target models.Target) ([]byte, error) {
	token, _, err := s.credentials(ctx)
	if err != nil {
		return nil, err
	}

	data, err := s.client.FetchReceiptPDF(ctx, token, target)
	if err != nil {
		return nil, fmt.Errorf("fetch pdf: %w", err)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, fmt.Errorf("%w: response for %s is not a PDF", common.ErrDecoding, target)
	}
	return data, nil
}

func (s *service) Download(ctx context.Context, target models.Target) (string, error) {
	data, err := s.FetchPDF(ctx, target)
	if err != nil {
		return "", err
	}

	path, err := filex.WriteFileAtomic(s.downloadDir, target.FileName(), data)
	if err != nil {
		return "", fmt.Errorf("save pdf: %w", err)
	}

	s.logger.Info(ctx, "receipt saved", "path", path)
	return path, nil
}
