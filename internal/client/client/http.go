package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/payslips/internal/client/models"
	"github.com/dmitrijs2005/payslips/internal/common"
	json "github.com/goccy/go-json"
)

const (
	loginPath     = "/api/backend/auth/loginMobile"
	pushTokenPath = "/api/backend/notificaciones/guardarToken"
	receiptsPath  = "/api/backend/nomina/recibos/%d/%d"
	pdfPath       = "/api/backend/pdf/%d/%d/%d"

	// Upper bound for PDF bodies.
	maxBodySize = 32 << 20
)

type loginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	PushToken string `json:"fcmToken,omitempty"`
}

type pushTokenRequest struct {
	PushToken string `json:"fcmToken"`
}

// HTTPClient talks to the payroll REST API.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
}

// NewHTTPClient validates baseURL and builds a client with the given
// per-request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: base url: %v", common.ErrValidation, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: base url %q must be absolute", common.ErrValidation, baseURL)
	}
	return &HTTPClient{baseURL: u, http: &http.Client{Timeout: timeout}}, nil
}

func (c *HTTPClient) endpoint(path string) string {
	return c.baseURL.String() + path
}

func (c *HTTPClient) Login(ctx context.Context, email, password, pushToken string) (*models.LoginResponse, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password, PushToken: pushToken})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	data, err := c.do(ctx, http.MethodPost, c.endpoint(loginPath), "", body)
	if err != nil {
		return nil, err
	}

	var resp models.LoginResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: login response: %v", common.ErrDecoding, err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("%w: login response without token", common.ErrDecoding)
	}
	return &resp, nil
}

func (c *HTTPClient) RegisterPushToken(ctx context.Context, pushToken, authToken string) error {
	body, err := json.Marshal(pushTokenRequest{PushToken: pushToken})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	_, err = c.do(ctx, http.MethodPost, c.endpoint(pushTokenPath), authToken, body)
	return err
}

func (c *HTTPClient) FetchReceipts(ctx context.Context, authToken string, employeeID, receiptType int) ([]models.Receipt, error) {
	data, err := c.do(ctx, http.MethodGet, c.endpoint(fmt.Sprintf(receiptsPath, employeeID, receiptType)), authToken, nil)
	if err != nil {
		return nil, err
	}

	var receipts []models.Receipt
	if err := json.Unmarshal(data, &receipts); err != nil {
		return nil, fmt.Errorf("%w: receipts: %v", common.ErrDecoding, err)
	}
	return receipts, nil
}

func (c *HTTPClient) FetchReceiptPDF(ctx context.Context, authToken string, target models.Target) ([]byte, error) {
	return c.do(ctx, http.MethodGet, c.endpoint(fmt.Sprintf(pdfPath, target.EmployeeID, target.Period, target.Type)), authToken, nil)
}

// Ping probes reachability. Any HTTP response, whatever its status, means
// the server is reachable.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	resp.Body.Close()
	return nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint, authToken string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+authToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, mapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &common.ServerError{Code: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, mapTransportError(err)
	}
	if len(data) > maxBodySize {
		return nil, fmt.Errorf("%w: response body exceeds %d bytes", common.ErrDecoding, maxBodySize)
	}
	return data, nil
}

func mapTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", common.ErrNetwork, err)
}
