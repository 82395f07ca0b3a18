package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/payslips/internal/client/config"
	"github.com/dmitrijs2005/payslips/internal/client/models"
	"github.com/dmitrijs2005/payslips/internal/client/session"
	"github.com/dmitrijs2005/payslips/internal/client/share"
	"github.com/dmitrijs2005/payslips/internal/logging"
)

type memCredentials struct {
	mu    sync.Mutex
	token string
}

func (m *memCredentials) Save(_ context.Context, t string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = t
	return nil
}

func (m *memCredentials) Get(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memCredentials) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

type memProfiles struct {
	mu   sync.Mutex
	user *models.Employee
}

func (m *memProfiles) Save(_ context.Context, e models.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = &e
	return nil
}

func (m *memProfiles) Load(context.Context) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user, nil
}

func (m *memProfiles) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	return nil
}

type fakeBiometrics struct {
	available bool
	result    error
	calls     int
}

func (f *fakeBiometrics) IsAvailable(context.Context) bool { return f.available }
func (f *fakeBiometrics) Evaluate(context.Context, string) error {
	f.calls++
	return f.result
}

type fakeAuthClient struct {
	loginErr   error
	registered int
	mu         sync.Mutex
}

func (f *fakeAuthClient) Login(_ context.Context, email, password, _ string) (*models.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.LoginResponse{Token: "T1", Employee: employee()}, nil
}

func (f *fakeAuthClient) RegisterPushToken(context.Context, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered++
	return nil
}

type fakeReceipts struct {
	list       []models.Receipt
	listYear   string
	listErr    error
	downloads  []models.Target
	pdf        []byte
	pdfErr     error
	downloadTo string
}

func (f *fakeReceipts) List(_ context.Context, year string) ([]models.Receipt, error) {
	f.listYear = year
	return f.list, f.listErr
}

func (f *fakeReceipts) Target(period int) (models.Target, error) {
	return models.Target{EmployeeID: 123, Period: period, Type: 1}, nil
}

func (f *fakeReceipts) FetchPDF(context.Context, models.Target) ([]byte, error) {
	return f.pdf, f.pdfErr
}

func (f *fakeReceipts) Download(_ context.Context, t models.Target) (string, error) {
	if f.pdfErr != nil {
		return "", f.pdfErr
	}
	f.downloads = append(f.downloads, t)
	return f.downloadTo + "/" + t.FileName(), nil
}

type fakeShare struct {
	target models.Target
	pdf    []byte
	link   string
	err    error
}

func (f *fakeShare) Share(_ context.Context, t models.Target, pdf []byte) (string, error) {
	f.target, f.pdf = t, pdf
	return f.link, f.err
}

var _ share.Service = (*fakeShare)(nil)

type fakePIN struct {
	enrolled bool
	pin      []byte
	err      error
}

func (f *fakePIN) Enroll(_ context.Context, pin []byte) error {
	if f.err != nil {
		return f.err
	}
	f.pin = append([]byte(nil), pin...)
	f.enrolled = true
	return nil
}

func (f *fakePIN) Enrolled(context.Context) bool { return f.enrolled }

type fakePush struct {
	rotations int
	err       error
}

func (f *fakePush) Token(context.Context) (string, error) { return "push-1", nil }
func (f *fakePush) Rotate(context.Context) (string, error) {
	f.rotations++
	return "push-2", f.err
}

type fakePinger struct {
	mu  sync.Mutex
	err error
}

func (f *fakePinger) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakePinger) set(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func employee() models.Employee {
	return models.Employee{ID: 123, FirstName: "Ana", PaternalSurname: "López", MaternalSurname: "Ruiz", RFC: "LORA800101", CURP: "LORA800101MDFXXX01", Category: 1, Email: "a@x.com"}
}

type harness struct {
	input    string
	noShare  bool
	app      *App
	manager  *session.Manager
	out      *bytes.Buffer
	logs     *bytes.Buffer
	creds    *memCredentials
	profiles *memProfiles
	bio      *fakeBiometrics
	client   *fakeAuthClient
	receipts *fakeReceipts
	share    *fakeShare
	pin      *fakePIN
	push     *fakePush
	pinger   *fakePinger
}

type harnessOpt func(*harness)

func withStoredSession() harnessOpt {
	return func(h *harness) {
		h.creds.token = "stored-token"
		u := employee()
		h.profiles.user = &u
	}
}

func withoutShare() harnessOpt {
	return func(h *harness) { h.noShare = true }
}

func withInput(s string) harnessOpt {
	return func(h *harness) { h.input = s }
}

func newHarness(t *testing.T, opts ...harnessOpt) *harness {
	t.Helper()
	h := &harness{
		out:      &bytes.Buffer{},
		logs:     &bytes.Buffer{},
		creds:    &memCredentials{},
		profiles: &memProfiles{},
		bio:      &fakeBiometrics{available: true},
		client:   &fakeAuthClient{},
		receipts: &fakeReceipts{pdf: []byte("%PDF-1.7"), downloadTo: "/tmp/receipts"},
		share:    &fakeShare{link: "https://s3.local/get/receipt.pdf"},
		pin:      &fakePIN{},
		push:     &fakePush{},
		pinger:   &fakePinger{},
	}
	for _, opt := range opts {
		opt(h)
	}

	logger := logging.NewTextLogger(h.logs, "debug")
	h.manager = session.NewManager(context.Background(), session.Deps{
		Client:      h.client,
		Credentials: h.creds,
		Profiles:    h.profiles,
		Biometrics:  h.bio,
		Push:        h.push,
		Logger:      logger,
	})

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.OnlineCheckInterval = 10 * time.Millisecond

	var sh share.Service = h.share
	if h.noShare {
		sh = nil
	}

	h.app = NewApp(Deps{
		Config:   cfg,
		Sessions: h.manager,
		Receipts: h.receipts,
		Share:    sh,
		PIN:      h.pin,
		Push:     h.push,
		Pinger:   h.pinger,
		Logger:   logger,
		In:       strings.NewReader(h.input),
		Out:      h.out,
	})
	t.Cleanup(func() {
		h.app.Close()
		h.manager.Wait()
	})
	return h
}

func stubInputs(t *testing.T, email string, secrets ...string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})

	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return email, nil }
	getPassword = func(_ io.Writer, _ string) ([]byte, error) {
		if len(secrets) == 0 {
			return nil, errors.New("no more input")
		}
		s := secrets[0]
		secrets = secrets[1:]
		return []byte(s), nil
	}
}
