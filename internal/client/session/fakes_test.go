package session

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/payslips/internal/client/biometric"
	"github.com/dmitrijs2005/payslips/internal/client/models"
)

type registerCall struct {
	pushToken string
	authToken string
	ctxErr    error
}

type fakeClient struct {
	mu            sync.Mutex
	loginCalls    int
	lastPushToken string
	loginFn       func(ctx context.Context, email, password string) (*models.LoginResponse, error)
	registerFn    func(ctx context.Context) error
	registrations []registerCall
}

func (f *fakeClient) Login(ctx context.Context, email, password, pushToken string) (*models.LoginResponse, error) {
	f.mu.Lock()
	f.loginCalls++
	f.lastPushToken = pushToken
	fn := f.loginFn
	f.mu.Unlock()

	if fn == nil {
		return &models.LoginResponse{Token: "T1", Employee: testEmployee()}, nil
	}
	return fn(ctx, email, password)
}

func (f *fakeClient) RegisterPushToken(ctx context.Context, pushToken, authToken string) error {
	f.mu.Lock()
	fn := f.registerFn
	f.mu.Unlock()

	var err error
	if fn != nil {
		err = fn(ctx)
	}

	f.mu.Lock()
	f.registrations = append(f.registrations, registerCall{pushToken: pushToken, authToken: authToken, ctxErr: ctx.Err()})
	f.mu.Unlock()
	return err
}

func (f *fakeClient) LoginCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls
}

func (f *fakeClient) Registrations() []registerCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]registerCall(nil), f.registrations...)
}

type memCredentials struct {
	mu      sync.Mutex
	token   string
	saveErr error
}

func (m *memCredentials) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = token
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
	mu      sync.Mutex
	user    *models.Employee
	saveErr error
}

func (m *memProfiles) Save(_ context.Context, e models.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.user = &e
	return nil
}

func (m *memProfiles) Load(context.Context) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil, nil
	}
	u := *m.user
	return &u, nil
}

func (m *memProfiles) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	return nil
}

type fakeBiometrics struct {
	mu        sync.Mutex
	available bool
	result    error
	calls     int
	evaluate  func(ctx context.Context) error
}

func (f *fakeBiometrics) IsAvailable(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available
}

func (f *fakeBiometrics) Evaluate(ctx context.Context, _ string) error {
	f.mu.Lock()
	f.calls++
	fn, res := f.evaluate, f.result
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return res
}

func (f *fakeBiometrics) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePush struct {
	token string
	err   error
}

func (f *fakePush) Token(context.Context) (string, error) {
	return f.token, f.err
}

var errNetworkDown = errors.New("dial tcp: connection refused")

var _ biometric.Capability = (*fakeBiometrics)(nil)

func testEmployee() models.Employee {
	return models.Employee{ID: 123, FirstName: "Ana", PaternalSurname: "López", MaternalSurname: "Ruiz", Email: "a@x.com"}
}

type fixture struct {
	client   *fakeClient
	creds    *memCredentials
	profiles *memProfiles
	bio      *fakeBiometrics
	push     *fakePush
}

func newFixture() *fixture {
	return &fixture{
		client:   &fakeClient{},
		creds:    &memCredentials{},
		profiles: &memProfiles{},
		bio:      &fakeBiometrics{available: true},
		push:     &fakePush{token: "push-1"},
	}
}

// withStoredSession simulates a previous run that logged in.
func (f *fixture) withStoredSession() *fixture {
	f.creds.token = "stored-token"
	u := testEmployee()
	f.profiles.user = &u
	return f
}

func (f *fixture) manager(opts ...Option) *Manager {
	return NewManager(context.Background(), Deps{
		Client:      f.client,
		Credentials: f.creds,
		Profiles:    f.profiles,
		Biometrics:  f.bio,
		Push:        f.push,
	}, opts...)
}
