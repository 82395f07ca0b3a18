// Package session owns the authentication lifecycle of the client: login,
// unlock of a stored session, logout, and the pending navigation target a
// notification may leave behind while the session is locked.
//
// A stored token and profile are never enough to be authenticated. After a
// restart the manager is StoredLocked until the user unlocks it or logs in
// again.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/payslips/internal/client/biometric"
	"github.com/dmitrijs2005/payslips/internal/client/models"
	"github.com/dmitrijs2005/payslips/internal/client/push"
	"github.com/dmitrijs2005/payslips/internal/client/securestore"
	"github.com/dmitrijs2005/payslips/internal/common"
	"github.com/dmitrijs2005/payslips/internal/logging"
)

const (
	defaultPushTimeout  = 10 * time.Second
	defaultUnlockReason = "Unlock your payroll session"
)

// AuthClient is the part of the backend client the manager talks to.
type AuthClient interface {
	Login(ctx context.Context, email, password, pushToken string) (*models.LoginResponse, error)
	RegisterPushToken(ctx context.Context, pushToken, authToken string) error
}

type Deps struct {
	Client      AuthClient
	Credentials securestore.CredentialStore
	Profiles    securestore.ProfileStore
	Biometrics  biometric.Capability
	Push        push.TokenSource
	Logger      logging.Logger
}

type Option func(*Manager)

// WithPushTimeout bounds each background push-token registration.
func WithPushTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.pushTimeout = d
		}
	}
}

// WithUnlockReason sets the text shown by the biometric prompt.
func WithUnlockReason(reason string) Option {
	return func(m *Manager) { m.unlockReason = reason }
}

type watcher struct {
	id int
	fn func(Snapshot)
}

type Manager struct {
	client      AuthClient
	credentials securestore.CredentialStore
	profiles    securestore.ProfileStore
	biometrics  biometric.Capability
	push        push.TokenSource
	logger      logging.Logger

	pushTimeout  time.Duration
	unlockReason string

	mu            sync.Mutex
	user          *models.Employee
	hasToken      bool
	authenticated bool
	unlocking     bool
	loading       bool
	lastError     string
	pending       *models.Target

	watchers []watcher
	nextID   int

	wg sync.WaitGroup
}

// NewManager hydrates the user and token presence from durable storage. The
// profile snapshot is only loaded when a token exists.
func NewManager(ctx context.Context, deps Deps, opts ...Option) *Manager {
	m := &Manager{
		client:       deps.Client,
		credentials:  deps.Credentials,
		profiles:     deps.Profiles,
		biometrics:   deps.Biometrics,
		push:         deps.Push,
		logger:       deps.Logger,
		pushTimeout:  defaultPushTimeout,
		unlockReason: defaultUnlockReason,
	}
	if m.logger == nil {
		m.logger = logging.NewNopLogger()
	}
	for _, opt := range opts {
		opt(m)
	}

	m.hydrate(ctx)
	return m
}

func (m *Manager) hydrate(ctx context.Context) {
	token, err := m.credentials.Get(ctx)
	if err != nil {
		m.logger.Warn(ctx, "stored token unavailable", "error", err)
		return
	}
	if token == "" {
		return
	}
	m.hasToken = true

	user, err := m.profiles.Load(ctx)
	if err != nil {
		m.logger.Warn(ctx, "stored profile unavailable", "error", err)
		return
	}
	m.user = user
	if user != nil {
		m.logger.Debug(ctx, "stored session found", "employee", user.ID)
	}
}

func (m *Manager) stateLocked() State {
	switch {
	case m.authenticated:
		return Authenticated
	case m.unlocking:
		return Unlocking
	case m.hasToken && m.user != nil:
		return StoredLocked
	default:
		return LoggedOut
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	s := Snapshot{
		State:           m.stateLocked(),
		IsAuthenticated: m.authenticated,
		IsLoading:       m.loading,
		LastError:       m.lastError,
	}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	return s
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticated
}

// User returns a copy of the current profile, or nil.
func (m *Manager) User() *models.Employee {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Token returns the bearer token for API calls. It is only handed out once
// the session has been unlocked.
func (m *Manager) Token(ctx context.Context) (string, error) {
	if !m.IsAuthenticated() {
		return "", ErrNotAuthenticated
	}
	token, err := m.credentials.Get(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNotAuthenticated
	}
	return token, nil
}

// HasStoredSession reports whether a token is in the credential store and a
// profile is loaded, regardless of whether the session is unlocked.
func (m *Manager) HasStoredSession(ctx context.Context) bool {
	m.mu.Lock()
	hasUser := m.user != nil
	m.mu.Unlock()
	if !hasUser {
		return false
	}

	token, err := m.credentials.Get(ctx)
	if err != nil {
		m.logger.Warn(ctx, "credential store read failed", "error", err)
		return false
	}
	return token != ""
}

// Watch registers fn to receive a snapshot after every transition. Callbacks
// run outside the manager's lock in registration order. The returned func
// unregisters fn.
func (m *Manager) Watch(fn func(Snapshot)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.watchers = append(m.watchers, watcher{id: id, fn: fn})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, w := range m.watchers {
			if w.id == id {
				m.watchers = append(m.watchers[:i:i], m.watchers[i+1:]...)
				return
			}
		}
	}
}

// notifyLocked captures the current snapshot and watchers. The returned func
// delivers it and must be called after the lock is released.
func (m *Manager) notifyLocked() func() {
	snap := m.snapshotLocked()
	watchers := append([]watcher(nil), m.watchers...)
	return func() {
		for _, w := range watchers {
			w.fn(snap)
		}
	}
}

// commit runs change under the lock and publishes the resulting snapshot.
func (m *Manager) commit(change func()) {
	m.mu.Lock()
	change()
	notify := m.notifyLocked()
	m.mu.Unlock()
	notify()
}

// Login authenticates against the backend. Only one login may be in flight;
// a second call while loading returns ErrLoginInProgress and changes nothing.
// On failure the previous state is kept and LastError describes the failure.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.mu.Lock()
	if m.loading {
		m.mu.Unlock()
		return ErrLoginInProgress
	}
	if strings.TrimSpace(email) == "" || password == "" {
		err := common.ErrMissingCredentials
		m.lastError = common.Describe(err)
		notify := m.notifyLocked()
		m.mu.Unlock()
		notify()
		return err
	}
	m.loading = true
	notify := m.notifyLocked()
	m.mu.Unlock()
	notify()

	done := false
	defer func() {
		if !done {
			m.commit(func() { m.loading = false })
		}
	}()

	pushToken := m.pushToken(ctx)

	resp, err := m.client.Login(ctx, strings.TrimSpace(email), password, pushToken)
	if err == nil {
		err = m.persist(ctx, resp)
	}

	if err != nil {
		hasToken := m.tokenPresent(ctx)
		m.commit(func() {
			m.loading = false
			m.hasToken = hasToken
			m.lastError = common.Describe(err)
		})
		done = true
		m.logger.Warn(ctx, "login failed", "error", err)
		return err
	}

	user := resp.Employee
	m.commit(func() {
		m.loading = false
		m.user = &user
		m.hasToken = true
		m.authenticated = true
		m.lastError = ""
	})
	done = true
	m.logger.Info(ctx, "login succeeded", "employee", user.ID)

	m.registerInBackground(ctx, pushToken, resp.Token)
	return nil
}

// persist writes the token then the profile snapshot. If the snapshot
// cannot be written the token that was stored before the attempt is put
// back, so a stored session survives a failed login.
func (m *Manager) persist(ctx context.Context, resp *models.LoginResponse) error {
	prev, err := m.credentials.Get(ctx)
	if err != nil {
		m.logger.Warn(ctx, "previous token unreadable", "error", err)
		prev = ""
	}

	if err := m.credentials.Save(ctx, resp.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := m.profiles.Save(ctx, resp.Employee); err != nil {
		m.restoreToken(ctx, prev)
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (m *Manager) restoreToken(ctx context.Context, prev string) {
	var err error
	if prev == "" {
		err = m.credentials.Delete(ctx)
	} else {
		err = m.credentials.Save(ctx, prev)
	}
	if err != nil {
		m.logger.Error(ctx, "failed to restore previous token", "error", err)
	}
}

func (m *Manager) tokenPresent(ctx context.Context) bool {
	token, err := m.credentials.Get(ctx)
	return err == nil && token != ""
}

func (m *Manager) pushToken(ctx context.Context) string {
	if m.push == nil {
		return ""
	}
	token, err := m.push.Token(ctx)
	if err != nil {
		m.logger.Warn(ctx, "push token unavailable", "error", err)
		return ""
	}
	return token
}

// registerInBackground sends the push token without blocking the caller.
// The request outlives ctx's cancellation but not the push timeout; its
// outcome, including a panic, only reaches the log.
func (m *Manager) registerInBackground(ctx context.Context, pushToken, authToken string) {
	if pushToken == "" {
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				m.logger.Error(ctx, "push token registration panicked", "panic", p)
			}
		}()

		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.pushTimeout)
		defer cancel()

		if err := m.client.RegisterPushToken(rctx, pushToken, authToken); err != nil {
			m.logger.Warn(ctx, "push token registration failed", "error", err)
			return
		}
		m.logger.Debug(ctx, "push token registered")
	}()
}

// RegisterPushToken sends the current push token when a session is stored,
// e.g. after the installation token was rotated. Without a stored token or
// a push token it does nothing.
func (m *Manager) RegisterPushToken(ctx context.Context) error {
	authToken, err := m.credentials.Get(ctx)
	if err != nil {
		return err
	}
	if authToken == "" {
		return nil
	}

	pushToken := m.pushToken(ctx)
	if pushToken == "" {
		return nil
	}

	rctx, cancel := context.WithTimeout(ctx, m.pushTimeout)
	defer cancel()
	return m.client.RegisterPushToken(rctx, pushToken, authToken)
}

// Wait blocks until background push registrations have returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// CanUseBiometrics is true when the capability is available and there is a
// stored session to unlock.
func (m *Manager) CanUseBiometrics(ctx context.Context) bool {
	if m.biometrics == nil || !m.biometrics.IsAvailable(ctx) {
		return false
	}
	return m.HasStoredSession(ctx)
}

// UnlockWithBiometrics evaluates the biometric capability exactly once. On
// success the stored session becomes Authenticated without any network call.
// On failure the session stays StoredLocked and LastError is left alone;
// ErrUnlockFailed is returned for the caller's information only.
func (m *Manager) UnlockWithBiometrics(ctx context.Context) error {
	if !m.HasStoredSession(ctx) {
		return ErrNoStoredSession
	}
	if m.biometrics == nil || !m.biometrics.IsAvailable(ctx) {
		return ErrBiometricsUnavailable
	}

	m.mu.Lock()
	switch {
	case m.authenticated:
		m.mu.Unlock()
		return nil
	case m.unlocking:
		m.mu.Unlock()
		return ErrUnlockInProgress
	}
	m.unlocking = true
	notify := m.notifyLocked()
	m.mu.Unlock()
	notify()

	done := false
	defer func() {
		if !done {
			m.commit(func() { m.unlocking = false })
		}
	}()

	err := m.biometrics.Evaluate(ctx, m.unlockReason)

	lost := false
	m.commit(func() {
		m.unlocking = false
		if err != nil {
			return
		}
		// a logout during Evaluate leaves nothing to unlock
		if !m.hasToken || m.user == nil {
			lost = true
			return
		}
		m.authenticated = true
	})
	done = true

	if lost {
		m.logger.Info(ctx, "stored session removed during unlock")
		return ErrNoStoredSession
	}

	if err != nil {
		if errors.Is(err, biometric.ErrCancelled) {
			m.logger.Info(ctx, "biometric unlock cancelled")
		} else {
			m.logger.Info(ctx, "biometric unlock failed", "error", err)
		}
		return fmt.Errorf("%w: %v", ErrUnlockFailed, err)
	}

	m.logger.Info(ctx, "session unlocked")
	return nil
}

// Logout removes the stored token and profile and clears the in-memory
// session. Logging out of a logged-out manager is a no-op. Storage errors
// are returned but the in-memory session is cleared regardless.
func (m *Manager) Logout(ctx context.Context) error {
	var errs []error
	if err := m.credentials.Delete(ctx); err != nil {
		errs = append(errs, fmt.Errorf("delete token: %w", err))
	}
	if err := m.profiles.Delete(ctx); err != nil {
		errs = append(errs, fmt.Errorf("delete profile: %w", err))
	}

	m.commit(func() {
		m.user = nil
		m.hasToken = false
		m.authenticated = false
		m.unlocking = false
		m.lastError = ""
	})

	m.logger.Info(ctx, "logged out")
	return errors.Join(errs...)
}

// SetPendingNavigation stages target for delivery after unlock. A later call
// replaces an earlier one.
func (m *Manager) SetPendingNavigation(target models.Target) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := target
	m.pending = &t
}

// ConsumePendingNavigation returns the staged target and clears it.
func (m *Manager) ConsumePendingNavigation() (models.Target, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return models.Target{}, false
	}
	t := *m.pending
	m.pending = nil
	return t, true
}
