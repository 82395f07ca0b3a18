package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/payslips/internal/client/config"
	"github.com/dmitrijs2005/payslips/internal/client/deeplink"
	"github.com/dmitrijs2005/payslips/internal/client/models"
	"github.com/dmitrijs2005/payslips/internal/client/receipts"
	"github.com/dmitrijs2005/payslips/internal/client/session"
	"github.com/dmitrijs2005/payslips/internal/client/share"
	"github.com/dmitrijs2005/payslips/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

// Sessions is the session manager as seen by the presentation layer.
type Sessions interface {
	deeplink.Sessions
	Login(ctx context.Context, email, password string) error
	UnlockWithBiometrics(ctx context.Context) error
	CanUseBiometrics(ctx context.Context) bool
	Logout(ctx context.Context) error
	Snapshot() session.Snapshot
	User() *models.Employee
	Token(ctx context.Context) (string, error)
	Watch(fn func(session.Snapshot)) (cancel func())
	RegisterPushToken(ctx context.Context) error
}

type PINEnroller interface {
	Enroll(ctx context.Context, pin []byte) error
	Enrolled(ctx context.Context) bool
}

type PushRotator interface {
	Rotate(ctx context.Context) (string, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Config   *config.Config
	Sessions Sessions
	Receipts receipts.Service
	// Share is nil when no bucket is configured.
	Share  share.Service
	PIN    PINEnroller
	Push   PushRotator
	Pinger Pinger
	Logger logging.Logger
	In     io.Reader
	Out    io.Writer
}

type App struct {
	config   *config.Config
	sessions Sessions
	router   *deeplink.Router
	receipts receipts.Service
	share    share.Service
	pin      PINEnroller
	push     PushRotator
	pinger   Pinger
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer
	unwatch  func()

	mu        sync.Mutex
	Mode      Mode
	lastState session.State
	held      *models.Target
}

// NewApp wires the presentation layer to the session: it owns the deep-link
// router (the App is its navigator) and watches session transitions.
func NewApp(d Deps) *App {
	a := &App{
		config:   d.Config,
		sessions: d.Sessions,
		receipts: d.Receipts,
		share:    d.Share,
		pin:      d.PIN,
		push:     d.Push,
		pinger:   d.Pinger,
		logger:   d.Logger,
		out:      d.Out,
	}
	if a.logger == nil {
		a.logger = logging.NewNopLogger()
	}
	if a.out == nil {
		a.out = os.Stdout
	}
	in := d.In
	if in == nil {
		in = os.Stdin
	}
	a.reader = bufio.NewReader(in)

	a.router = deeplink.NewRouter(d.Sessions, a, a.logger)
	a.lastState = d.Sessions.Snapshot().State
	a.unwatch = d.Sessions.Watch(a.onSessionChange)
	return a
}

// Router exposes the deep-link router so notification sources outside the
// REPL can feed it.
func (a *App) Router() *deeplink.Router {
	return a.router
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "switched mode", "mode", string(mode))
	}
}

func (a *App) mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode
}

func (a *App) isLoggedIn() bool {
	return a.sessions.IsAuthenticated()
}

// onSessionChange delivers deferred navigation on the transition into
// Authenticated: first the target staged on the session while it was
// locked, otherwise one held here because it arrived with no session.
func (a *App) onSessionChange(s session.Snapshot) {
	a.mu.Lock()
	prev := a.lastState
	a.lastState = s.State
	var held *models.Target
	if s.State == session.Authenticated && prev != session.Authenticated {
		held, a.held = a.held, nil
	}
	if s.State == session.LoggedOut && prev != session.LoggedOut {
		a.held = nil
	}
	a.mu.Unlock()

	if s.State != session.Authenticated || prev == session.Authenticated {
		return
	}

	ctx := context.Background()
	if a.router.Flush(ctx) {
		return
	}
	if held != nil {
		a.Navigate(ctx, *held)
	}
}

// Navigate implements deeplink.Navigator. Without an unlocked session the
// target is held until the next login completes.
func (a *App) Navigate(ctx context.Context, target models.Target) {
	if !a.sessions.IsAuthenticated() {
		t := target
		a.mu.Lock()
		a.held = &t
		a.mu.Unlock()
		a.printf("Receipt for period %d is waiting. Log in to open it.\n", target.Period)
		return
	}

	if err := a.openReceipt(ctx, target); err != nil {
		a.printf("Could not open receipt: %s\n", userMessage(err))
	}
}

func (a *App) openReceipt(ctx context.Context, target models.Target) error {
	path, err := a.receipts.Download(ctx, target)
	if err != nil {
		return err
	}
	a.printf("Receipt for period %d saved to %s\n", target.Period, path)
	return nil
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := a.pinger.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the backend every interval and flips Mode
// between online and offline. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// offerUnlock runs the quick unlock straight away when a stored session can
// use it.
func (a *App) offerUnlock(ctx context.Context) {
	if !a.sessions.CanUseBiometrics(ctx) {
		if a.sessions.HasStoredSession(ctx) {
			a.printf("Session locked. Use 'login' to sign in again.\n")
		}
		return
	}
	if err := a.Unlock(ctx); err != nil {
		a.printf("%s\n", userMessage(err))
	}
}

// Run shows the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Payslips CLI (type 'help' for commands)")

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(watchCtx, a.config.OnlineCheckInterval)

	a.offerUnlock(ctx)
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() {
	if a.unwatch != nil {
		a.unwatch()
		a.unwatch = nil
	}
}

func (a *App) getStatus() string {
	s := ""
	if u := a.sessions.User(); u != nil {
		s = u.FullName() + " "
	}
	s += a.sessions.Snapshot().State.String()
	if m := a.mode(); m != "" {
		s += " " + string(m)
	}
	return fmt.Sprintf("(%s)", s)
}
