// Package deeplink turns notification payloads into navigation to a receipt.
//
// The routing decision depends on the session:
//
//   - authenticated: navigate now;
//   - stored but locked: stage the target on the session and wait for the
//     presentation layer to Flush it after unlock;
//   - no session at all: navigate now and let the presentation layer hold
//     the target until a fresh login completes.
package deeplink

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/payslips/internal/client/models"
	"github.com/dmitrijs2005/payslips/internal/common"
	"github.com/dmitrijs2005/payslips/internal/logging"
	json "github.com/goccy/go-json"
)

const (
	KeyEmployeeID = "employeeId"
	KeyPeriod     = "period"
	KeyType       = "type"
)

// Sessions is what the router needs from the session manager.
type Sessions interface {
	IsAuthenticated() bool
	HasStoredSession(ctx context.Context) bool
	SetPendingNavigation(target models.Target)
	ConsumePendingNavigation() (models.Target, bool)
}

// Navigator receives navigation events.
type Navigator interface {
	Navigate(ctx context.Context, target models.Target)
}

type Router struct {
	sessions Sessions
	nav      Navigator
	logger   logging.Logger
}

func NewRouter(sessions Sessions, nav Navigator, logger logging.Logger) *Router {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Router{sessions: sessions, nav: nav, logger: logger}
}

// ParsePayload validates a notification payload. It must hold exactly the
// keys employeeId, period and type, each an integer.
func ParsePayload(payload map[string]string) (models.Target, error) {
	if len(payload) != 3 {
		return models.Target{}, fmt.Errorf("%w: payload must have exactly %s, %s and %s, got [%s]",
			common.ErrValidation, KeyEmployeeID, KeyPeriod, KeyType, strings.Join(keys(payload), ", "))
	}

	var t models.Target
	fields := []struct {
		key string
		dst *int
	}{
		{KeyEmployeeID, &t.EmployeeID},
		{KeyPeriod, &t.Period},
		{KeyType, &t.Type},
	}
	for _, f := range fields {
		raw, ok := payload[f.key]
		if !ok {
			return models.Target{}, fmt.Errorf("%w: missing %s", common.ErrValidation, f.key)
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return models.Target{}, fmt.Errorf("%w: %s is not an integer: %q", common.ErrValidation, f.key, raw)
		}
		*f.dst = n
	}
	return t, nil
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Handle routes one notification payload. A malformed payload is logged and
// returned as a validation error; nothing is emitted or staged for it.
func (r *Router) Handle(ctx context.Context, payload map[string]string) error {
	target, err := ParsePayload(payload)
	if err != nil {
		r.logger.Warn(ctx, "ignoring notification", "error", err)
		return err
	}

	switch {
	case r.sessions.IsAuthenticated():
		r.logger.Debug(ctx, "navigating to receipt", "target", target.String())
		r.nav.Navigate(ctx, target)
	case r.sessions.HasStoredSession(ctx):
		r.logger.Debug(ctx, "session locked, deferring navigation", "target", target.String())
		r.sessions.SetPendingNavigation(target)
	default:
		r.logger.Debug(ctx, "no session, navigation staged for after login", "target", target.String())
		r.nav.Navigate(ctx, target)
	}
	return nil
}

// HandleJSON decodes a flat JSON object whose values are strings or numbers
// and routes it like Handle.
func (r *Router) HandleJSON(ctx context.Context, data []byte) error {
	payload, err := decodePayload(data)
	if err != nil {
		r.logger.Warn(ctx, "ignoring notification", "error", err)
		return err
	}
	return r.Handle(ctx, payload)
}

func decodePayload(data []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: payload is not a JSON object: %v", common.ErrValidation, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: payload is null", common.ErrValidation)
	}

	payload := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			payload[k] = val
		case json.Number:
			payload[k] = val.String()
		default:
			return nil, fmt.Errorf("%w: %s has unsupported type %T", common.ErrValidation, k, v)
		}
	}
	return payload, nil
}

// Flush delivers the target staged while the session was locked. The
// presentation layer calls it on the transition to authenticated. It
// reports whether a navigation was emitted.
func (r *Router) Flush(ctx context.Context) bool {
	target, ok := r.sessions.ConsumePendingNavigation()
	if !ok {
		return false
	}
	r.logger.Debug(ctx, "delivering deferred navigation", "target", target.String())
	r.nav.Navigate(ctx, target)
	return true
}
