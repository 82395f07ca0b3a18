// Package cli provides the interactive payslips command-line client.
//
// It is the presentation layer of the session: it renders session state in
// the prompt, gates receipt navigation on authentication, and delivers a
// notification target staged while the session was locked once it unlocks.
// A background watcher pings the backend and switches the prompt between
// online and offline.
//
// Key features:
//   - Login / Unlock (local PIN) / Logout
//   - List receipts by year, open (download) and share a receipt PDF
//   - Feed a push-notification payload (notify) to the deep-link router
//   - Profile view and push token rotation
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
