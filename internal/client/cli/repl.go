package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Unlock(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Open(ctx context.Context, args []string) error
	Share(ctx context.Context, args []string) error
	Notify(ctx context.Context, args []string) error
	SetPIN(ctx context.Context) error
	Profile(ctx context.Context) error
	RotatePushToken(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the payslips CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help               show available commands
//	  - login              sign in with email and password
//	  - unlock             unlock the stored session with the device PIN
//	  - notify [json]      deliver a notification payload
//	  - exit | quit        leave the program
//
//	Logged in:
//	  - (l)ist [year|all]  list receipts
//	  - open <period>      download a receipt PDF
//	  - share <period>     upload a receipt and print a temporary link
//	  - notify [json]      deliver a notification payload
//	  - profile            show the employee profile
//	  - setpin             set the unlock PIN
//	  - pushtoken          rotate and re-register the push token
//	  - logout             log out and forget the stored session
//	  - exit | quit        leave the program
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("payslips %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist [year|all], open <period>, share <period>, notify [json], profile, setpin, pushtoken, logout, exit")
			} else {
				printlnFn("Available commands: login, unlock, notify [json], exit")
			}

		case "login":
			cmdErr = a.Login(ctx)

		case "unlock":
			cmdErr = a.Unlock(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "l", "list":
			cmdErr = a.List(ctx, args)

		case "open", "pdf", "show":
			cmdErr = a.Open(ctx, args)

		case "share":
			cmdErr = a.Share(ctx, args)

		case "notify":
			cmdErr = a.Notify(ctx, args)

		case "setpin":
			cmdErr = a.SetPIN(ctx)

		case "profile":
			cmdErr = a.Profile(ctx)

		case "pushtoken":
			cmdErr = a.RotatePushToken(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", userMessage(cmdErr))
		}
	}
}
