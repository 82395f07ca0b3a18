package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/payslips/internal/client/session"
	"github.com/dmitrijs2005/payslips/internal/client/share"
)

// nowFn is a test seam for the default year of 'list'.
var nowFn = time.Now

type usageError string

func (e usageError) Error() string { return "usage: " + string(e) }

func parsePeriod(args []string, usage string) (int, error) {
	if len(args) != 1 {
		return 0, usageError(usage)
	}
	p, err := strconv.Atoi(args[0])
	if err != nil || p <= 0 {
		return 0, usageError(usage)
	}
	return p, nil
}

// List prints the receipts paid in the given year (default: current year,
// "all" for every year), newest period first.
func (a *App) List(ctx context.Context, args []string) error {
	year := strconv.Itoa(nowFn().Year())
	switch {
	case len(args) > 1:
		return usageError("list [year|all]")
	case len(args) == 1 && args[0] == "all":
		year = ""
	case len(args) == 1:
		if _, err := strconv.Atoi(args[0]); err != nil || len(args[0]) != 4 {
			return usageError("list [year|all]")
		}
		year = args[0]
	}

	rs, err := a.receipts.List(ctx, year)
	if err != nil {
		return err
	}
	if len(rs) == 0 {
		a.printf("No receipts found.\n")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "PERIOD\tLABEL\tPAID\tEARNINGS\tBENEFITS\tDEDUCTIONS\tNET\t")
	for _, r := range rs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t\n",
			r.Period, r.PeriodLabel(), r.PaymentDate, r.Earnings, r.Benefits, r.Deductions, r.NetPay)
	}
	return tw.Flush()
}

// Open downloads the PDF of one period.
func (a *App) Open(ctx context.Context, args []string) error {
	period, err := parsePeriod(args, "open <period>")
	if err != nil {
		return err
	}
	target, err := a.receipts.Target(period)
	if err != nil {
		return err
	}
	return a.openReceipt(ctx, target)
}

// Share uploads the PDF of one period and prints a temporary link to it.
func (a *App) Share(ctx context.Context, args []string) error {
	period, err := parsePeriod(args, "share <period>")
	if err != nil {
		return err
	}
	if a.share == nil {
		return share.ErrNotConfigured
	}

	target, err := a.receipts.Target(period)
	if err != nil {
		return err
	}
	pdf, err := a.receipts.FetchPDF(ctx, target)
	if err != nil {
		return err
	}

	link, err := a.share.Share(ctx, target, pdf)
	if err != nil {
		return err
	}
	a.printf("Link (valid for %s):\n%s\n", a.config.ShareLinkTTL, link)
	return nil
}

// Notify feeds a push-notification payload to the deep-link router, as if
// the notification had been tapped. The JSON may be given inline or pasted.
func (a *App) Notify(ctx context.Context, args []string) error {
	payload := strings.Join(args, " ")
	if payload == "" {
		var err error
		payload, err = GetMultiline(a.reader, `Paste the notification payload, e.g. {"employeeId":"123","period":"202501","type":"1"}`, a.out)
		if err != nil {
			return err
		}
	}

	if err := a.router.HandleJSON(ctx, []byte(payload)); err != nil {
		return err
	}

	if !a.sessions.IsAuthenticated() && a.sessions.HasStoredSession(ctx) {
		a.printf("Notification received. Unlock to open it.\n")
	}
	return nil
}

func (a *App) Profile(ctx context.Context) error {
	token, err := a.sessions.Token(ctx)
	if err != nil {
		return err
	}
	u := a.sessions.User()
	if u == nil {
		return session.ErrNotAuthenticated
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s (%s)\n", u.FullName(), u.Initials())
	fmt.Fprintf(tw, "Employee:\t%d\n", u.ID)
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	fmt.Fprintf(tw, "RFC:\t%s\n", u.RFC)
	fmt.Fprintf(tw, "CURP:\t%s\n", u.CURP)
	fmt.Fprintf(tw, "Category:\t%d\n", u.Category)
	if exp, ok := session.TokenExpiry(token); ok {
		fmt.Fprintf(tw, "Session expires:\t%s\n", exp.Local().Format(time.RFC1123))
	}
	return tw.Flush()
}

// RotatePushToken issues a new push installation token and registers it
// for the stored session.
func (a *App) RotatePushToken(ctx context.Context) error {
	if _, err := a.push.Rotate(ctx); err != nil {
		return err
	}
	if err := a.sessions.RegisterPushToken(ctx); err != nil {
		return err
	}
	a.printf("Push token rotated.\n")
	return nil
}
