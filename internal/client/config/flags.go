package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/payslips/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   payroll API base URL
//	-d string   local database path
//	-i int      online check interval (seconds)
//	-o string   download directory for receipt PDFs
//	-t int      receipt type
//	-l string   log level
//
// Only these flags are picked out of args (see flagx.FilterArgs), so -c and
// -e can coexist on the same command line. Panics on malformed values.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-i", "-o", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "payroll API base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DownloadDir, "o", cfg.DownloadDir, "download directory for receipt PDFs")
	fs.IntVar(&cfg.ReceiptType, "t", cfg.ReceiptType, "receipt type")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
