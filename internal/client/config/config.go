package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the payslips client.
//
// Fields:
//   - APIBaseURL: scheme://host of the payroll backend.
//   - DatabasePath: local SQLite file holding the encrypted token and profile.
//   - DeviceSecret: secret the token encryption key is derived from. Empty
//     means a random secret kept in DeviceSecretFile.
//   - RequestTimeout: per-request HTTP timeout.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - PushRegistrationTimeout: budget of the background push-token upload.
//   - DownloadDir: where fetched receipt PDFs are written.
//   - ReceiptType: payroll type used when listing receipts.
//   - LogLevel: debug, info, warn or error.
//   - Share*: S3-compatible storage used to publish receipt links.
type Config struct {
	APIBaseURL              string
	DatabasePath            string
	DeviceSecret            string
	DeviceSecretFile        string
	RequestTimeout          time.Duration
	OnlineCheckInterval     time.Duration
	PushRegistrationTimeout time.Duration
	DownloadDir             string
	ReceiptType             int
	LogLevel                string

	ShareBucket    string
	ShareRegion    string
	ShareEndpoint  string
	ShareAccessKey string
	ShareSecretKey string
	ShareLinkTTL   time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "https://juventudbc.com.mx"
	c.DatabasePath = "payslips.db"
	c.DeviceSecretFile = "payslips.key"
	c.RequestTimeout = 15 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.PushRegistrationTimeout = 10 * time.Second
	c.DownloadDir = "receipts"
	c.ReceiptType = 1
	c.LogLevel = "info"
	c.ShareRegion = "us-east-1"
	c.ShareLinkTTL = 15 * time.Minute
}

// ShareEnabled reports whether enough S3 settings are present to publish links.
func (c *Config) ShareEnabled() bool {
	return c.ShareBucket != ""
}

// LoadConfig constructs a Config, applies defaults, then overlays a dotenv
// file, environment variables, JSON (if present) and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	loadDotEnv(args)
	parseEnv(cfg)
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
