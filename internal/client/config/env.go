package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/payslips/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// loadDotEnv copies variables from a dotenv file into the process
// environment without overriding variables that are already set. The file
// is taken from -e/-env, falling back to ./.env when it exists.
func loadDotEnv(args []string) {
	path := flagx.EnvFilePath(args)
	if path == "" {
		if _, err := os.Stat(defaultEnvFile); errors.Is(err, fs.ErrNotExist) {
			return
		}
		path = defaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		panic(err)
	}
}

// parseEnv overlays cfg with PAYSLIPS_* environment variables.
func parseEnv(cfg *Config) {
	envString("PAYSLIPS_API_URL", &cfg.APIBaseURL)
	envString("PAYSLIPS_DB_PATH", &cfg.DatabasePath)
	envString("PAYSLIPS_DEVICE_SECRET", &cfg.DeviceSecret)
	envString("PAYSLIPS_DEVICE_SECRET_FILE", &cfg.DeviceSecretFile)
	envDuration("PAYSLIPS_REQUEST_TIMEOUT", &cfg.RequestTimeout)
	envDuration("PAYSLIPS_ONLINE_CHECK_INTERVAL", &cfg.OnlineCheckInterval)
	envDuration("PAYSLIPS_PUSH_TIMEOUT", &cfg.PushRegistrationTimeout)
	envString("PAYSLIPS_DOWNLOAD_DIR", &cfg.DownloadDir)
	envInt("PAYSLIPS_RECEIPT_TYPE", &cfg.ReceiptType)
	envString("PAYSLIPS_LOG_LEVEL", &cfg.LogLevel)

	envString("PAYSLIPS_SHARE_BUCKET", &cfg.ShareBucket)
	envString("PAYSLIPS_SHARE_REGION", &cfg.ShareRegion)
	envString("PAYSLIPS_SHARE_ENDPOINT", &cfg.ShareEndpoint)
	envString("PAYSLIPS_SHARE_ACCESS_KEY", &cfg.ShareAccessKey)
	envString("PAYSLIPS_SHARE_SECRET_KEY", &cfg.ShareSecretKey)
	envDuration("PAYSLIPS_SHARE_LINK_TTL", &cfg.ShareLinkTTL)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envDuration(key string, dst *time.Duration) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}

func envInt(key string, dst *int) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(err)
	}
	*dst = n
}
