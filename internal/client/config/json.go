package config

import (
	"os"

	"github.com/dmitrijs2005/payslips/internal/flagx"
	"github.com/dmitrijs2005/payslips/internal/timex"
	json "github.com/goccy/go-json"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent
// fields leave the corresponding Config value untouched.
type JsonConfig struct {
	APIBaseURL              string          `json:"api_base_url"`
	DatabasePath            string          `json:"database_path"`
	DeviceSecretFile        string          `json:"device_secret_file"`
	RequestTimeout          *timex.Duration `json:"request_timeout"`
	OnlineCheckInterval     *timex.Duration `json:"online_check_interval"`
	PushRegistrationTimeout *timex.Duration `json:"push_registration_timeout"`
	DownloadDir             string          `json:"download_dir"`
	ReceiptType             *int            `json:"receipt_type"`
	LogLevel                string          `json:"log_level"`

	ShareBucket   string          `json:"share_bucket"`
	ShareRegion   string          `json:"share_region"`
	ShareEndpoint string          `json:"share_endpoint"`
	ShareLinkTTL  *timex.Duration `json:"share_link_ttl"`
}

// parseJson overlays cfg with values loaded from the JSON file named by
// -c/-config. Panics on read or unmarshal errors.
func parseJson(cfg *Config, args []string) {
	jsonConfigFile := flagx.ConfigFilePath(args)
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.DeviceSecretFile, jc.DeviceSecretFile)
	setString(&cfg.DownloadDir, jc.DownloadDir)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.ShareBucket, jc.ShareBucket)
	setString(&cfg.ShareRegion, jc.ShareRegion)
	setString(&cfg.ShareEndpoint, jc.ShareEndpoint)

	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.PushRegistrationTimeout != nil {
		cfg.PushRegistrationTimeout = jc.PushRegistrationTimeout.Duration
	}
	if jc.ShareLinkTTL != nil {
		cfg.ShareLinkTTL = jc.ShareLinkTTL.Duration
	}
	if jc.ReceiptType != nil {
		cfg.ReceiptType = *jc.ReceiptType
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
