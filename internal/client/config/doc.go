// Package config loads runtime configuration for the payslips client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A dotenv file: -e/-env, or ./.env when present (github.com/joho/godotenv).
//     Variables already in the environment win over the file.
//  3. PAYSLIPS_* environment variables.
//  4. Optional JSON file selected via -c or -config.
//  5. Command-line flags, which override everything else.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "https://payroll.example.com",
//	  "database_path": "payslips.db",
//	  "online_check_interval": "3s",
//	  "share_bucket": "receipts"
//	}
//
// Share credentials are only read from the environment so they never end
// up in a checked-in JSON file.
package config
