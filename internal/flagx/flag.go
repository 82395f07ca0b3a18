package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs keeps only the allowed flags of args, with their values, so
// that several independent flag sets can read the same command line. A flag
// may carry its value as "-f=value" or as the next argument; the next
// argument is taken as the value unless it starts with "-". Parsing stops at
// "--".
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]bool, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = true
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if allowed[name] {
				filtered = append(filtered, arg)
			}
			continue
		}

		if !allowed[arg] {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			filtered = append(filtered, args[i])
		}
	}
	return filtered
}

// LookupString parses only the given flag names out of args and returns the
// last value supplied for any of them, or "" when none is present. Other
// arguments are ignored, so callers can pick out their own flags without
// defining the rest of the command line.
func LookupString(args []string, names ...string) string {
	var value string

	allowed := make([]string, 0, len(names))
	for _, n := range names {
		allowed = append(allowed, "-"+n, "--"+n)
	}

	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	for _, n := range names {
		fs.StringVar(&value, n, "", "")
	}
	_ = fs.Parse(FilterArgs(args, allowed))

	return value
}

// ConfigFilePath returns the JSON config path given via -c or -config.
func ConfigFilePath(args []string) string {
	return LookupString(args, "c", "config")
}

// EnvFilePath returns the dotenv file path given via -e or -env.
func EnvFilePath(args []string) string {
	return LookupString(args, "e", "env")
}
