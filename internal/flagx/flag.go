// Package flagx helps several components parse their own subset of the
// command line without tripping over each other's flags.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs keeps only the allowed flags from args, together with their
// values. Both "-f value" and "-f=value" forms are recognised. A token that
// starts with "-" is never taken as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// lookup parses a single string flag. short may be empty.
func lookup(args []string, short, long, usage string) string {
	var value string

	fs := flag.NewFlagSet(long, flag.ContinueOnError)
	fs.SetOutput(discard{})
	fs.StringVar(&value, long, "", usage)
	names := []string{"-" + long}
	if short != "" {
		fs.StringVar(&value, short, "", usage+" (short)")
		names = append(names, "-"+short)
	}
	_ = fs.Parse(FilterArgs(args, names))

	return value
}

// ConfigFileFlag returns the JSON config path given with -c or -config, or
// an empty string.
func ConfigFileFlag(args []string) string {
	return lookup(args, "c", "config", "path to JSON config file")
}

// EnvFileFlag returns the dotenv path given with -env-file, or an empty
// string.
func EnvFileFlag(args []string) string {
	return lookup(args, "", "env-file", "path to .env file")
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
