package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

const (
	ModeAPI    = "api-server"
	ModeWorker = "kitchen-worker"
)

// isKnownMode checks if the provided mode name is known.
func isKnownMode(s string) (string, bool) {
	switch s {
	case ModeAPI, "api", "server":
		return ModeAPI, true
	case ModeWorker, "worker", "kitchen":
		return ModeWorker, true
	default:
		return "", false
	}
}

// ParseMode supports:
//
//	--mode=<value>
//	<value> (subcommand shorthand), e.g., `api-server --port=3001`
func ParseMode(args []string) (string, []string, error) {
	var mode string
	var out []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "--mode=") {
			mode = strings.TrimPrefix(arg, "--mode=")
			continue
		}

		if mode == "" {
			if m, ok := isKnownMode(arg); ok {
				mode = m
				continue
			}
		}
		out = append(out, arg)
	}

	if mode == "" {
		return "", out, nil
	}

	if m, ok := isKnownMode(mode); ok {
		return m, out, nil
	}
	return "", out, fmt.Errorf("unknown mode %q", mode)
}

// PrintUsage prints the usage information with examples.
func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage:
  ./sandwich-store --mode=<service> [flags]

Services (modes):
  api-server        HTTP API for accounts, catalog, and orders
  kitchen-worker    RabbitMQ consumer that prepares orders

Examples:
  ./sandwich-store --mode=api-server --port=8000
  ./sandwich-store --mode=kitchen-worker`)
}

func AttachUsage(fs *flag.FlagSet, mode string) {
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: ./sandwich-store --mode=%s [flags]\n", mode)
		fs.PrintDefaults()
	}
}
