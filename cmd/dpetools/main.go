package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/HerbHall/dpetools/internal/config"
	"github.com/HerbHall/dpetools/internal/dpe"
	"github.com/HerbHall/dpetools/internal/version"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitCallerFault = 2
	exitOperational = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: dpetools [-config file] [-debug] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  fetch     fetch DPE records and print or export them")
	fmt.Fprintln(w, "  ping      check whether the DPE endpoint is reachable")
	fmt.Fprintln(w, "  version   print version information")
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dpetools", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to configuration file")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() { usage(stderr) }
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}
	if fs.NArg() == 0 {
		usage(stderr)
		return exitFailure
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if cmd == "version" {
		fmt.Fprintln(stdout, version.Info())
		return exitOK
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "load configuration: %v\n", err)
		return exitFailure
	}

	logger, err := newLogger(*debug || cfg.Debug())
	if err != nil {
		fmt.Fprintf(stderr, "init logger: %v\n", err)
		return exitFailure
	}
	defer logger.Sync()

	switch cmd {
	case "fetch":
		return runFetch(rest, cfg, logger, stdout, stderr)
	case "ping":
		return runPing(rest, cfg, logger, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		usage(stderr)
		return exitFailure
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newClient builds a client from configuration, with the HTTP transport
// and any extra options.
func newClient(cfg *config.Config, logger *zap.Logger, opts ...dpe.Option) (*dpe.Client, error) {
	clientCfg, err := cfg.Client()
	if err != nil {
		return nil, err
	}
	tc, err := cfg.Transport()
	if err != nil {
		return nil, err
	}
	ua := tc.UserAgent
	if ua == "" {
		ua = version.UserAgent()
	}
	transport := dpe.NewHTTPTransport(
		dpe.WithUserAgent(ua),
		dpe.WithRateLimit(tc.RequestsPerSecond),
		dpe.WithTransportLogger(logger.Named("http")),
	)
	opts = append([]dpe.Option{dpe.WithLogger(logger.Named("dpe"))}, opts...)
	return dpe.New(clientCfg, transport, opts...)
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	kind, ok := dpe.KindOf(err)
	if !ok {
		return exitFailure
	}
	if kind.CallerFault() {
		return exitCallerFault
	}
	return exitOperational
}

func report(stderr io.Writer, err error) int {
	var ce *dpe.ClassifiedError
	if errors.As(err, &ce) && ce.Kind == dpe.KindBadRequest {
		fmt.Fprintf(stderr, "the server rejected the request: %s\n", ce.Detail)
	} else {
		fmt.Fprintf(stderr, "%v\n", err)
	}
	return exitCode(err)
}
