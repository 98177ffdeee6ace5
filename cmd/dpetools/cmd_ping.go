package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/HerbHall/dpetools/internal/config"
)

func runPing(args []string, cfg *config.Config, logger *zap.Logger, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ping", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}

	client, err := newClient(cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "create client: %v\n", err)
		return exitFailure
	}

	if !client.IsReachable(context.Background()) {
		fmt.Fprintf(stdout, "unreachable: %s\n", client.Config().EndpointURL)
		return exitFailure
	}
	fmt.Fprintf(stdout, "reachable: %s\n", client.Config().EndpointURL)
	return exitOK
}
