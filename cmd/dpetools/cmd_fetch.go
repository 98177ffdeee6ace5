package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/HerbHall/dpetools/internal/config"
	"github.com/HerbHall/dpetools/internal/dpe"
	"github.com/HerbHall/dpetools/internal/export"
	"github.com/HerbHall/dpetools/internal/store"
)

func runFetch(args []string, cfg *config.Config, logger *zap.Logger, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	limit := fs.String("limit", "", "number of records to fetch (default from configuration)")
	sortField := fs.String("sort", "", "field to sort on (default from configuration)")
	desc := fs.Bool("desc", false, "sort in descending order")
	selectCols := fs.String("select", "", "comma-separated list of columns to return")
	filter := fs.String("filter", "", "data-fair query string filter, e.g. etiquette_dpe:A")
	format := fs.String("format", "csv", "output format: csv, json or yaml")
	sqlitePath := fs.String("sqlite", "", "write records to this SQLite database instead of stdout")
	tableName := fs.String("table", "dpe", "table name used with -sqlite")
	metricsFile := fs.String("metrics-file", "", "write Prometheus metrics to this textfile after the fetch")

	if err := fs.Parse(args); err != nil {
		return exitFailure
	}

	var opts []dpe.QueryOption
	if *limit != "" {
		n, err := dpe.ParseLimit(*limit)
		if err != nil {
			return report(stderr, err)
		}
		opts = append(opts, dpe.WithLimit(n))
	}
	dir := dpe.Ascending
	if *desc {
		dir = dpe.Descending
	}
	opts = append(opts, dpe.WithSort(*sortField, dir))
	if *selectCols != "" {
		opts = append(opts, dpe.WithSelect(strings.Split(*selectCols, ",")...))
	}
	if *filter != "" {
		opts = append(opts, dpe.WithFilter(*filter))
	}

	outFormat, err := export.ParseFormat(*format)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}

	reg := prometheus.NewRegistry()
	client, err := newClient(cfg, logger, dpe.WithMetrics(dpe.NewMetrics(reg)))
	if err != nil {
		fmt.Fprintf(stderr, "create client: %v\n", err)
		return exitFailure
	}

	ctx := context.Background()
	table, fetchErr := client.Fetch(ctx, opts...)

	if *metricsFile != "" {
		if err := prometheus.WriteToTextfile(*metricsFile, reg); err != nil {
			logger.Error("failed to write metrics", zap.String("path", *metricsFile), zap.Error(err))
		}
	}
	if fetchErr != nil {
		return report(stderr, fetchErr)
	}

	if *sqlitePath != "" {
		return saveSQLite(ctx, *sqlitePath, *tableName, table, logger, stdout, stderr)
	}

	if err := export.Write(stdout, outFormat, table); err != nil {
		fmt.Fprintf(stderr, "write output: %v\n", err)
		return exitFailure
	}
	return exitOK
}

func saveSQLite(ctx context.Context, path, name string, table *dpe.RecordTable, logger *zap.Logger, stdout, stderr io.Writer) int {
	db, err := store.New(path)
	if err != nil {
		fmt.Fprintf(stderr, "open database: %v\n", err)
		return exitFailure
	}
	defer db.Close()

	n, err := db.SaveTable(ctx, name, table)
	if err != nil {
		fmt.Fprintf(stderr, "save records: %v\n", err)
		return exitFailure
	}
	logger.Info("records exported", zap.String("path", path), zap.String("table", name), zap.Int("rows", n))
	fmt.Fprintf(stdout, "Saved %d records to %s (table %s)\n", n, path, name)
	return exitOK
}
