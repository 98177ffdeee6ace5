package dpe_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/HerbHall/dpetools/internal/dpe"
	"github.com/HerbHall/dpetools/internal/testutil"
)

func TestMetrics_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := dpe.NewMetrics(reg)

	cfg := dpe.DefaultConfig()
	ok, err := dpe.New(cfg, testutil.NewMockTransport(http.StatusOK, `{"results":[]}`), dpe.WithMetrics(m))
	if err != nil {
		t.Fatal(err)
	}
	bad, err := dpe.New(cfg, testutil.NewMockTransport(http.StatusBadRequest, "nope"), dpe.WithMetrics(m))
	if err != nil {
		t.Fatal(err)
	}
	down, err := dpe.New(cfg, testutil.NewFailingTransport(errors.New("down")), dpe.WithMetrics(m))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	_, _ = ok.Fetch(ctx)
	_, _ = ok.Fetch(ctx, dpe.WithLimit(0))
	_, _ = bad.Fetch(ctx)
	_, _ = down.Fetch(ctx)
	ok.IsReachable(ctx)
	down.IsReachable(ctx)

	tests := []struct {
		op, outcome string
		want        float64
	}{
		{"fetch", "ok", 1},
		{"fetch", "invalid_limit", 1},
		{"fetch", "bad_request", 1},
		{"fetch", "transport_error", 1},
		{"probe", "ok", 1},
		{"probe", "transport_error", 1},
	}
	for _, tt := range tests {
		got := counterValue(t, reg, tt.op, tt.outcome)
		if got != tt.want {
			t.Errorf("requests_total{%s,%s} = %v, want %v", tt.op, tt.outcome, got, tt.want)
		}
	}

	n, err := promtest.GatherAndCount(reg, "dpetools_request_duration_seconds")
	if err != nil {
		t.Fatalf("GatherAndCount() error = %v", err)
	}
	if n != 2 {
		t.Errorf("duration series = %d, want 2 (fetch, probe)", n)
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, op, outcome string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "dpetools_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["operation"] == op && labels["outcome"] == outcome {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestMetrics_NilIsNoop(t *testing.T) {
	c, err := dpe.New(dpe.DefaultConfig(), testutil.NewMockTransport(http.StatusOK, `{"results":[]}`), dpe.WithMetrics(nil))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
}
