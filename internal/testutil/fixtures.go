package testutil

import (
	"fmt"
	"time"
)

// NewRecord returns a DPE result line with sensible defaults, suitable for
// test fixtures. Override individual fields with options.
func NewRecord(opts ...func(map[string]any)) map[string]any {
	r := map[string]any{
		"numero_dpe":             "2369E0000000A",
		"date_etablissement_dpe": "2024-01-01",
		"etiquette_dpe":          "D",
		"conso_5_usages_ep":      182.4,
		"code_postal_ban":        "69003",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithNumero sets the DPE number.
func WithNumero(n string) func(map[string]any) {
	return func(r map[string]any) { r["numero_dpe"] = n }
}

// WithDate sets the establishment date.
func WithDate(t time.Time) func(map[string]any) {
	return func(r map[string]any) { r["date_etablissement_dpe"] = t.Format("2006-01-02") }
}

// WithLabel sets the energy label (A-G).
func WithLabel(label string) func(map[string]any) {
	return func(r map[string]any) { r["etiquette_dpe"] = label }
}

// NewRecords returns n records with distinct numbers and dates spread over
// n days from 2024-01-01, in a deterministic but unsorted order.
func NewRecords(n int) []map[string]any {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]map[string]any, n)
	for i := range n {
		day := (i * 7) % n
		out[i] = NewRecord(
			WithNumero(fmt.Sprintf("2369E%08dA", i)),
			WithDate(base.AddDate(0, 0, day)),
		)
	}
	return out
}
