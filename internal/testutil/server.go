package testutil

import (
	"cmp"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
)

// DPEServer is an httptest server imitating the data-fair lines endpoint.
// It honours size, sort, select and simple field:value filters, and answers
// 400 for unknown fields the way the real endpoint does.
type DPEServer struct {
	*httptest.Server
	records  []map[string]any
	requests atomic.Int64
}

// NewDPEServer starts a server over records. It is closed when the test ends.
func NewDPEServer(t *testing.T, records []map[string]any) *DPEServer {
	t.Helper()
	s := &DPEServer{records: records}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Requests returns the number of requests served.
func (s *DPEServer) Requests() int64 {
	return s.requests.Load()
}

func (s *DPEServer) handle(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)
	q := r.URL.Query()

	size := 12
	if raw := q.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(w, fmt.Sprintf("size doit être un entier positif, reçu %q", raw))
			return
		}
		size = n
	}

	rows := slices.Clone(s.records)

	if qs := q.Get("qs"); qs != "" {
		field, value, ok := strings.Cut(qs, ":")
		if !ok || !s.known(field) {
			badRequest(w, fmt.Sprintf("Impossible d'interpréter le filtre %q", qs))
			return
		}
		rows = slices.DeleteFunc(rows, func(rec map[string]any) bool {
			return fmt.Sprint(rec[field]) != value
		})
	}

	if sortParam := q.Get("sort"); sortParam != "" {
		field := strings.TrimPrefix(sortParam, "-")
		desc := field != sortParam
		if !s.known(field) {
			badRequest(w, fmt.Sprintf("Impossible de trier sur le champ %s, il n'existe pas dans le jeu de données.", field))
			return
		}
		slices.SortStableFunc(rows, func(a, b map[string]any) int {
			c := compareValues(a[field], b[field])
			if desc {
				return -c
			}
			return c
		})
	}

	if sel := q.Get("select"); sel != "" {
		fields := strings.Split(sel, ",")
		for _, f := range fields {
			if !s.known(f) {
				badRequest(w, fmt.Sprintf("Colonne inconnue dans select : %s", f))
				return
			}
		}
		projected := make([]map[string]any, len(rows))
		for i, rec := range rows {
			p := make(map[string]any, len(fields))
			for _, f := range fields {
				if v, ok := rec[f]; ok {
					p[f] = v
				}
			}
			projected[i] = p
		}
		rows = projected
	}

	total := len(rows)
	if size < len(rows) {
		rows = rows[:size]
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"total":   total,
		"results": rows,
	})
}

func (s *DPEServer) known(field string) bool {
	for _, rec := range s.records {
		if _, ok := rec[field]; ok {
			return true
		}
	}
	return false
}

func badRequest(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = w.Write([]byte(msg))
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			return cmp.Compare(av, bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
