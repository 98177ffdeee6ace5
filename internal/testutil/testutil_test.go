package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestLogger_DebugEnabled(t *testing.T) {
	l := Logger(t)
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if !l.Core().Enabled(zap.DebugLevel) {
		t.Error("debug level not enabled")
	}
	l.Debug("written through t.Log")
}

func TestMockTransport_RecordsCalls(t *testing.T) {
	tr := NewMockTransport(http.StatusOK, `{"results":[]}`)

	params := url.Values{"size": {"5"}}
	resp, err := tr.Get(context.Background(), "https://example.test/lines", params, 3*time.Second)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}

	params.Set("size", "99")

	calls := tr.Calls()
	if len(calls) != 1 {
		t.Fatalf("Calls len = %d, want 1", len(calls))
	}
	if got := calls[0].Params.Get("size"); got != "5" {
		t.Errorf("recorded size = %q, want 5 (params must be copied)", got)
	}
	if calls[0].Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", calls[0].Timeout)
	}
}

func TestEmptyTransport(t *testing.T) {
	tr := NewEmptyTransport()
	resp, err := tr.Get(context.Background(), "x", nil, 0)
	if resp != nil || err != nil {
		t.Fatalf("Get() = %v, %v, want nil, nil", resp, err)
	}
	if len(tr.Calls()) != 1 {
		t.Errorf("Calls len = %d, want 1", len(tr.Calls()))
	}
}

func TestFailingTransport(t *testing.T) {
	want := errors.New("boom")
	tr := NewFailingTransport(want)
	if _, err := tr.Get(context.Background(), "x", nil, 0); !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
	if len(tr.Calls()) != 1 {
		t.Errorf("Calls len = %d, want 1", len(tr.Calls()))
	}
}

func TestNewRecord_WithOptions(t *testing.T) {
	r := NewRecord(WithNumero("X1"), WithLabel("A"))
	if r["numero_dpe"] != "X1" {
		t.Errorf("numero_dpe = %v, want X1", r["numero_dpe"])
	}
	if r["etiquette_dpe"] != "A" {
		t.Errorf("etiquette_dpe = %v, want A", r["etiquette_dpe"])
	}
}

func getJSON(t *testing.T, rawURL string) (int, map[string]any, string) {
	t.Helper()
	resp, err := http.Get(rawURL)
	if err != nil {
		t.Fatalf("GET %s: %v", rawURL, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil, string(body)
	}
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode, out, string(body)
}

func TestDPEServer_SizeAndSort(t *testing.T) {
	srv := NewDPEServer(t, NewRecords(20))

	status, body, _ := getJSON(t, srv.URL+"?size=5&sort=-date_etablissement_dpe")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	results := body["results"].([]any)
	if len(results) != 5 {
		t.Fatalf("results = %d, want 5", len(results))
	}
	prev := "9999"
	for _, r := range results {
		d := r.(map[string]any)["date_etablissement_dpe"].(string)
		if d > prev {
			t.Errorf("dates not descending: %s after %s", d, prev)
		}
		prev = d
	}
	if srv.Requests() != 1 {
		t.Errorf("Requests = %d, want 1", srv.Requests())
	}
}

func TestDPEServer_UnknownSortField(t *testing.T) {
	srv := NewDPEServer(t, NewRecords(3))

	status, _, text := getJSON(t, srv.URL+"?sort=nonexistent_field")
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if text == "" {
		t.Error("expected an error message body")
	}
}

func TestDPEServer_Select(t *testing.T) {
	srv := NewDPEServer(t, NewRecords(3))

	_, body, _ := getJSON(t, srv.URL+"?select=numero_dpe,etiquette_dpe")
	for _, r := range body["results"].([]any) {
		rec := r.(map[string]any)
		if len(rec) != 2 {
			t.Errorf("record has %d fields, want 2: %v", len(rec), rec)
		}
	}
}
