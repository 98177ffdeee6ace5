package dpe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Record is one DPE line: field name to scalar value. Numbers decode as
// json.Number so large identifiers keep their exact text.
type Record map[string]any

// RecordTable is an ordered set of records with a fixed column list.
type RecordTable struct {
	columns []string
	records []Record
}

// NewRecordTable builds a table from records. Columns are the union of the
// records' fields: those named in columnOrder first, in that order.
func NewRecordTable(records []Record, columnOrder []string) *RecordTable {
	seen := make(map[string]struct{})
	var cols []string
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		cols = append(cols, name)
	}
	for _, c := range columnOrder {
		add(c)
	}
	for _, r := range records {
		// Fields missing from columnOrder follow in sorted order.
		for _, k := range slices.Sorted(maps.Keys(r)) {
			add(k)
		}
	}
	if records == nil {
		records = []Record{}
	}
	return &RecordTable{columns: cols, records: records}
}

// Len returns the number of records.
func (t *RecordTable) Len() int { return len(t.records) }

// Columns returns a copy of the column names.
func (t *RecordTable) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether any record carries the field.
func (t *RecordTable) HasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// Records returns the records in server order.
func (t *RecordTable) Records() []Record { return t.records }

// Column returns the values of one field, nil where a record lacks it.
func (t *RecordTable) Column(name string) []any {
	out := make([]any, len(t.records))
	for i, r := range t.records {
		out[i] = r[name]
	}
	return out
}

// decodeResults extracts the results array from a data-fair response body,
// keeping the field order of the first record that introduces each field.
func decodeResults(body []byte) (*RecordTable, error) {
	var envelope struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if envelope.Results == nil {
		return nil, errors.New("decode response: missing results array")
	}

	records := make([]Record, 0, len(envelope.Results))
	var order []string
	seen := make(map[string]struct{})
	for i, raw := range envelope.Results {
		rec, keys, err := decodeRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("decode result %d: %w", i, err)
		}
		for _, k := range keys {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				order = append(order, k)
			}
		}
		records = append(records, rec)
	}
	return NewRecordTable(records, order), nil
}

func decodeRecord(raw json.RawMessage) (Record, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}

	rec := make(Record)
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected field name, got %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("field %q: %w", key, err)
		}
		if _, dup := rec[key]; !dup {
			keys = append(keys, key)
		}
		rec[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return rec, keys, nil
}
