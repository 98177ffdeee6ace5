// Package export writes record tables as CSV, JSON or YAML.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/HerbHall/dpetools/internal/dpe"
)

// Format names an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts csv, json, yaml and yml, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q (want csv, json or yaml)", s)
}

// Write encodes t to w in the given format, keeping the table's column order.
func Write(w io.Writer, f Format, t *dpe.RecordTable) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, t)
	case FormatJSON:
		return writeJSON(w, t)
	case FormatYAML:
		return writeYAML(w, t)
	}
	return fmt.Errorf("unknown output format %q", f)
}

func writeCSV(w io.Writer, t *dpe.RecordTable) error {
	cols := t.Columns()
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, len(cols))
	for i, rec := range t.Records() {
		for j, c := range cols {
			row[j] = cell(rec[c])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// cell renders one value for CSV: empty for missing, JSON for nested values.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

func writeJSON(w io.Writer, t *dpe.RecordTable) error {
	cols := t.Columns()
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, rec := range t.Records() {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  {")
		n := 0
		for _, c := range cols {
			v, ok := rec[c]
			if !ok {
				continue
			}
			if n > 0 {
				buf.WriteString(", ")
			}
			n++
			k, _ := json.Marshal(c)
			val, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("encode record %d field %q: %w", i, c, err)
			}
			buf.Write(k)
			buf.WriteString(": ")
			buf.Write(val)
		}
		buf.WriteString("}")
	}
	if t.Len() > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func writeYAML(w io.Writer, t *dpe.RecordTable) error {
	cols := t.Columns()
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for i, rec := range t.Records() {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, c := range cols {
			v, ok := rec[c]
			if !ok {
				continue
			}
			val, err := valueNode(v)
			if err != nil {
				return fmt.Errorf("encode record %d field %q: %w", i, c, err)
			}
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c},
				val,
			)
		}
		seq.Content = append(seq.Content, m)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// valueNode encodes v. Numbers keep the literal the server sent.
func valueNode(v any) (*yaml.Node, error) {
	if n, ok := v.(json.Number); ok {
		tag := "!!int"
		if strings.ContainsAny(n.String(), ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: n.String()}, nil
	}
	var val yaml.Node
	if err := val.Encode(v); err != nil {
		return nil, err
	}
	return &val, nil
}
