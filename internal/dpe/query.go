package dpe

import (
	"net/url"
	"strconv"
	"strings"
)

// SortDirection orders the records on the sort field.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

func (d SortDirection) String() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

// QuerySpec is the validated parameter set for one request.
type QuerySpec struct {
	Limit         int
	SortField     string
	SortDirection SortDirection
	Select        []string
	Filter        string
}

// SortParam encodes the sort field and direction as data-fair expects:
// a leading '-' means descending.
func (q QuerySpec) SortParam() string {
	if q.SortDirection == Descending {
		return "-" + q.SortField
	}
	return q.SortField
}

// Values returns the query parameters for the request.
func (q QuerySpec) Values() url.Values {
	v := url.Values{}
	v.Set("size", strconv.Itoa(q.Limit))
	v.Set("sort", q.SortParam())
	if len(q.Select) > 0 {
		v.Set("select", strings.Join(q.Select, ","))
	}
	if q.Filter != "" {
		v.Set("qs", q.Filter)
	}
	return v
}

// QueryOption customizes a fetch. Options left out fall back to the
// client's configured defaults.
type QueryOption func(*queryParams)

type queryParams struct {
	limit     *int
	sortField string
	direction SortDirection
	selected  []string
	filter    string
}

// WithLimit sets the number of records to request.
func WithLimit(n int) QueryOption {
	return func(p *queryParams) { p.limit = &n }
}

// WithSort sets the sort field and direction. Field names are not checked
// locally; the server rejects unknown fields with a 400.
func WithSort(field string, dir SortDirection) QueryOption {
	return func(p *queryParams) {
		p.sortField = field
		p.direction = dir
	}
}

// WithDirection sets the direction and keeps the default sort field.
func WithDirection(dir SortDirection) QueryOption {
	return func(p *queryParams) { p.direction = dir }
}

// WithSelect restricts the returned columns.
func WithSelect(fields ...string) QueryOption {
	return func(p *queryParams) { p.selected = append(p.selected, fields...) }
}

// WithFilter sets a data-fair query string filter (the qs parameter).
func WithFilter(qs string) QueryOption {
	return func(p *queryParams) { p.filter = qs }
}

// BuildQuery validates options against cfg and returns the request spec.
// It never touches the network.
func BuildQuery(cfg Config, opts ...QueryOption) (QuerySpec, error) {
	var p queryParams
	for _, opt := range opts {
		if opt != nil {
			opt(&p)
		}
	}

	limit := cfg.DefaultLimit
	if p.limit != nil {
		limit = *p.limit
	}
	if limit < 1 {
		return QuerySpec{}, newInvalidLimit(limit)
	}

	field := strings.TrimSpace(p.sortField)
	if field == "" {
		field = cfg.DefaultSortField
	}

	var selected []string
	for _, f := range p.selected {
		if f = strings.TrimSpace(f); f != "" {
			selected = append(selected, f)
		}
	}

	return QuerySpec{
		Limit:         limit,
		SortField:     field,
		SortDirection: p.direction,
		Select:        selected,
		Filter:        strings.TrimSpace(p.filter),
	}, nil
}

// ParseLimit converts textual input to a limit. Anything that is not a
// strict positive integer fails with the same InvalidLimit error that
// BuildQuery returns, quoting the input as given.
func ParseLimit(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, newInvalidLimit(s)
	}
	return n, nil
}
