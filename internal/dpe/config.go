package dpe

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Defaults for the ADEME existing-buildings DPE dataset.
const (
	DefaultEndpoint  = "https://data.ademe.fr/data-fair/api/v1/datasets/dpe03existant/lines"
	DefaultTimeout   = 10 * time.Second
	DefaultLimit     = 50
	DefaultSortField = "date_etablissement_dpe"
)

// Config is the immutable configuration of one Client.
type Config struct {
	EndpointURL      string
	Timeout          time.Duration
	DefaultLimit     int
	DefaultSortField string
}

// DefaultConfig returns a Config pointing at the public ADEME endpoint.
func DefaultConfig() Config {
	return Config{
		EndpointURL:      DefaultEndpoint,
		Timeout:          DefaultTimeout,
		DefaultLimit:     DefaultLimit,
		DefaultSortField: DefaultSortField,
	}
}

// Validate checks that the configuration can build requests.
func (c Config) Validate() error {
	raw := strings.TrimSpace(c.EndpointURL)
	if raw == "" {
		return errors.New("dpe: endpoint url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("dpe: parse endpoint url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("dpe: endpoint url %q must be absolute", raw)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("dpe: timeout must be positive, got %s", c.Timeout)
	}
	if c.DefaultLimit < 1 {
		return newInvalidLimit(c.DefaultLimit)
	}
	if strings.TrimSpace(c.DefaultSortField) == "" {
		return errors.New("dpe: default sort field is required")
	}
	return nil
}
