// Package viacep resolves Brazilian postal codes against the ViaCEP web service.
package viacep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clientes/backend/internal/domain/address"
	"github.com/clientes/backend/internal/domain/shared"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const maxBodySize = 64 << 10

// Config holds client settings
type Config struct {
	BaseURL   string        // e.g. https://viacep.com.br/ws
	Timeout   time.Duration // per request; 0 leaves it to the caller's context
	RateLimit float64       // requests per second; 0 disables throttling
	RateBurst int
	UserAgent string
}

// Client implements address.LookupClient
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a Client. Outbound requests are traced through otelhttp.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// response is the ViaCEP JSON body. A missing code is reported as
// {"erro": true}; older deployments send {"erro": "true"}.
type response struct {
	CEP         string   `json:"cep"`
	Logradouro  string   `json:"logradouro"`
	Complemento string   `json:"complemento"`
	Bairro      string   `json:"bairro"`
	Localidade  string   `json:"localidade"`
	UF          string   `json:"uf"`
	IBGE        string   `json:"ibge"`
	Erro        flexBool `json:"erro"`
}

type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "true":
		*b = true
	case "false", "", "null":
		*b = false
	default:
		return fmt.Errorf("invalid boolean %s", data)
	}
	return nil
}

// Lookup fetches the address for code.
// It returns shared.ErrPostalCodeNotFound when the service reports the code as
// unknown, and a plain error for any transport or protocol failure.
func (c *Client) Lookup(ctx context.Context, code address.PostalCode) (*address.Address, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("viacep rate limit: %w", err)
		}
	}

	url := fmt.Sprintf("%s/%s/json/", c.baseURL, code.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("viacep request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("viacep call: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, shared.ErrPostalCodeNotFound
	case resp.StatusCode == http.StatusBadRequest:
		// ViaCEP answers 400 for codes it considers malformed
		return nil, shared.ErrPostalCodeNotFound
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, fmt.Errorf("viacep returned status %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&body); err != nil {
		return nil, fmt.Errorf("viacep decode: %w", err)
	}
	if body.Erro {
		return nil, shared.ErrPostalCodeNotFound
	}

	return body.toAddress(code)
}

func (r response) toAddress(requested address.PostalCode) (*address.Address, error) {
	if r.CEP != "" {
		got, err := address.ParsePostalCode(r.CEP)
		if err != nil {
			return nil, fmt.Errorf("viacep returned malformed cep %q", r.CEP)
		}
		if got != requested {
			return nil, fmt.Errorf("viacep answered %s for %s", got, requested)
		}
	}
	addr, err := address.NewAddress(requested, r.Logradouro, r.Bairro, r.Localidade, r.UF,
		address.WithComplement(r.Complemento),
		address.WithIBGECode(r.IBGE),
	)
	if err != nil {
		return nil, fmt.Errorf("viacep returned incomplete address: %w", err)
	}
	return &addr, nil
}

// IsNotFound reports whether err means the service does not know the code
func IsNotFound(err error) bool {
	return errors.Is(err, shared.ErrPostalCodeNotFound)
}

var _ address.LookupClient = (*Client)(nil)
