package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Client fetches a fresh rate snapshot from the configured provider.
type Client interface {
	FetchRates(ctx context.Context) (Snapshot, error)
}

// HttpClient pulls rates from an HTTP JSON endpoint. The rates object is
// located with a JSONPath expression, so providers with different envelope
// shapes (ECB mirrors, open.er-api.com, exchangerate.host) all work with
// configuration only.
type HttpClient struct {
	url        string
	ratesPath  string
	base       string
	httpClient *http.Client
}

func NewHttpClient(url string, ratesPath string, base string) *HttpClient {
	return &HttpClient{
		url:       url,
		ratesPath: ratesPath,
		base:      strings.ToUpper(base),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HttpClient) FetchRates(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.url, nil)
	if err != nil {
		log.Errorf("Failed to create request: %v", err)
		return Snapshot{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Errorf("Failed to fetch exchange rates: %v", err)
		return Snapshot{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("exchange rate provider returned non-OK status: %d", resp.StatusCode)
		log.Error(err)
		return Snapshot{}, err
	}

	var document interface{}
	if err := json.NewDecoder(resp.Body).Decode(&document); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode provider response: %w", err)
	}

	raw, err := jsonpath.Get(c.ratesPath, document)
	if err != nil {
		return Snapshot{}, fmt.Errorf("rates not found at %q: %w", c.ratesPath, err)
	}
	object, ok := raw.(map[string]interface{})
	if !ok {
		return Snapshot{}, fmt.Errorf("rates at %q are not an object", c.ratesPath)
	}

	rates := make(map[string]decimal.Decimal, len(object))
	for code, value := range object {
		number, ok := value.(float64)
		if !ok {
			log.Debugf("skipping non-numeric rate for %s", code)
			continue
		}
		rates[strings.ToUpper(code)] = decimal.NewFromFloat(number)
	}
	if len(rates) == 0 {
		return Snapshot{}, fmt.Errorf("provider response contained no usable rates")
	}

	return Snapshot{Base: c.base, Rates: rates}, nil
}
