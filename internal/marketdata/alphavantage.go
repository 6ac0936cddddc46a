// Package marketdata supplies historical daily bars: an Alpha Vantage
// provider with a deterministic synthetic fallback, fronted by a caching
// service that implements the domain BarSource contract.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"QuantDesk/internal/domain/models"
	pkghttp "QuantDesk/pkg/http"
)

// ErrNoData is returned when the provider response carries no time
// series, typically because the free-tier rate limit was exhausted.
var ErrNoData = errors.New("marketdata: no time series in response")

const defaultBaseURL = "https://www.alphavantage.co/query"

// AlphaVantage fetches TIME_SERIES_DAILY bars.
type AlphaVantage struct {
	client  *pkghttp.Client
	baseURL string
	apiKey  string
}

// AlphaVantageOption configures the provider.
type AlphaVantageOption func(*AlphaVantage)

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(url string) AlphaVantageOption {
	return func(a *AlphaVantage) { a.baseURL = url }
}

// NewAlphaVantage creates the provider. An empty apiKey falls back to
// the provider's shared demo key, which serves a restricted symbol set.
func NewAlphaVantage(client *pkghttp.Client, apiKey string, opts ...AlphaVantageOption) *AlphaVantage {
	if apiKey == "" {
		apiKey = "demo"
	}
	a := &AlphaVantage{
		client:  client,
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type dailyResponse struct {
	TimeSeries map[string]map[string]string `json:"Time Series (Daily)"`
}

// DailyBars fetches the daily series for ticker, chronologically
// ascending. A response without a time series yields ErrNoData.
func (a *AlphaVantage) DailyBars(ctx context.Context, ticker string) ([]models.Bar, error) {
	var resp dailyResponse
	err := a.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    a.baseURL,
		QueryParams: map[string][]string{
			"function":   {"TIME_SERIES_DAILY"},
			"symbol":     {ticker},
			"apikey":     {a.apiKey},
			"outputsize": {"compact"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch daily series: %w", err)
	}
	if len(resp.TimeSeries) == 0 {
		return nil, ErrNoData
	}

	bars := make([]models.Bar, 0, len(resp.TimeSeries))
	for date, fields := range resp.TimeSeries {
		bar, err := parseBar(date, fields)
		if err != nil {
			return nil, fmt.Errorf("parse bar %s: %w", date, err)
		}
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func parseBar(date string, fields map[string]string) (models.Bar, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return models.Bar{}, err
	}

	get := func(key string) (float64, error) {
		raw, ok := fields[key]
		if !ok {
			return 0, fmt.Errorf("missing field %q", key)
		}
		return strconv.ParseFloat(raw, 64)
	}

	var bar models.Bar
	bar.Time = t
	if bar.Open, err = get("1. open"); err != nil {
		return models.Bar{}, err
	}
	if bar.High, err = get("2. high"); err != nil {
		return models.Bar{}, err
	}
	if bar.Low, err = get("3. low"); err != nil {
		return models.Bar{}, err
	}
	if bar.Close, err = get("4. close"); err != nil {
		return models.Bar{}, err
	}
	if bar.Volume, err = get("5. volume"); err != nil {
		return models.Bar{}, err
	}
	return bar, nil
}
