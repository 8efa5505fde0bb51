package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chartdesk/apperror"
	"chartdesk/model"
	"chartdesk/utils/log"
	"chartdesk/utils/resty"
)

const (
	chartPath  = "/stock/chart/%s"
	searchPath = "/search-stocks/%s"
)

// QuoteProvider : upstream chart provider REST client
type QuoteProvider struct {
	baseURL string
	timeout time.Duration
	retry   int
	trace   bool
	resty   resty.RestyClient
}

type ProviderOption func(*QuoteProvider)

// WithRestyClient : 테스트에서 mock client 주입
func WithRestyClient(client resty.RestyClient) ProviderOption {
	return func(p *QuoteProvider) {
		p.resty = client
	}
}

func WithRequestTimeout(timeout time.Duration) ProviderOption {
	return func(p *QuoteProvider) {
		p.timeout = timeout
	}
}

func WithRetryCount(retry int) ProviderOption {
	return func(p *QuoteProvider) {
		p.retry = retry
	}
}

func WithTrace() ProviderOption {
	return func(p *QuoteProvider) {
		p.trace = true
	}
}

func NewQuoteProvider(baseURL string, opts ...ProviderOption) *QuoteProvider {
	p := &QuoteProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.resty == nil {
		p.resty = resty.NewDefaultRestyClientWithRetryCount(p.trace, p.retry, p.timeout)
	}
	log.Infof("[SETUP] quote provider %s (timeout=%s, retry=%d)", p.baseURL, p.timeout, p.retry)
	return p
}

// Chart : GET /stock/chart/{symbol}?timeframe=&period1=&period2=
func (p *QuoteProvider) Chart(ctx context.Context, symbol string, timeframe model.Timeframe, from, to time.Time) ([]model.RawQuote, error) {
	full := p.baseURL + fmt.Sprintf(chartPath, url.PathEscape(symbol))

	body, err := p.get(ctx, full,
		resty.QueryParam{Key: "timeframe", Value: string(timeframe)},
		resty.QueryParam{Key: "period1", Value: from.UTC().Format(time.RFC3339)},
		resty.QueryParam{Key: "period2", Value: to.UTC().Format(time.RFC3339)},
	)
	if err != nil {
		return nil, err
	}

	var rows []model.RawQuote
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, apperror.Wrap(apperror.KindNetwork, err, "decode chart %s %s", symbol, timeframe)
	}
	log.Debugf("[FETCH] %s %s %s~%s rows=%d", symbol, timeframe,
		from.Format(time.DateOnly), to.Format(time.DateOnly), len(rows))
	return rows, nil
}

// SearchSymbols : GET /search-stocks/{query}
func (p *QuoteProvider) SearchSymbols(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.New(apperror.KindInvalidParameters, "search query is empty")
	}

	body, err := p.get(ctx, p.baseURL+fmt.Sprintf(searchPath, url.PathEscape(query)))
	if err != nil {
		return nil, err
	}

	var symbols []string
	if err := json.Unmarshal(body, &symbols); err != nil {
		return nil, apperror.Wrap(apperror.KindNetwork, err, "decode search %q", query)
	}
	return symbols, nil
}

func (p *QuoteProvider) get(ctx context.Context, full string, params ...resty.QueryParam) ([]byte, error) {
	resp, err := p.resty.
		MakeRequest(ctx, nil, nil).
		Get(full, params...)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindNetwork, err, "GET %s", full)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, apperror.New(apperror.KindNetwork, "GET %s: HTTP %d %s", full, resp.StatusCode(), resp.String())
	}
	return resp.Body(), nil
}
