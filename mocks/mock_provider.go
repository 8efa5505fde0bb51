package mocks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"chartdesk/model"
)

// MockProvider 는 interfaces.QuoteSource 를 흉내내는 in-memory provider 입니다.
// - Rows 에 (symbol_timeframe) 별 응답 행을 미리 넣어둠
// - Delay 로 느린 upstream, Err 로 transport 에러를 재현
// - 호출 횟수와 마지막 요청 구간을 기록
type MockProvider struct {
	mu sync.Mutex

	Rows    map[string][]model.RawQuote // key = "SYMBOL_TF"
	Symbols []string
	Delay   time.Duration
	Err     error

	// 테스트 관찰용
	ChartCalls  int
	SearchCalls int
	LastFrom    time.Time
	LastTo      time.Time
}

func NewMockProvider() *MockProvider {
	return &MockProvider{Rows: make(map[string][]model.RawQuote)}
}

// SetRows : key 에 대한 응답 설정
func (m *MockProvider) SetRows(symbol string, tf model.Timeframe, rows []model.RawQuote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rows[model.NewSeriesKey(symbol, tf).String()] = rows
}

func (m *MockProvider) Chart(ctx context.Context, symbol string, timeframe model.Timeframe, from, to time.Time) ([]model.RawQuote, error) {
	m.mu.Lock()
	m.ChartCalls++
	m.LastFrom, m.LastTo = from, to
	delay, err := m.Delay, m.Err
	rows := append([]model.RawQuote{}, m.Rows[model.NewSeriesKey(symbol, timeframe).String()]...)
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (m *MockProvider) SearchSymbols(ctx context.Context, query string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchCalls++

	if m.Err != nil {
		return nil, m.Err
	}
	if query == "" {
		return nil, errors.New("empty query")
	}
	var out []string
	for _, s := range m.Symbols {
		if strings.Contains(s, strings.ToUpper(query)) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ChartCalls
}

// DailyRows : start 부터 하루 간격의 완전한 행 n 개 (close = base + i)
func DailyRows(start time.Time, n int, base float64) []model.RawQuote {
	out := make([]model.RawQuote, n)
	for i := range out {
		c := base + float64(i)
		open, high, low, closePrice, volume := c-0.5, c+1, c-1, c, float64(1000*(i+1))
		out[i] = model.RawQuote{
			Date:   start.AddDate(0, 0, i),
			Open:   &open,
			High:   &high,
			Low:    &low,
			Close:  &closePrice,
			Volume: &volume,
		}
	}
	return out
}
