package interfaces

import (
	"context"
	"time"

	"chartdesk/model"
)

// QuoteSource : upstream quote provider
type QuoteSource interface {
	// Chart returns the provider rows for [from, to] as-is (unsorted, possibly incomplete).
	Chart(ctx context.Context, symbol string, timeframe model.Timeframe, from, to time.Time) ([]model.RawQuote, error)
	SearchSymbols(ctx context.Context, query string) ([]string, error)
}

// SeriesCache : desk 가 사용하는 캐시 연산
type SeriesCache interface {
	Register(symbol string) bool
	Unregister(symbol string) bool
	Registered(symbol string) bool
	Symbols() []string
	Read(key model.SeriesKey) ([]model.Quote, bool)
	ReadWindow(key model.SeriesKey) (model.Window, bool)
	FillAndGrow(key model.SeriesKey, prev model.Window, incoming []model.Quote) ([]model.Quote, model.Window, error)
	Replace(key model.SeriesKey, quotes []model.Quote) error
	RemoveAt(key model.SeriesKey, t time.Time) (int, error)
}
