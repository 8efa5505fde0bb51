package model

import (
	"time"

	"chartdesk/utils/pointer"
)

// Quote : 특정 시점의 OHLCV 한 건. 가격 필드는 provider 에 따라 비어있을 수 있음
type Quote struct {
	Time   time.Time `json:"time"`
	Open   *float64  `json:"open,omitempty"`
	High   *float64  `json:"high,omitempty"`
	Low    *float64  `json:"low,omitempty"`
	Close  *float64  `json:"close,omitempty"`
	Volume *float64  `json:"volume,omitempty"`
}

// Complete : open, high, low, close 가 모두 있는 경우
func (q Quote) Complete() bool {
	return q.Open != nil && q.High != nil && q.Low != nil && q.Close != nil
}

// Equal : 시간을 포함한 모든 필드가 같아야 동일한 quote
func (q Quote) Equal(o Quote) bool {
	return q.Time.Equal(o.Time) &&
		pointer.Equal(q.Open, o.Open) &&
		pointer.Equal(q.High, o.High) &&
		pointer.Equal(q.Low, o.Low) &&
		pointer.Equal(q.Close, o.Close) &&
		pointer.Equal(q.Volume, o.Volume)
}

func (q Quote) CloseValue() float64  { return pointer.NotNull(q.Close, 0) }
func (q Quote) OpenValue() float64   { return pointer.NotNull(q.Open, 0) }
func (q Quote) HighValue() float64   { return pointer.NotNull(q.High, 0) }
func (q Quote) LowValue() float64    { return pointer.NotNull(q.Low, 0) }
func (q Quote) VolumeValue() float64 { return pointer.NotNull(q.Volume, 0) }

// RawQuote : provider 응답의 한 행 (/stock/chart/{symbol})
type RawQuote struct {
	High   *float64  `json:"high,omitempty"`
	Low    *float64  `json:"low,omitempty"`
	Open   *float64  `json:"open,omitempty"`
	Close  *float64  `json:"close,omitempty"`
	Volume *float64  `json:"volume,omitempty"`
	Date   time.Time `json:"date"`
}

func (r RawQuote) Complete() bool {
	return r.Open != nil && r.High != nil && r.Low != nil && r.Close != nil
}

// Closes : quote 목록의 종가 시리즈
func Closes(quotes []Quote) Series[float64] {
	out := make(Series[float64], len(quotes))
	for i, q := range quotes {
		out[i] = q.CloseValue()
	}
	return out
}

func Times(quotes []Quote) []time.Time {
	out := make([]time.Time, len(quotes))
	for i, q := range quotes {
		out[i] = q.Time
	}
	return out
}
