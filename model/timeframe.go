package model

import (
	"fmt"
	"strings"
	"time"

	"chartdesk/apperror"
)

type Timeframe string

const (
	Timeframe1M  Timeframe = "1M"
	Timeframe1H  Timeframe = "1H"
	Timeframe1D  Timeframe = "1D"
	Timeframe1WK Timeframe = "1WK"
)

const day = 24 * time.Hour

// Timeframes : 심볼 등록 시 생성되는 모든 timeframe (순서 고정)
var Timeframes = []Timeframe{Timeframe1M, Timeframe1H, Timeframe1D, Timeframe1WK}

// FloorDate : window 가 내려갈 수 있는 가장 이른 시점
var FloorDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

func ParseTimeframe(s string) (Timeframe, error) {
	switch tf := Timeframe(strings.ToUpper(strings.TrimSpace(s))); tf {
	case Timeframe1M, Timeframe1H, Timeframe1D, Timeframe1WK:
		return tf, nil
	default:
		return "", apperror.New(apperror.KindInvalidParameters, "unsupported timeframe: %q", s)
	}
}

// LookBack : 최초 등록 시 window 크기
func (tf Timeframe) LookBack() time.Duration {
	switch tf {
	case Timeframe1M:
		return 3 * day
	case Timeframe1H:
		return 15 * 7 * day
	case Timeframe1D:
		return 4 * 365 * day
	case Timeframe1WK:
		return 7 * 365 * day
	}
	panic(fmt.Sprintf("unknown timeframe %q", string(tf)))
}

// GrowthStep : fetch 성공 시 window 를 과거로 넓히는 크기. 항상 LookBack 보다 큼
func (tf Timeframe) GrowthStep() time.Duration {
	switch tf {
	case Timeframe1M:
		return 5 * day
	case Timeframe1H:
		return 30 * 7 * day
	case Timeframe1D:
		return 8 * 365 * day
	case Timeframe1WK:
		return 15 * 365 * day
	}
	panic(fmt.Sprintf("unknown timeframe %q", string(tf)))
}

func (tf Timeframe) String() string { return string(tf) }

// ClampFloor : FloorDate 보다 이르면 FloorDate
func ClampFloor(t time.Time) time.Time {
	if t.Before(FloorDate) {
		return FloorDate
	}
	return t
}

type SeriesKey struct {
	Symbol    string    `json:"symbol"`
	Timeframe Timeframe `json:"timeframe"`
}

func NewSeriesKey(symbol string, tf Timeframe) SeriesKey {
	return SeriesKey{Symbol: strings.ToUpper(symbol), Timeframe: tf}
}

// String : "SYMBOL_TF"
func (k SeriesKey) String() string {
	return fmt.Sprintf("%s_%s", k.Symbol, k.Timeframe)
}
