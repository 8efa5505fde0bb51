package model

import "time"

// Window : 캐시된 시리즈가 커버하는 것으로 간주되는 구간
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// DefaultWindow : now 에서 LookBack 만큼 과거, FloorDate 로 clamp
func DefaultWindow(tf Timeframe, now time.Time) Window {
	now = now.UTC()
	return Window{
		From: ClampFloor(now.Add(-tf.LookBack())),
		To:   now,
	}
}

func (w Window) Valid() bool {
	return !w.To.Before(w.From)
}

// IndicatorData : 지표 한 점. 입력 quote 의 시간과 정렬됨
type IndicatorData struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}
