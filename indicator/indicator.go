package indicator

import (
	"fmt"
	"strings"

	"chartdesk/apperror"
	"chartdesk/model"
)

type Kind string

const (
	KindSMA    Kind = "SMA"
	KindEMA    Kind = "EMA"
	KindRSI    Kind = "RSI"
	KindMACD   Kind = "MACD"
	KindVolume Kind = "VOLUME"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToUpper(strings.TrimSpace(s))); k {
	case KindSMA, KindEMA, KindRSI, KindMACD, KindVolume:
		return k, nil
	default:
		return "", apperror.New(apperror.KindInvalidParameters, "unknown indicator %q", s)
	}
}

// Arity : 필요한 length 개수
func (k Kind) Arity() int {
	switch k {
	case KindSMA, KindEMA, KindRSI:
		return 1
	case KindMACD:
		return 3
	default:
		return 0
	}
}

// Validate : 계산 전에 length 개수와 값 검사
func Validate(kind Kind, lengths []int) error {
	if len(lengths) != kind.Arity() {
		return apperror.New(apperror.KindInvalidParameters,
			"%s requires exactly %d length(s), got %d", kind, kind.Arity(), len(lengths))
	}
	for _, l := range lengths {
		if l <= 0 {
			return apperror.New(apperror.KindInvalidParameters, "%s length must be positive, got %d", kind, l)
		}
	}
	return nil
}

// Compute : kind 에 맞는 지표 계산. MACD 는 line, signal, histogram 순서
func Compute(kind Kind, quotes []model.Quote, lengths []int) ([][]model.IndicatorData, error) {
	if err := Validate(kind, lengths); err != nil {
		return nil, err
	}

	switch kind {
	case KindSMA:
		return [][]model.IndicatorData{SMA(quotes, lengths[0])}, nil
	case KindEMA:
		return [][]model.IndicatorData{EMA(quotes, lengths[0])}, nil
	case KindRSI:
		return [][]model.IndicatorData{RSI(quotes, lengths[0])}, nil
	case KindMACD:
		m := MACD(quotes, lengths[0], lengths[1], lengths[2])
		return [][]model.IndicatorData{m.Line, m.Signal, m.Histogram}, nil
	case KindVolume:
		return [][]model.IndicatorData{Volume(quotes)}, nil
	}
	return nil, apperror.New(apperror.KindInvalidParameters, "unknown indicator %q", kind)
}

// Names : Compute 결과 각 시리즈의 표시 이름
func Names(kind Kind, lengths []int) []string {
	switch kind {
	case KindMACD:
		suffix := fmt.Sprintf("(%d,%d,%d)", lengths[0], lengths[1], lengths[2])
		return []string{"MACD" + suffix, "Signal" + suffix, "Histogram" + suffix}
	case KindVolume:
		return []string{"Volume"}
	default:
		return []string{fmt.Sprintf("%s %d", kind, lengths[0])}
	}
}

// SMA : running-sum 이동평균. period-1 이전 구간은 지금까지의 평균
func SMA(quotes []model.Quote, period int) []model.IndicatorData {
	return withTimes(quotes, SMAValues(model.Closes(quotes), period))
}

// EMA : 첫 close 를 seed 로 하는 지수이동평균
func EMA(quotes []model.Quote, period int) []model.IndicatorData {
	return withTimes(quotes, EMAValues(model.Closes(quotes), period))
}

// EMAOfSeries : 이미 계산된 지표 시리즈에 같은 EMA 점화식 적용
func EMAOfSeries(data []model.IndicatorData, period int) []model.IndicatorData {
	values := make([]float64, len(data))
	for i, d := range data {
		values[i] = d.Value
	}
	smoothed := EMAValues(values, period)
	out := make([]model.IndicatorData, len(data))
	for i, d := range data {
		out[i] = model.IndicatorData{Time: d.Time, Value: smoothed[i]}
	}
	return out
}

// RSI : 최근 period 개 종가 변화의 gain/loss 합으로 계산. 앞의 period 개는 생략
func RSI(quotes []model.Quote, period int) []model.IndicatorData {
	if period <= 0 || len(quotes) <= period {
		return []model.IndicatorData{}
	}
	closes := model.Closes(quotes)
	out := make([]model.IndicatorData, 0, len(quotes)-period)

	for i := period; i < len(closes); i++ {
		gains, losses := 0.0, 0.0
		for j := i - period + 1; j <= i; j++ {
			change := closes[j] - closes[j-1]
			if change > 0 {
				gains += change
			} else {
				losses -= change
			}
		}
		rs := gains
		if losses != 0 {
			rs = gains / losses
		}
		out = append(out, model.IndicatorData{
			Time:  quotes[i].Time,
			Value: 100 - 100/(1+rs),
		})
	}
	return out
}

type MACDResult struct {
	Line      []model.IndicatorData `json:"line"`
	Signal    []model.IndicatorData `json:"signal"`
	Histogram []model.IndicatorData `json:"histogram"`
}

// MACD : line = EMA(short) - EMA(long), signal = EMA(line, signal), histogram = line - signal
func MACD(quotes []model.Quote, short, long, signal int) MACDResult {
	line := withTimes(quotes, MACDLineValues(model.Closes(quotes), short, long))
	signalLine := EMAOfSeries(line, signal)

	histogram := make([]model.IndicatorData, len(line))
	for i := range line {
		histogram[i] = model.IndicatorData{
			Time:  line[i].Time,
			Value: line[i].Value - signalLine[i].Value,
		}
	}
	return MACDResult{Line: line, Signal: signalLine, Histogram: histogram}
}

// Volume : 거래량. 없으면 0
func Volume(quotes []model.Quote) []model.IndicatorData {
	out := make([]model.IndicatorData, len(quotes))
	for i, q := range quotes {
		out[i] = model.IndicatorData{Time: q.Time, Value: q.VolumeValue()}
	}
	return out
}

// ---------------------------------------------------------------------------
// float 시리즈 버전 (strategy 에서 사용)
// ---------------------------------------------------------------------------

func SMAValues(values model.Series[float64], period int) model.Series[float64] {
	out := make(model.Series[float64], len(values))
	if period <= 0 {
		return out[:0]
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		} else {
			out[i] = sum / float64(i+1)
		}
	}
	return out
}

func EMAValues(values model.Series[float64], period int) model.Series[float64] {
	out := make(model.Series[float64], len(values))
	if len(values) == 0 || period <= 0 {
		return out[:0]
	}
	k := 2.0 / (float64(period) + 1.0)
	ema := values[0]
	out[0] = ema
	for i := 1; i < len(values); i++ {
		ema = values[i]*k + ema*(1-k)
		out[i] = ema
	}
	return out
}

func MACDLineValues(closes model.Series[float64], short, long int) model.Series[float64] {
	shortEMA := EMAValues(closes, short)
	longEMA := EMAValues(closes, long)
	if len(shortEMA) != len(longEMA) {
		return model.Series[float64]{}
	}
	out := make(model.Series[float64], len(shortEMA))
	for i := range shortEMA {
		out[i] = shortEMA[i] - longEMA[i]
	}
	return out
}

func withTimes(quotes []model.Quote, values model.Series[float64]) []model.IndicatorData {
	out := make([]model.IndicatorData, len(values))
	for i, v := range values {
		out[i] = model.IndicatorData{Time: quotes[i].Time, Value: v}
	}
	return out
}
