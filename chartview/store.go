package chartview

import (
	"strings"

	"chartdesk/apperror"
	"chartdesk/indicator"
	"chartdesk/model"
	"chartdesk/utils/tools"
)

// DataSource : 차트에 필요한 캐시 조회 (desk.Desk 가 구현)
type DataSource interface {
	GetSeries(symbol string, tf model.Timeframe) ([]model.Quote, error)
	GetIndicator(symbol string, tf model.Timeframe, kind indicator.Kind, lengths []int) ([][]model.IndicatorData, error)
}

// OverlaySpec : "SMA:20", "MACD:12:26:9", "VOLUME"
type OverlaySpec struct {
	Kind    indicator.Kind
	Lengths []int
}

// OnPrice : 가격 축에 겹쳐 그리는 지표인지
func (s OverlaySpec) OnPrice() bool {
	return s.Kind == indicator.KindSMA || s.Kind == indicator.KindEMA
}

// ParseOverlays : 콤마 구분 지표 목록 파싱. 빈 문자열이면 nil
func ParseOverlays(raw string) ([]OverlaySpec, error) {
	var out []OverlaySpec
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.Split(item, ":")
		kind, err := indicator.ParseKind(parts[0])
		if err != nil {
			return nil, err
		}
		lengths, err := tools.ParseInts(strings.Join(parts[1:], ":"), ":")
		if err != nil {
			return nil, apperror.Wrap(apperror.KindInvalidParameters, err, "invalid overlay %q", item)
		}
		if err := indicator.Validate(kind, lengths); err != nil {
			return nil, err
		}
		out = append(out, OverlaySpec{Kind: kind, Lengths: lengths})
	}
	return out, nil
}

// Overlay : 계산이 끝난 지표 시리즈 하나
type Overlay struct {
	Name    string
	OnPrice bool
	Data    []model.IndicatorData
}

// LoadOverlays : overlay 별로 지표를 계산해 Overlay 로 펼침 (MACD 는 3개)
func LoadOverlays(src DataSource, symbol string, tf model.Timeframe, specs []OverlaySpec) ([]Overlay, error) {
	var out []Overlay
	for _, o := range specs {
		series, err := src.GetIndicator(symbol, tf, o.Kind, o.Lengths)
		if err != nil {
			return nil, err
		}
		names := indicator.Names(o.Kind, o.Lengths)
		for i, data := range series {
			out = append(out, Overlay{Name: names[i], OnPrice: o.OnPrice(), Data: data})
		}
	}
	return out, nil
}
