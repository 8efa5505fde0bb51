package chartview

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"chartdesk/model"
)

// emptyPoint : echarts 에서 값 없는 지점
const emptyPoint = "-"

// Render : symbol/timeframe 의 캐시된 시리즈로 HTML 페이지 생성
//  1. 시리즈 조회 (등록 안 된 key 면 UNKNOWN_KEY)
//  2. 요청한 지표 계산
//  3. kline(+가격 지표) / volume / 나머지 지표 차트를 한 페이지로
func Render(src DataSource, symbol string, tf model.Timeframe, specs []OverlaySpec) ([]byte, error) {
	quotes, err := src.GetSeries(symbol, tf)
	if err != nil {
		return nil, err
	}
	overlays, err := LoadOverlays(src, symbol, tf, specs)
	if err != nil {
		return nil, err
	}

	page := BuildPage(fmt.Sprintf("%s %s", strings.ToUpper(symbol), tf), tf, quotes, overlays)
	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

func BuildPage(title string, tf model.Timeframe, quotes []model.Quote, overlays []Overlay) *components.Page {
	page := components.NewPage()
	page.PageTitle = title

	xVals := timeAxis(quotes, tf)
	kline := buildCandleChart(title, xVals, quotes)
	for _, o := range overlays {
		if o.OnPrice {
			kline.Overlap(buildLine(xVals, quotes, o))
		}
	}
	page.AddCharts(kline, buildVolumeChart(xVals, quotes))

	for _, o := range overlays {
		if o.OnPrice {
			continue
		}
		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: o.Name, Show: opts.Bool(true)}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
			charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		)
		line.SetXAxis(xVals)
		line.AddSeries(o.Name, alignToQuotes(quotes, o.Data))
		page.AddCharts(line)
	}
	return page
}

// buildCandleChart : go-echarts Kline 은 [open, close, low, high] 순서
func buildCandleChart(title string, xVals []string, quotes []model.Quote) *charts.Kline {
	kValues := make([]opts.KlineData, len(quotes))
	for i, q := range quotes {
		kValues[i] = opts.KlineData{
			Value: [4]float64{q.OpenValue(), q.CloseValue(), q.LowValue(), q.HighValue()},
		}
	}

	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	kline.SetXAxis(xVals).
		AddSeries("Price", kValues).
		SetSeriesOptions(charts.WithItemStyleOpts(opts.ItemStyle{
			Color:        "#00da3c", // 양봉
			Color0:       "#ec0000", // 음봉
			BorderColor:  "#008F28",
			BorderColor0: "#8A0000",
		}))
	return kline
}

func buildVolumeChart(xVals []string, quotes []model.Quote) *charts.Bar {
	bars := make([]opts.BarData, len(quotes))
	for i, q := range quotes {
		bars[i] = opts.BarData{Value: q.VolumeValue()}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Volume", Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	bar.SetXAxis(xVals).AddSeries("Volume", bars)
	return bar
}

func buildLine(xVals []string, quotes []model.Quote, o Overlay) *charts.Line {
	line := charts.NewLine()
	line.SetXAxis(xVals).
		AddSeries(o.Name, alignToQuotes(quotes, o.Data)).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}

// alignToQuotes : 지표 값을 quote 시간축에 맞춤. 없는 지점은 빈 값
func alignToQuotes(quotes []model.Quote, data []model.IndicatorData) []opts.LineData {
	byTime := make(map[int64]float64, len(data))
	for _, d := range data {
		byTime[d.Time.UnixNano()] = d.Value
	}

	out := make([]opts.LineData, len(quotes))
	for i, q := range quotes {
		if v, ok := byTime[q.Time.UnixNano()]; ok {
			out[i] = opts.LineData{Value: v}
		} else {
			out[i] = opts.LineData{Value: emptyPoint}
		}
	}
	return out
}

func timeAxis(quotes []model.Quote, tf model.Timeframe) []string {
	layout := time.DateOnly
	if tf == model.Timeframe1M || tf == model.Timeframe1H {
		layout = "2006-01-02 15:04"
	}
	out := make([]string, len(quotes))
	for i, q := range quotes {
		out[i] = q.Time.UTC().Format(layout)
	}
	return out
}
