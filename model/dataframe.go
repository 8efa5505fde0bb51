package model

import "time"

type Dataframe struct {
	Symbol string

	Close  Series[float64]
	Open   Series[float64]
	High   Series[float64]
	Low    Series[float64]
	Volume Series[float64]

	Time []time.Time

	// 전략이 계산한 지표 (이름 -> 시리즈)
	Metadata map[string]Series[float64]
}

func NewDataframe(symbol string, quotes []Quote) *Dataframe {
	df := &Dataframe{
		Symbol:   symbol,
		Close:    make(Series[float64], len(quotes)),
		Open:     make(Series[float64], len(quotes)),
		High:     make(Series[float64], len(quotes)),
		Low:      make(Series[float64], len(quotes)),
		Volume:   make(Series[float64], len(quotes)),
		Time:     make([]time.Time, len(quotes)),
		Metadata: make(map[string]Series[float64]),
	}
	for i, q := range quotes {
		df.Close[i] = q.CloseValue()
		df.Open[i] = q.OpenValue()
		df.High[i] = q.HighValue()
		df.Low[i] = q.LowValue()
		df.Volume[i] = q.VolumeValue()
		df.Time[i] = q.Time
	}
	return df
}

func (df *Dataframe) Length() int {
	return len(df.Time)
}

// Until : index i 까지(포함)의 prefix view. 슬라이스를 공유함
func (df *Dataframe) Until(i int) *Dataframe {
	view := &Dataframe{
		Symbol:   df.Symbol,
		Close:    df.Close.Until(i),
		Open:     df.Open.Until(i),
		High:     df.High.Until(i),
		Low:      df.Low.Until(i),
		Volume:   df.Volume.Until(i),
		Time:     df.Time[:i+1],
		Metadata: make(map[string]Series[float64], len(df.Metadata)),
	}
	for key, values := range df.Metadata {
		view.Metadata[key] = values.Until(i)
	}
	return view
}
