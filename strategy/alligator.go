package strategy

import (
	"fmt"

	"chartdesk/indicator"
	"chartdesk/model"
)

// Alligator : jaw, teeth, lips 세 SMA 의 배열로 추세 판단
// https://www.investopedia.com/articles/trading/072115/exploring-williams-alligator-indicator.asp
type Alligator struct {
	Jaw, Teeth, Lips int
}

func (a Alligator) Name() string {
	return fmt.Sprintf("alligator(%d,%d,%d)", a.Jaw, a.Teeth, a.Lips)
}

func (a Alligator) Indicators(df *model.Dataframe) {
	df.Metadata["jaw"] = indicator.SMAValues(df.Close, a.Jaw)
	df.Metadata["teeth"] = indicator.SMAValues(df.Close, a.Teeth)
	df.Metadata["lips"] = indicator.SMAValues(df.Close, a.Lips)
}

func (a Alligator) OnCandle(df *model.Dataframe) model.Signal {
	return stacked(
		df.Metadata["lips"].Last(0),
		df.Metadata["teeth"].Last(0),
		df.Metadata["jaw"].Last(0),
	)
}
