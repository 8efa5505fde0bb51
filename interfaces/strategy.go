package interfaces

import "chartdesk/model"

type Strategy interface {
	Name() string
	// Indicators fills df.Metadata over the whole dataframe before OnCandle is replayed.
	// Every indicator used must depend only on the prefix up to each index.
	Indicators(df *model.Dataframe)
	// OnCandle receives the prefix ending at the current bar and returns its signal.
	OnCandle(df *model.Dataframe) model.Signal
}
