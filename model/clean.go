package model

import (
	"sort"

	"github.com/samber/lo"
)

// FilterComplete : open/high/low/close 중 하나라도 없는 행은 버리고 시간순 정렬
func FilterComplete(raw []RawQuote) []RawQuote {
	complete := lo.Filter(raw, func(r RawQuote, _ int) bool {
		return r.Complete()
	})
	sort.SliceStable(complete, func(i, j int) bool {
		return complete[i].Date.Before(complete[j].Date)
	})
	return complete
}

// DeriveOpen : 첫 행을 제외한 open 을 직전 행의 close 로 덮어씀
func DeriveOpen(cleaned []RawQuote) []Quote {
	quotes := lo.Map(cleaned, func(r RawQuote, i int) Quote {
		open := r.Open
		if i > 0 {
			open = cleaned[i-1].Close
		}
		return Quote{
			Time:   r.Date.UTC(),
			Open:   open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		}
	})
	SortQuotes(quotes)
	return quotes
}

// Clean : FilterComplete -> DeriveOpen
func Clean(raw []RawQuote) []Quote {
	return DeriveOpen(FilterComplete(raw))
}

func SortQuotes(quotes []Quote) {
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Time.Before(quotes[j].Time)
	})
}
