package store

import (
	"strings"
	"sync"
	"time"

	"github.com/StudioSol/set"
	"github.com/samber/lo"

	"chartdesk/apperror"
	"chartdesk/model"
	"chartdesk/utils/log"
)

const day = 24 * time.Hour

type seriesData struct {
	quotes []model.Quote
	window model.Window
}

// SeriesStore : (symbol, timeframe) -> 시간순 quote 목록 + 커버 window
// 모든 변경은 하나의 RWMutex 아래에서 수행됨
type SeriesStore struct {
	mu      sync.RWMutex
	symbols *set.LinkedHashSetString // 등록 순서 유지
	series  map[model.SeriesKey]*seriesData
	now     func() time.Time
}

type Option func(*SeriesStore)

// WithClock : Register 시 기준 시각 (테스트용)
func WithClock(now func() time.Time) Option {
	return func(s *SeriesStore) {
		s.now = now
	}
}

func NewSeriesStore(opts ...Option) *SeriesStore {
	s := &SeriesStore{
		symbols: set.NewLinkedHashSetString(),
		series:  make(map[model.SeriesKey]*seriesData),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register : 모든 timeframe 에 대해 기본 window 와 빈 시리즈를 생성
// 이미 등록된 심볼이면 아무것도 하지 않고 false
func (s *SeriesStore) Register(symbol string) bool {
	symbol = strings.ToUpper(symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.symbols.InArray(symbol) {
		return false
	}
	now := s.now()
	for _, tf := range model.Timeframes {
		s.series[model.NewSeriesKey(symbol, tf)] = &seriesData{
			window: model.DefaultWindow(tf, now),
		}
	}
	s.symbols.Add(symbol)
	log.Infof("[STORE] registered %s", symbol)
	return true
}

// Unregister : 심볼의 모든 timeframe 시리즈 삭제
func (s *SeriesStore) Unregister(symbol string) bool {
	symbol = strings.ToUpper(symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.symbols.InArray(symbol) {
		return false
	}
	for _, tf := range model.Timeframes {
		delete(s.series, model.NewSeriesKey(symbol, tf))
	}
	s.symbols.Remove(symbol)
	log.Infof("[STORE] unregistered %s", symbol)
	return true
}

func (s *SeriesStore) Registered(symbol string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.symbols.InArray(strings.ToUpper(symbol))
}

// Symbols : 등록 순서대로
func (s *SeriesStore) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, s.symbols.Length())
	for symbol := range s.symbols.Iter() {
		out = append(out, symbol)
	}
	return out
}

// Read : 시리즈 복사본. 등록되지 않은 key 면 false
func (s *SeriesStore) Read(key model.SeriesKey) ([]model.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.series[key]
	if !ok {
		return nil, false
	}
	return clone(data.quotes), true
}

func (s *SeriesStore) ReadWindow(key model.SeriesKey) (model.Window, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.series[key]
	if !ok {
		return model.Window{}, false
	}
	return data.window, true
}

// Merge : 기존 시리즈에 구조적으로 같은 quote 가 없는 것만 받아들임
// 받아들인 quote 목록을 반환
func (s *SeriesStore) Merge(key model.SeriesKey, incoming []model.Quote) ([]model.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.get(key)
	if err != nil {
		return nil, err
	}
	return data.merge(incoming), nil
}

// SetWindow : window 를 통째로 교체
func (s *SeriesStore) SetWindow(key model.SeriesKey, from, to time.Time) error {
	if to.Before(from) {
		return apperror.New(apperror.KindInvalidParameters, "window from %s is after to %s", from, to)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.get(key)
	if err != nil {
		return err
	}
	data.window = model.Window{From: from, To: to}
	return nil
}

// RemoveAt : 해당 시각의 quote 를 모두 삭제하고 삭제된 개수를 반환
func (s *SeriesStore) RemoveAt(key model.SeriesKey, t time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.get(key)
	if err != nil {
		return 0, err
	}
	return data.removeAt(t), nil
}

// Replace : 시리즈 전체를 교체. window 는 그대로
func (s *SeriesStore) Replace(key model.SeriesKey, quotes []model.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.get(key)
	if err != nil {
		return err
	}
	data.quotes = clone(quotes)
	model.SortQuotes(data.quotes)
	return nil
}

// FillAndGrow : 정제된 quote 를 merge 하고 window 를 과거로 넓힌 뒤
// 중복 timestamp 를 모두 제거. 전체 과정이 하나의 lock 안에서 수행됨
//
// prev 는 fetch 이전에 읽어둔 window
func (s *SeriesStore) FillAndGrow(key model.SeriesKey, prev model.Window, incoming []model.Quote) ([]model.Quote, model.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.get(key)
	if err != nil {
		return nil, model.Window{}, err
	}

	// 1) merge
	accepted := data.merge(incoming)

	// 2) 새 window 계산
	newFrom := model.ClampFloor(prev.From.Add(-key.Timeframe.GrowthStep()))
	newTo := prev.From
	if len(accepted) > 0 {
		earliest := lo.MinBy(accepted, func(a, b model.Quote) bool {
			return a.Time.Before(b.Time)
		})
		newTo = earliest.Time.Add(-day)
	}
	newTo = model.ClampFloor(newTo)
	if newTo.Before(newFrom) {
		newFrom = newTo
	}
	data.window = model.Window{From: newFrom, To: newTo}

	// 3) 같은 timestamp 가 두 번 이상 나오면 전부 삭제
	removed := 0
	for _, t := range duplicatedTimes(data.quotes) {
		removed += data.removeAt(t)
	}

	log.Debugf("[STORE] %s accepted=%d removed=%d window=%s~%s",
		key, len(accepted), removed, newFrom.Format(time.DateOnly), newTo.Format(time.DateOnly))

	return clone(data.quotes), data.window, nil
}

func (s *SeriesStore) get(key model.SeriesKey) (*seriesData, error) {
	data, ok := s.series[key]
	if !ok {
		return nil, apperror.New(apperror.KindUnknownKey, "series %s is not registered", key)
	}
	return data, nil
}

func (d *seriesData) merge(incoming []model.Quote) []model.Quote {
	accepted := lo.Filter(incoming, func(q model.Quote, _ int) bool {
		return !lo.ContainsBy(d.quotes, func(existing model.Quote) bool {
			return existing.Equal(q)
		})
	})
	if len(accepted) == 0 {
		return nil
	}

	merged := make([]model.Quote, 0, len(accepted)+len(d.quotes))
	merged = append(merged, accepted...)
	merged = append(merged, d.quotes...)
	model.SortQuotes(merged)
	d.quotes = merged
	return accepted
}

func (d *seriesData) removeAt(t time.Time) int {
	before := len(d.quotes)
	d.quotes = lo.Reject(d.quotes, func(q model.Quote, _ int) bool {
		return q.Time.Equal(t)
	})
	return before - len(d.quotes)
}

func duplicatedTimes(quotes []model.Quote) []time.Time {
	groups := lo.GroupBy(quotes, func(q model.Quote) int64 {
		return q.Time.UnixNano()
	})
	var out []time.Time
	for _, group := range groups {
		if len(group) > 1 {
			out = append(out, group[0].Time)
		}
	}
	return out
}

func clone(quotes []model.Quote) []model.Quote {
	if quotes == nil {
		return []model.Quote{}
	}
	out := make([]model.Quote, len(quotes))
	copy(out, quotes)
	return out
}
