package desk

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"chartdesk/apperror"
	"chartdesk/backtest"
	"chartdesk/feed"
	"chartdesk/indicator"
	"chartdesk/interfaces"
	"chartdesk/model"
	"chartdesk/store"
	"chartdesk/strategy"
	"chartdesk/utils/log"
)

// Desk : 캐시 서비스. 시작 시 한 번 생성되어 모든 request handler 가 공유
type Desk struct {
	provider    interfaces.QuoteSource
	store       interfaces.SeriesCache
	coordinator *feed.FetchCoordinator

	backtestOptions      backtest.Options
	bootstrapConcurrency int
	now                  func() time.Time
}

type Option func(*Desk)

func WithStore(s interfaces.SeriesCache) Option {
	return func(d *Desk) {
		d.store = s
	}
}

func WithCoordinator(c *feed.FetchCoordinator) Option {
	return func(d *Desk) {
		d.coordinator = c
	}
}

func WithBacktestOptions(opts backtest.Options) Option {
	return func(d *Desk) {
		d.backtestOptions = opts
	}
}

func WithBootstrapConcurrency(n int) Option {
	return func(d *Desk) {
		if n > 0 {
			d.bootstrapConcurrency = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Desk) {
		d.now = now
	}
}

// NewDesk : provider 를 받아 store, coordinator 를 구성
func NewDesk(provider interfaces.QuoteSource, opts ...Option) *Desk {
	d := &Desk{
		provider:             provider,
		backtestOptions:      backtest.DefaultOptions(),
		bootstrapConcurrency: 4,
		now:                  time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.store == nil {
		d.store = store.NewSeriesStore(store.WithClock(d.now))
	}
	if d.coordinator == nil {
		d.coordinator = feed.NewFetchCoordinator()
	}
	return d
}

func (d *Desk) ListSymbols() []string {
	return d.store.Symbols()
}

// AddSymbol : 이미 있으면 no-op
func (d *Desk) AddSymbol(symbol string) error {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return apperror.New(apperror.KindInvalidParameters, "symbol is empty")
	}
	if !d.store.Register(symbol) {
		log.Infof("[STORE] %s already registered", strings.ToUpper(symbol))
	}
	return nil
}

// RemoveSymbol : 시리즈와 함께 fetch 실패 기록도 제거
func (d *Desk) RemoveSymbol(symbol string) error {
	if !d.store.Unregister(symbol) {
		return apperror.New(apperror.KindUnknownKey, "symbol %s is not registered", strings.ToUpper(symbol))
	}
	d.coordinator.ForgetSymbol(symbol)
	return nil
}

func (d *Desk) GetSeries(symbol string, tf model.Timeframe) ([]model.Quote, error) {
	key := model.NewSeriesKey(symbol, tf)
	quotes, ok := d.store.Read(key)
	if !ok {
		return nil, unknownKey(key)
	}
	return quotes, nil
}

func (d *Desk) GetWindow(symbol string, tf model.Timeframe) (model.Window, error) {
	key := model.NewSeriesKey(symbol, tf)
	w, ok := d.store.ReadWindow(key)
	if !ok {
		return model.Window{}, unknownKey(key)
	}
	return w, nil
}

// RefreshSeries : fill-and-grow
//  1. key lock 을 잡은 뒤 현재 window 조회 (비어있는 시리즈면 now 기준 기본 구간을 fetch)
//  2. provider 에서 window 구간 fetch 후 정제
//  3. store 에서 merge + window 확장 + 중복 timestamp 제거
func (d *Desk) RefreshSeries(ctx context.Context, symbol string, tf model.Timeframe) ([]model.Quote, error) {
	key := model.NewSeriesKey(symbol, tf)
	if _, ok := d.store.ReadWindow(key); !ok {
		return nil, unknownKey(key)
	}

	var prev model.Window
	fetch := func(fetchCtx context.Context) ([]model.Quote, error) {
		stored, ok := d.store.ReadWindow(key)
		if !ok {
			return nil, unknownKey(key)
		}
		// 확장 기준은 항상 저장된 window. 비어있는 시리즈만 최근 구간을 가져옴
		prev = stored
		w := stored
		if existing, _ := d.store.Read(key); len(existing) == 0 {
			w = model.DefaultWindow(tf, d.now())
		}

		raw, err := d.provider.Chart(fetchCtx, key.Symbol, tf, w.From, w.To)
		if err != nil {
			return nil, err
		}
		return model.Clean(raw), nil
	}
	commit := func(quotes []model.Quote) ([]model.Quote, error) {
		out, w, err := d.store.FillAndGrow(key, prev, quotes)
		if err != nil {
			return nil, err
		}
		log.Infof("[FETCH] %s refreshed: %d quotes, window %s ~ %s",
			key, len(out), w.From.Format(time.DateOnly), w.To.Format(time.DateOnly))
		return out, nil
	}

	return d.coordinator.Run(ctx, key, fetch, commit)
}

// ResetSeries : 최근 기본 구간을 다시 받아 시리즈를 통째로 교체. window 는 유지
func (d *Desk) ResetSeries(ctx context.Context, symbol string, tf model.Timeframe) ([]model.Quote, error) {
	key := model.NewSeriesKey(symbol, tf)
	if _, ok := d.store.ReadWindow(key); !ok {
		return nil, unknownKey(key)
	}

	fetch := func(fetchCtx context.Context) ([]model.Quote, error) {
		w := model.DefaultWindow(tf, d.now())
		raw, err := d.provider.Chart(fetchCtx, key.Symbol, tf, w.From, w.To)
		if err != nil {
			return nil, err
		}
		return model.Clean(raw), nil
	}
	commit := func(quotes []model.Quote) ([]model.Quote, error) {
		if err := d.store.Replace(key, quotes); err != nil {
			return nil, err
		}
		log.Infof("[FETCH] %s reset: %d quotes", key, len(quotes))
		out, _ := d.store.Read(key)
		return out, nil
	}
	return d.coordinator.Run(ctx, key, fetch, commit)
}

// RemoveQuote : 해당 시각의 quote 를 삭제하고 삭제된 개수를 반환
func (d *Desk) RemoveQuote(symbol string, tf model.Timeframe, t time.Time) (int, error) {
	return d.store.RemoveAt(model.NewSeriesKey(symbol, tf), t)
}

// GetIndicator : 파라미터 검증 -> 캐시된 시리즈로 계산
func (d *Desk) GetIndicator(symbol string, tf model.Timeframe, kind indicator.Kind, lengths []int) ([][]model.IndicatorData, error) {
	if err := indicator.Validate(kind, lengths); err != nil {
		return nil, err
	}
	quotes, err := d.GetSeries(symbol, tf)
	if err != nil {
		return nil, err
	}
	return indicator.Compute(kind, quotes, lengths)
}

type BacktestRequest struct {
	Symbol    string          `json:"symbol"`
	Timeframe model.Timeframe `json:"timeframe"`
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	Strategy  strategy.Kind   `json:"strategy"`
	Params    []int           `json:"params"`
}

// RunBacktest : 캐시를 거치지 않고 [from, to] 구간을 provider 에서 직접 가져와 시뮬레이션
func (d *Desk) RunBacktest(ctx context.Context, req BacktestRequest) (backtest.Result, error) {
	// 1) 파라미터 검증
	kind, err := strategy.ParseKind(string(req.Strategy))
	if err != nil {
		return backtest.Result{}, err
	}
	if _, err := strategy.New(kind, req.Params); err != nil {
		return backtest.Result{}, err
	}
	tf, err := model.ParseTimeframe(string(req.Timeframe))
	if err != nil {
		return backtest.Result{}, err
	}
	if !req.From.Before(req.To) {
		return backtest.Result{}, apperror.New(apperror.KindInvalidParameters,
			"from %s must be before to %s", req.From.Format(time.RFC3339), req.To.Format(time.RFC3339))
	}
	if strings.TrimSpace(req.Symbol) == "" {
		return backtest.Result{}, apperror.New(apperror.KindInvalidParameters, "symbol is empty")
	}

	// 2) fetch
	fetchCtx, cancel := context.WithTimeout(ctx, d.coordinator.Timeout())
	defer cancel()

	raw, err := d.provider.Chart(fetchCtx, strings.ToUpper(req.Symbol), tf, req.From, req.To)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return backtest.Result{}, apperror.Wrap(apperror.KindTimeout, err, "backtest fetch %s %s", req.Symbol, req.Timeframe)
		}
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return backtest.Result{}, err
		}
		return backtest.Result{}, apperror.Wrap(apperror.KindNetwork, err, "backtest fetch %s %s", req.Symbol, req.Timeframe)
	}
	quotes := model.Clean(raw)
	if len(quotes) < 2 {
		return backtest.Result{}, apperror.New(apperror.KindInsufficientData,
			"backtest %s %s needs at least 2 bars, got %d", req.Symbol, tf, len(quotes))
	}

	// 3) signal -> simulate
	signals, err := strategy.Signals(kind, req.Symbol, quotes, req.Params)
	if err != nil {
		return backtest.Result{}, err
	}
	return backtest.Run(quotes, signals, d.backtestOptions)
}

func (d *Desk) SearchSymbols(ctx context.Context, query string) ([]string, error) {
	return d.provider.SearchSymbols(ctx, query)
}

func (d *Desk) FailedKeys() []string {
	return d.coordinator.FailedKeys()
}

// Bootstrap : 심볼 등록 후 모든 (symbol, timeframe) 을 병렬로 채움
// 개별 실패는 로그만 남기고 계속 진행
func (d *Desk) Bootstrap(ctx context.Context, symbols []string) error {
	for _, symbol := range symbols {
		if err := d.AddSymbol(symbol); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.bootstrapConcurrency)

	for _, symbol := range symbols {
		for _, tf := range model.Timeframes {
			symbol, tf := symbol, tf
			g.Go(func() error {
				quotes, err := d.RefreshSeries(gctx, symbol, tf)
				if err != nil {
					log.Warnf("[SETUP] bootstrap %s %s failed: %v", strings.ToUpper(symbol), tf, err)
					return nil
				}
				log.Infof("[SETUP] bootstrap %s %s loaded %d quotes", strings.ToUpper(symbol), tf, len(quotes))
				return nil
			})
		}
	}
	return g.Wait()
}

func unknownKey(key model.SeriesKey) error {
	return apperror.New(apperror.KindUnknownKey, "series %s is not registered", key)
}
