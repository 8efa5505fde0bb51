package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/StudioSol/set"

	"chartdesk/apperror"
	"chartdesk/model"
	"chartdesk/utils/log"
)

const (
	DefaultFetchTimeout = 3 * time.Second
	DefaultMinRows      = 5
)

// FetchFunc : upstream 에서 정제된 quote 를 가져옴. ctx 는 timeout 이 걸린 context
type FetchFunc func(ctx context.Context) ([]model.Quote, error)

// CommitFunc : fetch 결과를 store 에 반영. key lock 을 잡은 상태로 호출됨
type CommitFunc func(quotes []model.Quote) ([]model.Quote, error)

// FetchCoordinator : key(symbol, timeframe) 당 동시에 하나의 fetch 만 허용하고
// timeout 과 최소 row 수를 적용. 실패한 key 를 기록
type FetchCoordinator struct {
	locks sync.Map // model.SeriesKey -> chan struct{}

	mu     sync.RWMutex
	failed *set.LinkedHashSetString // "SYMBOL_TF"

	inFlight atomic.Int64

	timeout time.Duration
	minRows int
}

type CoordinatorOption func(*FetchCoordinator)

func WithTimeout(timeout time.Duration) CoordinatorOption {
	return func(c *FetchCoordinator) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithMinRows(minRows int) CoordinatorOption {
	return func(c *FetchCoordinator) {
		if minRows >= 0 {
			c.minRows = minRows
		}
	}
}

func NewFetchCoordinator(opts ...CoordinatorOption) *FetchCoordinator {
	c := &FetchCoordinator{
		failed:  set.NewLinkedHashSetString(),
		timeout: DefaultFetchTimeout,
		minRows: DefaultMinRows,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Acquire : key 의 lock 을 잡고 release 함수를 반환
// lock 생성은 LoadOrStore 로 원자적으로 이루어짐
func (c *FetchCoordinator) Acquire(ctx context.Context, key model.SeriesKey) (func(), error) {
	v, _ := c.locks.LoadOrStore(key, make(chan struct{}, 1))
	lock := v.(chan struct{})

	select {
	case lock <- struct{}{}:
		return func() { <-lock }, nil
	case <-ctx.Done():
		return nil, apperror.Wrap(apperror.KindLockFailure, ctx.Err(), "acquire %s", key)
	}
}

type fetchResult struct {
	quotes []model.Quote
	err    error
}

// Run : key lock 아래에서 fetch -> row 수 검사 -> commit
//   - timeout 이 지나면 key 를 실패로 기록하고 Timeout 반환. 늦게 도착한 결과는 버림
//   - minRows 보다 적으면 실패로 기록하고 InsufficientData 반환
//   - commit 성공 시 실패 기록 제거
func (c *FetchCoordinator) Run(ctx context.Context, key model.SeriesKey, fetch FetchFunc, commit CommitFunc) ([]model.Quote, error) {
	release, err := c.Acquire(ctx, key)
	if err != nil {
		return nil, err
	}
	defer release()

	c.inFlight.Add(1)
	defer c.inFlight.Add(-1)

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// buffered: timeout 이후 fetch 고루틴이 막히지 않도록
	resultCh := make(chan fetchResult, 1)
	go func() {
		quotes, err := fetch(fetchCtx)
		resultCh <- fetchResult{quotes: quotes, err: err}
	}()

	var res fetchResult
	select {
	case <-fetchCtx.Done():
		return nil, c.timedOut(key)
	case res = <-resultCh:
	}

	if res.err != nil {
		if errors.Is(res.err, context.DeadlineExceeded) {
			return nil, c.timedOut(key)
		}
		log.Warnf("[FETCH] %s failed: %v", key, res.err)
		var appErr *apperror.Error
		if errors.As(res.err, &appErr) {
			return nil, res.err
		}
		return nil, apperror.Wrap(apperror.KindNetwork, res.err, "fetch %s", key)
	}

	if len(res.quotes) < c.minRows {
		c.markFailed(key)
		log.Warnf("[FETCH] %s returned %d rows (min %d)", key, len(res.quotes), c.minRows)
		return nil, apperror.New(apperror.KindInsufficientData,
			"%s returned %d rows, need at least %d", key, len(res.quotes), c.minRows)
	}

	out, err := commit(res.quotes)
	if err != nil {
		return nil, err
	}
	c.clearFailed(key)
	return out, nil
}

func (c *FetchCoordinator) timedOut(key model.SeriesKey) error {
	c.markFailed(key)
	log.Warnf("[FETCH] %s timed out after %s", key, c.timeout)
	return apperror.New(apperror.KindTimeout, "fetch %s exceeded %s", key, c.timeout)
}

func (c *FetchCoordinator) markFailed(key model.SeriesKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed.Add(key.String())
}

func (c *FetchCoordinator) clearFailed(key model.SeriesKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed.Remove(key.String())
}

// ForgetSymbol : 심볼의 모든 timeframe 실패 기록 제거 (심볼 삭제 시)
func (c *FetchCoordinator) ForgetSymbol(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tf := range model.Timeframes {
		c.failed.Remove(model.NewSeriesKey(symbol, tf).String())
	}
}

// Failed : 가장 최근 fetch 가 실패한 key 인지
func (c *FetchCoordinator) Failed(key model.SeriesKey) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.failed.InArray(key.String())
}

// FailedKeys : 실패한 순서대로 "SYMBOL_TF" 목록
func (c *FetchCoordinator) FailedKeys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, c.failed.Length())
	for key := range c.failed.Iter() {
		out = append(out, key)
	}
	return out
}

// InFlight : 현재 진행 중인 fetch 수
func (c *FetchCoordinator) InFlight() int {
	return int(c.inFlight.Load())
}

func (c *FetchCoordinator) Timeout() time.Duration { return c.timeout }
