package resty

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

type RestyClient interface {
	MakeRequest(ctx context.Context, body any, header any, contentType ...string) ReadyRestyReq
}

type ReadyRestyReq interface {
	Get(url string, queryParams ...QueryParam) (*resty.Response, error)
}

// NewDefaultRestyClient : retry 없음, timeout 기본 10초
func NewDefaultRestyClient(trace bool, timeout ...time.Duration) RestyClient {
	return NewDefaultRestyClientWithRetryCount(trace, 0, timeout...)
}

// NewDefaultRestyClientWithRetryCount : 5xx 또는 transport 에러 시 retryCount 만큼 재시도
func NewDefaultRestyClientWithRetryCount(trace bool, retryCount int, timeout ...time.Duration) RestyClient {
	restyClient := defaultRestyClient{}
	restyClient.setupClient(trace, retryCount, timeout...)
	return &restyClient
}

// NewMockRestyClient : Method + 전체 URL(query 제외) 기준으로 응답을 돌려주는 테스트용 client
func NewMockRestyClient(mockFuncs []MockFunc) RestyClient {
	mocks := make(map[string]map[string]MockFunc)
	for _, mockFunc := range mockFuncs {
		if _, ok := mocks[mockFunc.Method]; !ok {
			mocks[mockFunc.Method] = make(map[string]MockFunc)
		}
		mocks[mockFunc.Method][mockFunc.Path] = mockFunc
	}
	return &mockRestyClient{
		mocks: mocks,
	}
}

type QueryParam struct {
	Key   string
	Value any
}
