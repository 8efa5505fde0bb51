package resty

import (
	"context"
	"fmt"
	"net"
	"net/http"
	urlTool "net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"chartdesk/utils/log"
)

const userAgent = "chartdesk/1.0"

type defaultRestyClient struct {
	restyClient *resty.Client
}

func (client *defaultRestyClient) MakeRequest(ctx context.Context, body any, header any, contentType ...string) ReadyRestyReq {
	request := client.restyClient.R().SetContext(ctx)
	if body != nil {
		request.SetBody(body)
	}

	ct := "application/json"
	if len(contentType) > 0 {
		ct = contentType[0]
	}
	request.SetHeader("Content-Type", ct)
	request.SetHeader("Accept", ct)

	if h, ok := header.(map[string]string); ok {
		request.SetHeaders(h)
	}
	return &defaultReadyRestyReq{request: request}
}

func (client *defaultRestyClient) setupClient(trace bool, retry int, timeout ...time.Duration) {
	restyClient := resty.New()
	restyClient.SetHeader("User-Agent", userAgent)
	restyClient.SetRetryCount(retry)
	restyClient.SetTimeout(10 * time.Second)
	if len(timeout) > 0 && timeout[0] > 0 {
		restyClient.SetTimeout(timeout[0])
	}
	restyClient.SetRetryWaitTime(time.Second)
	restyClient.SetRetryMaxWaitTime(5 * time.Second)
	restyClient.AddRetryCondition(func(response *resty.Response, err error) bool {
		// context 취소/timeout 은 재시도하지 않음
		if err != nil {
			return !strings.Contains(err.Error(), "context")
		}
		return response.StatusCode() >= 500
	})
	restyClient.OnError(func(req *resty.Request, err error) {
		log.Debugf("[HTTP] %s %s: %v", req.Method, req.URL, err)
	})

	transport := &http.Transport{
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}
	restyClient.SetTransport(transport)

	if trace {
		restyClient.EnableTrace()
	}

	client.restyClient = restyClient
}

type defaultReadyRestyReq struct {
	request *resty.Request
}

func makeUrl(url string, queryParams ...QueryParam) string {
	if len(queryParams) == 0 {
		return url
	}
	values := make([]string, 0, len(queryParams))
	for _, query := range queryParams {
		values = append(values, fmt.Sprintf("%s=%s",
			urlTool.QueryEscape(query.Key), urlTool.QueryEscape(fmt.Sprintf("%v", query.Value))))
	}
	return url + "?" + strings.Join(values, "&")
}

func (req *defaultReadyRestyReq) Get(url string, queryParams ...QueryParam) (*resty.Response, error) {
	return req.request.Get(makeUrl(url, queryParams...))
}
