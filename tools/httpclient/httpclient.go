package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Doer 发送 HTTP 请求的最小接口，*http.Client 即满足
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options 连接池与超时配置
type Options struct {
	// Timeout 为 0 表示不设置客户端超时
	Timeout             time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}

var defaultClient = &http.Client{Timeout: 30 * time.Second}

func CreateClient() *http.Client { return defaultClient }

// NewClient 按配置创建带连接池的客户端
func NewClient(opts Options) *http.Client {
	return &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        opts.MaxIdleConns,
			MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
			IdleConnTimeout:     opts.IdleConnTimeout,
		},
	}
}

// RequestC 发送请求并读取完整响应体，返回 body、状态码。
// headers 为 nil 时默认带 Content-Type: application/json；传空 map 则不带任何头。
func RequestC(ctx context.Context, client Doer, method, url string, body io.Reader, headers map[string]string) ([]byte, int, error) {
	if client == nil {
		client = defaultClient
	}

	if headers == nil {
		headers = map[string]string{
			"Content-Type": "application/json",
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}

	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return b, resp.StatusCode, nil
}

// Get 不带请求头、参数和请求体的 GET
func Get(ctx context.Context, client Doer, url string) ([]byte, int, error) {
	return RequestC(ctx, client, http.MethodGet, url, nil, map[string]string{})
}
