package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"clickboard/clicks/pkg/metrics"
	"clickboard/tools/httpclient"
	"clickboard/tools/logger"

	"github.com/google/uuid"
	"github.com/valyala/fastjson"
	"golang.org/x/sync/singleflight"
)

// Reporter 诊断通道
type Reporter interface {
	Report(label string, err error)
}

// PayloadInfo 解析出的载荷概要
type PayloadInfo struct {
	Type  string `json:"type"`
	Items int    `json:"items"`
}

// Status 最近一次调用的快照
type Status struct {
	URL            string       `json:"url"`
	TargetID       string       `json:"target_id"`
	Attempts       int          `json:"attempts"`
	Successes      int          `json:"successes"`
	Failures       int          `json:"failures"`
	LastAttempt    time.Time    `json:"last_attempt"`
	LastSuccess    time.Time    `json:"last_success"`
	LastError      string       `json:"last_error,omitempty"`
	LastStatusCode int          `json:"last_status_code,omitempty"`
	Payload        *PayloadInfo `json:"payload,omitempty"`
}

// Renderer 拉取远端 JSON 并把格式化文本写入输出目标
type Renderer struct {
	url      string
	client   httpclient.Doer
	target   Target
	reporter Reporter
	log      *logger.Logger

	group  singleflight.Group
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	status Status
}

// Option 可选配置
type Option func(*Renderer)

// WithLogger 设置调试日志（与诊断通道相互独立）
func WithLogger(l *logger.Logger) Option {
	return func(r *Renderer) { r.log = l }
}

// New 创建 Renderer，传输、输出目标和诊断通道均由调用方注入
func New(url string, client httpclient.Doer, target Target, reporter Reporter, opts ...Option) *Renderer {
	if client == nil {
		client = httpclient.CreateClient()
	}
	r := &Renderer{
		url:      url,
		client:   client,
		target:   target,
		reporter: reporter,
		status:   Status{URL: url, TargetID: target.ID()},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const flightKey = "fetch"

// Run 执行一次 请求 -> 解析 -> 渲染。
// 成功时写输出目标，失败时写诊断通道，二者恰有其一。
// 已有拉取在进行时直接加入并等待它的结果，不会另发请求。
// ctx 结束时调用方提前返回，共享的拉取继续进行，由 FETCH_TIMEOUT 约束。
func (r *Renderer) Run(ctx context.Context) {
	r.join(ctx)
}

// Rerun 取消正在进行的拉取并重新发起一次。
// 被取代的拉取既不写输出目标也不写诊断通道。
func (r *Renderer) Rerun(ctx context.Context) {
	r.group.Forget(flightKey)
	r.join(ctx)
}

func (r *Renderer) join(ctx context.Context) {
	detached := context.WithoutCancel(ctx)
	ch := r.group.DoChan(flightKey, func() (interface{}, error) {
		r.flight(detached)
		return nil, nil
	})

	select {
	case <-ch:
	case <-ctx.Done():
	}
}

func (r *Renderer) flight(ctx context.Context) {
	runCtx, seq := r.begin(ctx)
	id := uuid.New().String()[:8]
	start := time.Now()

	r.debug("fetch %s started: url=%s", id, r.url)
	text, info, code, err := r.fetch(runCtx)
	elapsed := time.Since(start)

	r.mu.Lock()
	defer r.mu.Unlock()

	if seq != r.seq {
		metrics.ObserveFetch(metrics.ResultSuperseded, elapsed)
		r.debug("fetch %s superseded after %s", id, elapsed)
		return
	}
	r.cancel()
	r.cancel = nil

	r.status.Attempts++
	r.status.LastAttempt = start
	r.status.LastStatusCode = code

	if err != nil {
		r.status.Failures++
		r.status.LastError = err.Error()
		metrics.ObserveFetch(resultOf(err), elapsed)
		r.reporter.Report(FailureLabel, err)
		return
	}

	r.target.SetContent(text)

	now := time.Now()
	r.status.Successes++
	r.status.LastSuccess = now
	r.status.LastError = ""
	r.status.Payload = &info
	metrics.ObserveFetch(metrics.ResultSuccess, elapsed)
	metrics.ObserveRender(now, len(text))
	r.debug("fetch %s rendered into #%s: status=%d type=%s items=%d bytes=%d", id, r.target.ID(), code, info.Type, info.Items, len(text))
}

// Status 返回最近一次调用的快照
func (r *Renderer) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.status
	if s.Payload != nil {
		p := *s.Payload
		s.Payload = &p
	}
	return s
}

// begin 只有 Rerun 之后才会遇到仍在进行的旧拉取，此时将其取消
func (r *Renderer) begin(ctx context.Context) (context.Context, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.seq++
	r.cancel = cancel
	return runCtx, r.seq
}

// fetch 不检查状态码：非 2xx 但响应体是合法 JSON 时照常渲染
func (r *Renderer) fetch(ctx context.Context) (string, PayloadInfo, int, error) {
	body, code, err := httpclient.Get(ctx, r.client, r.url)
	if err != nil {
		return "", PayloadInfo{}, code, &RetrievalError{Kind: NetworkError, URL: r.url, Err: err}
	}

	text, info, err := Format(body)
	if err != nil {
		return "", PayloadInfo{}, code, &RetrievalError{Kind: DecodeError, URL: r.url, Err: err}
	}
	return text, info, code, nil
}

func (r *Renderer) debug(format string, args ...interface{}) {
	if r.log != nil {
		r.log.Debug(format, args...)
	}
}

func resultOf(err error) string {
	var re *RetrievalError
	if errors.As(err, &re) && re.Kind == DecodeError {
		return metrics.ResultDecodeError
	}
	return metrics.ResultNetworkError
}

var parserPool fastjson.ParserPool

var utf8BOM = []byte("\xef\xbb\xbf")

// Format 把 JSON 文本解析并格式化为两空格缩进。
// 保留原始的键顺序与数字写法，不转义 HTML 字符，忽略开头的 UTF-8 BOM。
// 嵌套超过 fastjson 的 MaxDepth（300）层按解析失败处理。
func Format(body []byte) (string, PayloadInfo, error) {
	body = bytes.TrimPrefix(body, utf8BOM)

	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return "", PayloadInfo{}, err
	}

	info := PayloadInfo{Type: v.Type().String()}
	switch v.Type() {
	case fastjson.TypeArray:
		info.Items = len(v.GetArray())
	case fastjson.TypeObject:
		if o, err := v.Object(); err == nil {
			info.Items = o.Len()
		}
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(body), "", "  "); err != nil {
		return "", PayloadInfo{}, err
	}
	return buf.String(), info, nil
}
