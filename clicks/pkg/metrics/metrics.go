package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 拉取结果标签值
const (
	ResultSuccess      = "success"
	ResultNetworkError = "network_error"
	ResultDecodeError  = "decode_error"
	ResultSuperseded   = "superseded"
)

var (
	fetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clicks_fetch_total",
			Help: "点击数据拉取次数，按结果分类",
		},
		[]string{"result"},
	)

	fetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clicks_fetch_duration_seconds",
			Help:    "单次拉取+解析耗时（秒）",
			Buckets: prometheus.DefBuckets,
		},
	)

	lastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "clicks_last_success_timestamp_seconds",
			Help: "最近一次成功渲染的时间戳",
		},
	)

	payloadBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "clicks_payload_bytes",
			Help: "最近一次渲染文本的字节数",
		},
	)
)

func init() {
	prometheus.MustRegister(fetchTotal)
	prometheus.MustRegister(fetchDuration)
	prometheus.MustRegister(lastSuccess)
	prometheus.MustRegister(payloadBytes)
}

// ObserveFetch 记录一次拉取的结果与耗时
func ObserveFetch(result string, elapsed time.Duration) {
	fetchTotal.WithLabelValues(result).Inc()
	if result != ResultSuperseded {
		fetchDuration.Observe(elapsed.Seconds())
	}
}

// ObserveRender 记录一次成功写入输出区域
func ObserveRender(at time.Time, size int) {
	lastSuccess.Set(float64(at.Unix()))
	payloadBytes.Set(float64(size))
}

// FetchCounter 返回某个结果对应的计数器
func FetchCounter(result string) prometheus.Counter {
	return fetchTotal.WithLabelValues(result)
}
